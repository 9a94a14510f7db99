// Package spin implements the prize wheel: weighted prize selection, the
// wheel rotation shown to the visitor, and the one-spin-per-window rule.
package spin

import (
	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

var ErrNoPrizes = errors.New("no spin prizes available")

// Source yields uniform floats in [0, 1). *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	Float64() float64
}

// Select picks the index of the winning prize. SpinProbability is a relative
// weight, so weights need not sum to 100. Prizes with a non-positive weight
// can never win.
func Select(prizes []models.Coupon, rng Source) (int, error) {
	total := 0.0
	last := -1
	for i, p := range prizes {
		if p.SpinProbability > 0 {
			total += p.SpinProbability
			last = i
		}
	}
	if last < 0 {
		return 0, ErrNoPrizes
	}

	r := rng.Float64() * total
	for i, p := range prizes {
		if p.SpinProbability <= 0 {
			continue
		}
		r -= p.SpinProbability
		if r <= 0 {
			return i, nil
		}
	}

	// Float rounding can leave r slightly positive after the last weight.
	return last, nil
}
