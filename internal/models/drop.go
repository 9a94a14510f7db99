package models

import "time"

// Drop is a time-boxed sales window.
type Drop struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	IsActive bool      `json:"is_active"`
}

// OpenAt reports whether the drop accepts orders at t.
func (d Drop) OpenAt(t time.Time) bool {
	return d.IsActive && !t.Before(d.StartsAt) && t.Before(d.EndsAt)
}
