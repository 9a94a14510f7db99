package spin

import "time"

// Window is the default length of the rolling window that allows one spin.
const Window = 24 * time.Hour

// NextSpinAt returns when a subject that last spun at last may spin again.
func NextSpinAt(last time.Time, window time.Duration) time.Time {
	return last.Add(window)
}

// CanSpin reports whether a subject may spin at now. hasSpun is false when
// the subject never spun.
func CanSpin(last time.Time, hasSpun bool, now time.Time, window time.Duration) bool {
	return !hasSpun || !now.Before(NextSpinAt(last, window))
}
