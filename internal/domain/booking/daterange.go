package booking

import (
	"errors"
	"time"

	"gowaay/internal/domain/shared/daterange"
)

var ErrCheckInInPast = errors.New("booking: check-in date is in the past")

// RequireUpcoming rejects stays whose check-in day is already over. Check-in
// today is allowed.
func RequireUpcoming(dr daterange.DateRange, now time.Time) error {
	if dr.StartsBefore(now) {
		return ErrCheckInInPast
	}
	return nil
}
