package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: checkout must be after checkin")

const day = 24 * time.Hour

// DateRange is the half-open stay [CheckIn, CheckOut) on UTC calendar days.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	return dr, dr.Validate()
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(day)
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn) / day)
}

// Contains reports whether the night starting on t's day is part of the stay.
func (dr DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(dr.CheckIn) && d.Before(dr.CheckOut)
}

// StartsBefore reports whether check-in falls on an earlier day than t.
func (dr DateRange) StartsBefore(t time.Time) bool {
	return dr.CheckIn.Before(Day(t))
}
