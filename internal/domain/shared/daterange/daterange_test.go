package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTruncatesToUTCDays(t *testing.T) {
	dhaka := time.FixedZone("BST", 6*3600)
	dr, err := New(time.Date(2025, 5, 10, 2, 0, 0, 0, dhaka), time.Date(2025, 5, 13, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC), dr.CheckIn)
	assert.Equal(t, 4, dr.Nights())
}

func TestNewRejectsEmptyOrInvertedRange(t *testing.T) {
	day := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	_, err := New(day, day.Add(3*time.Hour))
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = New(day, day.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = New(time.Time{}, day)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestContainsIsHalfOpen(t *testing.T) {
	in := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	dr, err := New(in, in.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.True(t, dr.Contains(in.Add(20*time.Hour)))
	assert.True(t, dr.Contains(in.AddDate(0, 0, 1)))
	assert.False(t, dr.Contains(in.AddDate(0, 0, 2)))
	assert.False(t, dr.Contains(in.Add(-time.Minute)))

	assert.False(t, dr.StartsBefore(in.Add(23*time.Hour)))
	assert.True(t, dr.StartsBefore(in.AddDate(0, 0, 1)))
}
