package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookRoom struct {
	RoomID   string    `validate:"required"`
	CheckIn  time.Time `validate:"required"`
	Guests   int       `validate:"gt=0"`
	Currency string    `validate:"required,len=3"`
}

func TestValidatorAcceptsValidMessage(t *testing.T) {
	v := New()
	err := v.Validate(context.Background(), bookRoom{RoomID: "r1", CheckIn: time.Now(), Guests: 2, Currency: "BDT"})
	assert.NoError(t, err)
}

func TestValidatorReportsEveryField(t *testing.T) {
	v := New()
	err := v.Validate(context.Background(), bookRoom{Currency: "TAKA"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	rules := map[string]string{}
	for _, f := range verr.Fields {
		rules[f.Field] = f.Rule
	}
	assert.Equal(t, map[string]string{
		"RoomID":   "required",
		"CheckIn":  "required",
		"Guests":   "gt",
		"Currency": "len",
	}, rules)
	assert.Contains(t, err.Error(), "Currency failed len=3")
}

func TestValidatorIgnoresNonStructs(t *testing.T) {
	assert.NoError(t, New().Validate(context.Background(), "plain string"))
}
