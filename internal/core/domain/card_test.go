package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCardArgs() (string, string, time.Time, int, string, string) {
	return "Ada Lovelace", "4111111111111111", time.Date(2028, 12, 31, 15, 4, 5, 0, time.UTC), 123, "411111", "T1"
}

func TestNewCard_Defaults(t *testing.T) {
	holder, pan, expiry, cvv, issuer, track := validCardArgs()

	card, err := NewCard(holder, pan, expiry, cvv, issuer, track, nil)
	require.NoError(t, err)

	assert.True(t, card.Amount.IsZero())
	assert.Equal(t, time.Date(2028, 12, 31, 0, 0, 0, 0, time.UTC), card.Expiry)
}

func TestNewCard_RoundsAmount(t *testing.T) {
	holder, pan, expiry, cvv, issuer, track := validCardArgs()

	tests := map[string]string{
		"10.255": "10.26",
		"10.254": "10.25",
		"0.005":  "0.01",
		"42":     "42",
	}
	for in, want := range tests {
		amount := decimal.RequireFromString(in)
		card, err := NewCard(holder, pan, expiry, cvv, issuer, track, &amount)
		require.NoError(t, err, in)
		assert.Equal(t, want, card.Amount.String(), in)
	}
}

func TestNewCard_Validation(t *testing.T) {
	holder, pan, expiry, cvv, issuer, track := validCardArgs()
	neg := decimal.RequireFromString("-0.01")
	huge := decimal.RequireFromString("100000000")

	tests := []struct {
		name   string
		mutate func(h, p *string, e *time.Time, c *int, i, tr *string) *decimal.Decimal
		want   error
	}{
		{"empty holder", func(h, _ *string, _ *time.Time, _ *int, _, _ *string) *decimal.Decimal { *h = " "; return nil }, ErrInvalidHolderName},
		{"pan letters", func(_, p *string, _ *time.Time, _ *int, _, _ *string) *decimal.Decimal { *p = "4111-1111"; return nil }, ErrInvalidPAN},
		{"pan too long", func(_, p *string, _ *time.Time, _ *int, _, _ *string) *decimal.Decimal { *p = "12345678901234567"; return nil }, ErrInvalidPAN},
		{"zero expiry", func(_, _ *string, e *time.Time, _ *int, _, _ *string) *decimal.Decimal { *e = time.Time{}; return nil }, ErrInvalidExpiry},
		{"cvv too large", func(_, _ *string, _ *time.Time, c *int, _, _ *string) *decimal.Decimal { *c = 10000; return nil }, ErrInvalidCVV},
		{"issuer too long", func(_, _ *string, _ *time.Time, _ *int, i, _ *string) *decimal.Decimal { *i = "1234567"; return nil }, ErrInvalidIssuerID},
		{"track too long", func(_, _ *string, _ *time.Time, _ *int, _, tr *string) *decimal.Decimal { *tr = "TRACK"; return nil }, ErrInvalidTrack},
		{"negative amount", func(_, _ *string, _ *time.Time, _ *int, _, _ *string) *decimal.Decimal { return &neg }, ErrInvalidAmount},
		{"amount overflow", func(_, _ *string, _ *time.Time, _ *int, _, _ *string) *decimal.Decimal { return &huge }, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, p, e, c, i, tr := holder, pan, expiry, cvv, issuer, track
			amount := tt.mutate(&h, &p, &e, &c, &i, &tr)

			_, err := NewCard(h, p, e, c, i, tr, amount)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMaskPAN(t *testing.T) {
	assert.Equal(t, "************1111", MaskPAN("4111111111111111"))
	assert.Equal(t, "123", MaskPAN("123"))
}

func TestParseExpiry(t *testing.T) {
	got, err := ParseExpiry(" 2030-01-31 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseExpiry("01/30")
	assert.ErrorIs(t, err, ErrInvalidExpiry)
}
