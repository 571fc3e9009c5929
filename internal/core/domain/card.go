package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxHolderNameLen = 128
	MaxPANLen        = 16
	MaxIssuerIDLen   = 6
	MaxTrackLen      = 4
	MaxCVV           = 9999

	// ExpiryLayout is the wire and storage format of Card.Expiry.
	ExpiryLayout = "2006-01-02"
)

// maxAmount is the exclusive upper bound of NUMERIC(10,2).
var maxAmount = decimal.New(1, 8)

// Card is a payment card provisioned for NFC emulation at a POS terminal.
type Card struct {
	ID         int64           `json:"id"`
	HolderName string          `json:"holder_name"`
	PAN        string          `json:"pan"`
	Expiry     time.Time       `json:"expiry"`
	CVV        int             `json:"cvv"`
	IssuerID   string          `json:"issuer_id"`
	Track      string          `json:"track"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewCard builds a validated card. A nil amount defaults to 0.00; amounts
// are rounded half away from zero to two places.
func NewCard(holderName, pan string, expiry time.Time, cvv int, issuerID, track string, amount *decimal.Decimal) (*Card, error) {
	c := &Card{
		HolderName: strings.TrimSpace(holderName),
		PAN:        strings.TrimSpace(pan),
		Expiry:     truncateToDate(expiry),
		CVV:        cvv,
		IssuerID:   strings.TrimSpace(issuerID),
		Track:      strings.TrimSpace(track),
		Amount:     decimal.Zero,
	}
	if amount != nil {
		c.Amount = amount.Round(2)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the column constraints of the cards table.
func (c *Card) Validate() error {
	if n := utf8.RuneCountInString(c.HolderName); n == 0 || n > MaxHolderNameLen {
		return ErrInvalidHolderName
	}
	if len(c.PAN) == 0 || len(c.PAN) > MaxPANLen || !isDigits(c.PAN) {
		return ErrInvalidPAN
	}
	if c.Expiry.IsZero() {
		return ErrInvalidExpiry
	}
	if c.CVV < 0 || c.CVV > MaxCVV {
		return ErrInvalidCVV
	}
	if n := utf8.RuneCountInString(c.IssuerID); n == 0 || n > MaxIssuerIDLen {
		return ErrInvalidIssuerID
	}
	if n := utf8.RuneCountInString(c.Track); n == 0 || n > MaxTrackLen {
		return ErrInvalidTrack
	}
	if c.Amount.IsNegative() || c.Amount.GreaterThanOrEqual(maxAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// MaskedPAN keeps the last four digits, e.g. "************1234".
func (c *Card) MaskedPAN() string {
	return MaskPAN(c.PAN)
}

func MaskPAN(pan string) string {
	if len(pan) <= 4 {
		return pan
	}
	return strings.Repeat("*", len(pan)-4) + pan[len(pan)-4:]
}

// ParseExpiry parses a YYYY-MM-DD date.
func ParseExpiry(s string) (time.Time, error) {
	t, err := time.Parse(ExpiryLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidExpiry
	}
	return t, nil
}

func truncateToDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
