package dto

import (
	"pos-nfc-api/internal/core/domain"

	"github.com/shopspring/decimal"
)

type CreateCardRequest struct {
	HolderName string           `json:"holder_name" binding:"required,max=128"`
	PAN        string           `json:"pan" binding:"required,numeric,max=16"`
	Expiry     string           `json:"expiry" binding:"required,datetime=2006-01-02"`
	CVV        *int             `json:"cvv" binding:"required,min=0,max=9999"`
	IssuerID   string           `json:"issuer_id" binding:"required,max=6"`
	Track      string           `json:"track" binding:"required,max=4"`
	Amount     *decimal.Decimal `json:"amount"`
}

type CardResponse struct {
	ID         int64   `json:"id"`
	HolderName string  `json:"holder_name"`
	PAN        string  `json:"pan"`
	Expiry     string  `json:"expiry"`
	CVV        int     `json:"cvv"`
	IssuerID   string  `json:"issuer_id"`
	Track      string  `json:"track"`
	Amount     float64 `json:"amount"`
}

func ToCardResponse(c *domain.Card) CardResponse {
	return CardResponse{
		ID:         c.ID,
		HolderName: c.HolderName,
		PAN:        c.PAN,
		Expiry:     c.Expiry.Format(domain.ExpiryLayout),
		CVV:        c.CVV,
		IssuerID:   c.IssuerID,
		Track:      c.Track,
		Amount:     c.Amount.Round(2).InexactFloat64(),
	}
}

func ToCardResponses(cards []*domain.Card) []CardResponse {
	items := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		items = append(items, ToCardResponse(c))
	}
	return items
}
