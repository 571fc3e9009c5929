package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pos-nfc-api/internal/core/domain"
	"pos-nfc-api/internal/core/ports/output"
)

// CardEvent never carries the full PAN or the CVV.
type CardEvent struct {
	ID         int64  `json:"id"`
	HolderName string `json:"holder_name"`
	MaskedPAN  string `json:"masked_pan"`
	IssuerID   string `json:"issuer_id"`
	Expiry     string `json:"expiry"`
	Amount     string `json:"amount"`
}

func newCardEvent(c *domain.Card) CardEvent {
	return CardEvent{
		ID:         c.ID,
		HolderName: c.HolderName,
		MaskedPAN:  c.MaskedPAN(),
		IssuerID:   c.IssuerID,
		Expiry:     c.Expiry.Format(domain.ExpiryLayout),
		Amount:     c.Amount.StringFixed(2),
	}
}

type APDULoggedEvent struct {
	ID         int64     `json:"id"`
	DeviceID   string    `json:"device_id"`
	StatusWord string    `json:"status_word"`
	Success    bool      `json:"success"`
	Timestamp  time.Time `json:"timestamp"`
}

type ModelTrainedEvent struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	URI         string    `json:"uri"`
	SampleCount int       `json:"sample_count"`
	Accuracy    float64   `json:"accuracy"`
}

// publish logs and swallows publisher errors: events are a side channel
// and never fail the request that produced them.
func publish(ctx context.Context, p ports.EventPublisher, subject string, payload any) {
	if err := p.Publish(ctx, subject, payload); err != nil {
		log.WithError(err).WithField("subject", subject).Warn("publish event failed")
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

type noopCardCache struct{}

func (noopCardCache) Get(context.Context, int64) (*domain.Card, error) { return nil, nil }
func (noopCardCache) Set(context.Context, *domain.Card, time.Duration) error { return nil }
func (noopCardCache) Delete(context.Context, int64) error { return nil }
