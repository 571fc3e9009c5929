package ports

import (
	"context"
	"time"

	"pos-nfc-api/internal/core/domain"
)

// CardCache is a best-effort cache in front of CardRepository. A miss is
// reported as (nil, nil).
type CardCache interface {
	Get(ctx context.Context, id int64) (*domain.Card, error)
	Set(ctx context.Context, card *domain.Card, ttl time.Duration) error
	Delete(ctx context.Context, id int64) error
}

// EventPublisher fans domain events out to other services.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// ArtifactStore persists trained classifier artifacts.
type ArtifactStore interface {
	Put(ctx context.Context, name string, data []byte) (uri string, err error)
	Get(ctx context.Context, uri string) ([]byte, error)
}

// Event subjects, relative to the configured prefix.
const (
	SubjectCardCreated  = "cards.created"
	SubjectCardDeleted  = "cards.deleted"
	SubjectAPDULogged   = "apdu.logged"
	SubjectModelTrained = "apdu.model.trained"
)
