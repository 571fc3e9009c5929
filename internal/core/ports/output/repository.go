package ports

import (
	"context"

	"github.com/google/uuid"

	"pos-nfc-api/internal/core/domain"
)

// CardListFilter narrows GET /cards/. A zero Limit means no limit.
type CardListFilter struct {
	IssuerID string
	Limit    int
	Offset   int
}

type APDULogFilter struct {
	DeviceID string
	Success  *bool
	Limit    int
	Offset   int
}

type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	GetByID(ctx context.Context, id int64) (*domain.Card, error)
	List(ctx context.Context, filter CardListFilter) ([]*domain.Card, error)
	Delete(ctx context.Context, id int64) error
}

type APDULogRepository interface {
	Create(ctx context.Context, entry *domain.APDULog) error
	List(ctx context.Context, filter APDULogFilter) ([]*domain.APDULog, int, error)
	// All streams every log in id order to fn; iteration stops at the first
	// error fn returns.
	All(ctx context.Context, fn func(*domain.APDULog) error) error
}

type APDUModelRepository interface {
	Create(ctx context.Context, model *domain.APDUModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.APDUModel, error)
	GetDefault(ctx context.Context) (*domain.APDUModel, error)
	Update(ctx context.Context, model *domain.APDUModel) error
	// SetDefault makes id the only default model.
	SetDefault(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*domain.APDUModel, int, error)
}
