package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"pos-nfc-api/internal/core/domain"
	"pos-nfc-api/internal/core/ports/output"
)

const maxCardListLimit = 1000

type CardService struct {
	repo     ports.CardRepository
	cache    ports.CardCache
	events   ports.EventPublisher
	cacheTTL time.Duration
}

// NewCardService wires the card use cases. cache and events may be nil.
func NewCardService(repo ports.CardRepository, cache ports.CardCache, events ports.EventPublisher, cacheTTL time.Duration) *CardService {
	if cache == nil {
		cache = noopCardCache{}
	}
	if events == nil {
		events = noopPublisher{}
	}
	return &CardService{repo: repo, cache: cache, events: events, cacheTTL: cacheTTL}
}

func (s *CardService) Create(ctx context.Context, holderName, pan string, expiry time.Time, cvv int, issuerID, track string, amount *decimal.Decimal) (*domain.Card, error) {
	card, err := domain.NewCard(holderName, pan, expiry, cvv, issuerID, track, amount)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, card); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"card_id":   card.ID,
		"pan":       card.MaskedPAN(),
		"issuer_id": card.IssuerID,
	}).Info("card created")

	s.cacheCard(ctx, card)
	publish(ctx, s.events, ports.SubjectCardCreated, newCardEvent(card))

	return card, nil
}

func (s *CardService) Get(ctx context.Context, id int64) (*domain.Card, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidCardID
	}

	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		log.WithError(err).WithField("card_id", id).Warn("card cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	card, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheCard(ctx, card)
	return card, nil
}

// List returns every card in id order unless the filter pages it.
func (s *CardService) List(ctx context.Context, filter ports.CardListFilter) ([]*domain.Card, error) {
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	if filter.Limit > maxCardListLimit {
		filter.Limit = maxCardListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

func (s *CardService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidCardID
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, id); err != nil {
		log.WithError(err).WithField("card_id", id).Warn("card cache invalidation failed")
	}
	publish(ctx, s.events, ports.SubjectCardDeleted, map[string]int64{"id": id})
	return nil
}

func (s *CardService) cacheCard(ctx context.Context, card *domain.Card) {
	if err := s.cache.Set(ctx, card, s.cacheTTL); err != nil {
		log.WithError(err).WithField("card_id", card.ID).Warn("card cache write failed")
	}
}
