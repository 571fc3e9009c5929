package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pos-nfc-api/internal/core/domain"
	"pos-nfc-api/internal/core/ports/output"
)

// MockCardRepo is a mock of CardRepository.
type MockCardRepo struct {
	mock.Mock
}

func (m *MockCardRepo) Create(ctx context.Context, card *domain.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepo) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardRepo) List(ctx context.Context, filter ports.CardListFilter) ([]*domain.Card, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Card), args.Error(1)
}

func (m *MockCardRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAPDULogRepo is a mock of APDULogRepository. All replays the logs
// passed as its first return value.
type MockAPDULogRepo struct {
	mock.Mock
}

func (m *MockAPDULogRepo) Create(ctx context.Context, entry *domain.APDULog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAPDULogRepo) List(ctx context.Context, filter ports.APDULogFilter) ([]*domain.APDULog, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.APDULog), args.Int(1), args.Error(2)
}

func (m *MockAPDULogRepo) All(ctx context.Context, fn func(*domain.APDULog) error) error {
	args := m.Called(ctx)
	if logs, ok := args.Get(0).([]*domain.APDULog); ok {
		for _, l := range logs {
			if err := fn(l); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

// MockAPDUModelRepo is a mock of APDUModelRepository.
type MockAPDUModelRepo struct {
	mock.Mock
}

func (m *MockAPDUModelRepo) Create(ctx context.Context, model *domain.APDUModel) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockAPDUModelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.APDUModel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APDUModel), args.Error(1)
}

func (m *MockAPDUModelRepo) GetDefault(ctx context.Context) (*domain.APDUModel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APDUModel), args.Error(1)
}

func (m *MockAPDUModelRepo) Update(ctx context.Context, model *domain.APDUModel) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockAPDUModelRepo) SetDefault(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPDUModelRepo) List(ctx context.Context, limit, offset int) ([]*domain.APDUModel, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.APDUModel), args.Int(1), args.Error(2)
}

// MockCardCache is a mock of CardCache.
type MockCardCache struct {
	mock.Mock
}

func (m *MockCardCache) Get(ctx context.Context, id int64) (*domain.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardCache) Set(ctx context.Context, card *domain.Card, ttl time.Duration) error {
	args := m.Called(ctx, card, ttl)
	return args.Error(0)
}

func (m *MockCardCache) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPublisher is a mock of EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, payload any) error {
	args := m.Called(ctx, subject, payload)
	return args.Error(0)
}

// MemoryArtifactStore keeps artifacts in a map under mem:// URIs.
type MemoryArtifactStore struct {
	Objects map[string][]byte
	PutErr  error
}

func NewMemoryArtifactStore() *MemoryArtifactStore {
	return &MemoryArtifactStore{Objects: make(map[string][]byte)}
}

func (s *MemoryArtifactStore) Put(_ context.Context, name string, data []byte) (string, error) {
	if s.PutErr != nil {
		return "", s.PutErr
	}
	uri := "mem://" + name
	s.Objects[uri] = append([]byte(nil), data...)
	return uri, nil
}

func (s *MemoryArtifactStore) Get(_ context.Context, uri string) ([]byte, error) {
	data, ok := s.Objects[uri]
	if !ok {
		return nil, domain.ErrArtifactMissing
	}
	return data, nil
}
