package services

import (
	"context"
	"time"

	"pos-nfc-api/internal/core/domain"
	"pos-nfc-api/internal/core/ports/output"
	"pos-nfc-api/internal/metrics"
)

type APDULogService struct {
	repo    ports.APDULogRepository
	events  ports.EventPublisher
	metrics *metrics.Metrics
}

func NewAPDULogService(repo ports.APDULogRepository, events ports.EventPublisher, m *metrics.Metrics) *APDULogService {
	if events == nil {
		events = noopPublisher{}
	}
	return &APDULogService{repo: repo, events: events, metrics: m}
}

// Log persists one exchange. A zero timestamp means now.
func (s *APDULogService) Log(ctx context.Context, deviceID, command, response string, success bool, ts time.Time) (*domain.APDULog, error) {
	entry, err := domain.NewAPDULog(deviceID, command, response, success, ts)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.metrics.APDUExchange(entry.Success)
	publish(ctx, s.events, ports.SubjectAPDULogged, APDULoggedEvent{
		ID:         entry.ID,
		DeviceID:   entry.DeviceID,
		StatusWord: domain.StatusWord(entry.APDUResponse),
		Success:    entry.Success,
		Timestamp:  entry.Timestamp,
	})

	return entry, nil
}

const (
	DefaultLogPageSize = 50
	MaxLogPageSize     = 500
)

func (s *APDULogService) List(ctx context.Context, filter ports.APDULogFilter) (Page[*domain.APDULog], error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset, DefaultLogPageSize, MaxLogPageSize)

	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return Page[*domain.APDULog]{}, err
	}
	return Page[*domain.APDULog]{Items: logs, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}
