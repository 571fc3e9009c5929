package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pos-nfc-api/internal/core/domain"
	"pos-nfc-api/internal/core/ports/output"
	"pos-nfc-api/internal/metrics"
	mocks "pos-nfc-api/internal/testutil"
)

func TestAPDULogService_Log(t *testing.T) {
	repo := new(mocks.MockAPDULogRepo)
	events := new(mocks.MockPublisher)
	m := metrics.New()
	svc := NewAPDULogService(repo, events, m)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.APDULog")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.APDULog).ID = 11 }).
		Return(nil)
	events.On("Publish", mock.Anything, ports.SubjectAPDULogged, mock.MatchedBy(func(e APDULoggedEvent) bool {
		return e.ID == 11 && e.StatusWord == "9000" && e.Success
	})).Return(nil)

	entry, err := svc.Log(context.Background(), "pos-01", "00 a4 04 00", "6f00 9000", true, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "00A40400", entry.APDUCommand)
	assert.Equal(t, "6F009000", entry.APDUResponse)
	assert.False(t, entry.Timestamp.IsZero())
	assert.Equal(t, time.UTC, entry.Timestamp.Location())
	expected := `
# HELP posnfc_apdu_exchanges_total Logged APDU exchanges by outcome.
# TYPE posnfc_apdu_exchanges_total counter
posnfc_apdu_exchanges_total{success="true"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "posnfc_apdu_exchanges_total"))
	events.AssertExpectations(t)
}

func TestAPDULogService_Log_InvalidCommand(t *testing.T) {
	repo := new(mocks.MockAPDULogRepo)
	svc := NewAPDULogService(repo, nil, nil)

	_, err := svc.Log(context.Background(), "pos-01", "not-hex", "", false, time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidAPDU)

	_, err = svc.Log(context.Background(), "", "00A4", "", false, time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidDeviceID)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAPDULogService_Log_RepoError(t *testing.T) {
	repo := new(mocks.MockAPDULogRepo)
	svc := NewAPDULogService(repo, nil, nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.Log(context.Background(), "pos-01", "00A4", "9000", true, time.Time{})
	assert.Error(t, err)
}

func TestAPDULogService_List_DefaultLimit(t *testing.T) {
	repo := new(mocks.MockAPDULogRepo)
	svc := NewAPDULogService(repo, nil, nil)

	expected := ports.APDULogFilter{DeviceID: "pos-01", Limit: 50}
	repo.On("List", mock.Anything, expected).Return([]*domain.APDULog{}, 0, nil)

	page, err := svc.List(context.Background(), ports.APDULogFilter{DeviceID: "pos-01"})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, DefaultLogPageSize, page.Limit)
	repo.AssertExpectations(t)
}

func TestAPDULogService_List_MaxLimit(t *testing.T) {
	repo := new(mocks.MockAPDULogRepo)
	svc := NewAPDULogService(repo, nil, nil)

	repo.On("List", mock.Anything, ports.APDULogFilter{Limit: 500}).Return([]*domain.APDULog{}, 0, nil)

	page, err := svc.List(context.Background(), ports.APDULogFilter{Limit: 10000, Offset: -4})
	require.NoError(t, err)
	assert.Equal(t, MaxLogPageSize, page.Limit)
	assert.Equal(t, 0, page.Offset)
	repo.AssertExpectations(t)
}
