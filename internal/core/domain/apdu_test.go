package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPDULog_Normalizes(t *testing.T) {
	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	l, err := NewAPDULog(" pos-01 ", "00 a4 04 00\n07", "6f 10 90 00", true, ts)
	require.NoError(t, err)

	assert.Equal(t, "pos-01", l.DeviceID)
	assert.Equal(t, "00A4040007", l.APDUCommand)
	assert.Equal(t, "6F109000", l.APDUResponse)
	assert.Equal(t, time.UTC, l.Timestamp.Location())
	assert.Equal(t, "00A4040007|6F109000", l.Combo())
}

func TestNewAPDULog_DefaultsTimestamp(t *testing.T) {
	before := time.Now().UTC()
	l, err := NewAPDULog("pos-01", "00A4", "", false, time.Time{})
	require.NoError(t, err)

	assert.False(t, l.Timestamp.Before(before))
	assert.Equal(t, "", l.APDUResponse)
}

func TestNewAPDULog_Errors(t *testing.T) {
	_, err := NewAPDULog("", "00A4", "9000", true, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidDeviceID)

	_, err = NewAPDULog("pos", "  ", "9000", true, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidAPDU)

	_, err = NewAPDULog("pos", "0G", "9000", true, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidAPDU)

	_, err = NewAPDULog("pos", "00A4", "900", true, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestStatusWord(t *testing.T) {
	assert.Equal(t, "9000", StatusWord("6F109000"))
	assert.Equal(t, "6A82", StatusWord("6A82"))
	assert.Equal(t, "", StatusWord("90"))
}

func TestAPDUModel_Lifecycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	m, err := NewAPDUModel("", 100, now)
	require.NoError(t, err)
	assert.Equal(t, ModelStatusPending, m.Status)
	assert.Equal(t, "apdu-20260101T000000.000Z", m.Name)

	m.MarkReady("file:///tmp/m.json", 40, 0.95, now.Add(time.Minute))
	assert.Equal(t, ModelStatusReady, m.Status)
	assert.Equal(t, 40, m.SampleCount)

	m.IsDefault = true
	m.MarkFailed(errors.New("boom"), now.Add(2*time.Minute))
	assert.Equal(t, ModelStatusFailed, m.Status)
	assert.False(t, m.IsDefault)
	assert.Equal(t, "boom", m.Error)

	_, err = NewAPDUModel(string(make([]byte, MaxModelNameLen+1)), 1, now)
	assert.ErrorIs(t, err, ErrInvalidModelName)
}

func TestValidateModelName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"nightly", false},
		{"apdu-20260101T000000.000Z", false},
		{"v1.2_rc-3", false},
		{"team/nightly", true},
		{"../escape", true},
		{`back\slash`, true},
		{".", true},
		{"..", true},
		{"with space", true},
		{strings.Repeat("a", MaxModelNameLen), false},
		{strings.Repeat("a", MaxModelNameLen+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModelName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidModelName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
