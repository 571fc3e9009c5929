package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-nfc-api/internal/core/domain"
)

// fakeRedis implements the Get, Set and Del commands over a map. Any other
// command panics through the nil embedded interface.
type fakeRedis struct {
	goredis.Cmdable
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	if f.err != nil {
		return goredis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *goredis.StatusCmd {
	if f.err != nil {
		return goredis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = ttl
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	if f.err != nil {
		return goredis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func sampleCard() *domain.Card {
	return &domain.Card{
		ID:         42,
		HolderName: "Ada Lovelace",
		PAN:        "4111111111111111",
		Expiry:     time.Date(2028, 12, 31, 0, 0, 0, 0, time.UTC),
		CVV:        123,
		IssuerID:   "411111",
		Track:      "T1",
		Amount:     decimal.RequireFromString("1234.50"),
	}
}

func TestCardCache_GetMiss(t *testing.T) {
	cache := NewCardCache(newFakeRedis())

	card, err := cache.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestCardCache_SetThenGet(t *testing.T) {
	client := newFakeRedis()
	cache := NewCardCache(client)
	want := sampleCard()

	require.NoError(t, cache.Set(context.Background(), want, time.Minute))
	assert.Contains(t, client.values, "card:42")
	assert.Equal(t, time.Minute, client.ttls["card:42"])

	got, err := cache.Get(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, want.Amount.Equal(got.Amount), "amount %s != %s", got.Amount, want.Amount)
	assert.True(t, want.Expiry.Equal(got.Expiry))
	assert.Equal(t, want.PAN, got.PAN)
	assert.Equal(t, want.CVV, got.CVV)
	assert.Equal(t, want.HolderName, got.HolderName)
}

func TestCardCache_Delete(t *testing.T) {
	client := newFakeRedis()
	cache := NewCardCache(client)
	require.NoError(t, cache.Set(context.Background(), sampleCard(), time.Minute))

	require.NoError(t, cache.Delete(context.Background(), 42))

	card, err := cache.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestCardCache_Errors(t *testing.T) {
	client := newFakeRedis()
	client.values["card:7"] = "{not json"
	cache := NewCardCache(client)

	_, err := cache.Get(context.Background(), 7)
	assert.ErrorContains(t, err, "decode cached card")

	client.err = errors.New("connection refused")
	_, err = cache.Get(context.Background(), 7)
	assert.ErrorContains(t, err, "connection refused")
	assert.Error(t, cache.Set(context.Background(), sampleCard(), time.Minute))
	assert.Error(t, cache.Delete(context.Background(), 7))
}
