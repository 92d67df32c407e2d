package session

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*RedisSession, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSession(client, time.Minute), mr
}

func TestSession_SetGet(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	_, err := s.GetSession(ctx, "42")
	assert.ErrorIs(t, err, ErrNotFound)

	want := model.Session{
		State:       model.ExpectingCost,
		StockAction: model.AddStocks,
		Ticker:      "SBER",
		Amount:      decimal.NewFromInt(10),
	}
	require.NoError(t, s.SetSession(ctx, "42", want))

	got, err := s.GetSession(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, want.State, got.State)
	assert.Equal(t, want.StockAction, got.StockAction)
	assert.Equal(t, want.Ticker, got.Ticker)
	assert.True(t, want.Amount.Equal(got.Amount))
}

func TestSession_Expires(t *testing.T) {
	s, mr := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.SetSession(ctx, "42", model.Session{State: model.ExpectingTicker}))

	mr.FastForward(2 * time.Minute)

	_, err := s.GetSession(ctx, "42")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSession_Reset(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.SetSession(ctx, "42", model.Session{State: model.ExpectingSubscription}))
	require.NoError(t, s.ResetSession(ctx, "42"))

	_, err := s.GetSession(ctx, "42")
	assert.ErrorIs(t, err, ErrNotFound)
}
