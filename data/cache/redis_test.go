package cache

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/tinkoff_report_bot/config"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model/moexModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{Cache: config.Cache{StocksExpiration: time.Hour, InstrumentExpiration: time.Hour}}
	return NewRedisCache(client, cfg)
}

func TestRedisCache_Stocks(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	err := c.SetStocks(ctx, []moexModel.StockInfo{
		{Ticker: "SBER", Shortname: "Сбербанк", Lotsize: 10, CurrencyID: "RUB", Status: true, Price: decimal.RequireFromString("250.1")},
		{Ticker: "GAZP", Shortname: "ГАЗПРОМ ао", Lotsize: 10, CurrencyID: "RUB", Status: true},
	})
	require.NoError(t, err)

	stock, err := c.GetStockInfo(ctx, "SBER")
	require.NoError(t, err)
	assert.Equal(t, "Сбербанк", stock.Shortname)
	assert.True(t, stock.Price.Equal(decimal.RequireFromString("250.1")))

	_, err = c.GetStockInfo(ctx, "YNDX")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisCache_Instrument(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.GetInstrument(ctx, "BBG004730N88")
	assert.ErrorIs(t, err, ErrNotFound)

	want := model.Instrument{SecurityID: "BBG004730N88", Name: "Сбербанк", Ticker: "SBER", Currency: "rub"}
	require.NoError(t, c.SetInstrument(ctx, want))

	got, err := c.GetInstrument(ctx, "BBG004730N88")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
