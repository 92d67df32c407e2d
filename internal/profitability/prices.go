package profitability

import (
	"context"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/shopspring/decimal"
)

type PriceProvider interface {
	LastPrice(ctx context.Context, securityID string) (decimal.Decimal, error)
}

type InstrumentResolver interface {
	Instrument(ctx context.Context, securityID string) (model.Instrument, error)
}

// PriceMemo remembers prices for the lifetime of one report run.
type PriceMemo struct {
	prices PriceProvider
	cache  map[string]decimal.Decimal
}

func NewPriceMemo(prices PriceProvider) *PriceMemo {
	return &PriceMemo{prices: prices, cache: make(map[string]decimal.Decimal)}
}

func (m *PriceMemo) LastPrice(ctx context.Context, securityID string) (decimal.Decimal, error) {
	if price, ok := m.cache[securityID]; ok {
		return price, nil
	}

	price, err := m.prices.LastPrice(ctx, securityID)
	if err != nil {
		return decimal.Zero, err
	}

	m.cache[securityID] = price
	return price, nil
}
