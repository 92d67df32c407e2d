package profitability

import (
	"context"
	"errors"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/shopspring/decimal"
)

var errNoData = errors.New("no data")

type fakePrices struct {
	prices map[string]decimal.Decimal
	calls  map[string]int
}

func newFakePrices(prices map[string]string) *fakePrices {
	p := &fakePrices{prices: make(map[string]decimal.Decimal), calls: make(map[string]int)}
	for figi, price := range prices {
		p.prices[figi] = decimal.RequireFromString(price)
	}
	return p
}

func (p *fakePrices) LastPrice(_ context.Context, securityID string) (decimal.Decimal, error) {
	p.calls[securityID]++
	price, ok := p.prices[securityID]
	if !ok {
		return decimal.Zero, errNoData
	}
	return price, nil
}

type fakeInstruments map[string]model.Instrument

func (f fakeInstruments) Instrument(_ context.Context, securityID string) (model.Instrument, error) {
	instrument, ok := f[securityID]
	if !ok {
		return model.Instrument{}, errNoData
	}
	return instrument, nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func buy(figi, qty, price, currency string) model.Operation {
	return model.Operation{Kind: model.OperationBuy, SecurityID: figi, Quantity: d(qty), UnitPrice: d(price), Payment: d(qty).Mul(d(price)).Neg(), Currency: currency}
}

func sell(figi, qty, payment, currency string) model.Operation {
	return model.Operation{Kind: model.OperationSell, SecurityID: figi, Quantity: d(qty), Payment: d(payment), Currency: currency}
}

func fee(figi, payment, currency string) model.Operation {
	return model.Operation{Kind: model.OperationBrokerFee, SecurityID: figi, Payment: d(payment), Currency: currency}
}

func deposit(payment string) model.Operation {
	return model.Operation{Kind: model.OperationDeposit, Payment: d(payment), Currency: "rub"}
}
