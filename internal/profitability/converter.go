package profitability

import (
	"context"
	"fmt"

	"github.com/KotFed0t/tinkoff_report_bot/internal/money"
	"github.com/shopspring/decimal"
)

// Route converts a currency into Target using the last price of AnchorSecurityID as the rate.
type Route struct {
	AnchorSecurityID string
	Target           string
}

func DefaultRoutes(usdSecurityID string) map[string]Route {
	return map[string]Route{
		money.USD: {AnchorSecurityID: usdSecurityID, Target: money.RUB},
	}
}

// Converter converts amounts into the home currency. Rates are looked up once per
// converter, so one converter must serve exactly one report run.
type Converter struct {
	home   string
	routes map[string]Route
	prices PriceProvider
	rates  map[string]decimal.Decimal
}

func NewConverter(routes map[string]Route, prices PriceProvider) *Converter {
	return &Converter{
		home:   money.RUB,
		routes: routes,
		prices: prices,
		rates:  make(map[string]decimal.Decimal),
	}
}

// Rate returns the multiplier from currency to the home currency.
// Currencies without a route are taken as is.
func (c *Converter) Rate(ctx context.Context, currency string) (decimal.Decimal, error) {
	currency = money.NormalizeCurrency(currency)

	if rate, ok := c.rates[currency]; ok {
		return rate, nil
	}

	rate := decimal.NewFromInt(1)
	cur := currency
	// chained routes are allowed, each currency may appear only once
	for hops := 0; hops <= len(c.routes); hops++ {
		route, ok := c.routes[cur]
		if !ok || cur == c.home {
			c.rates[currency] = rate
			return rate, nil
		}

		price, err := c.prices.LastPrice(ctx, route.AnchorSecurityID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("get %s rate: %w", cur, err)
		}

		rate = rate.Mul(price)
		cur = money.NormalizeCurrency(route.Target)
	}

	return decimal.Zero, fmt.Errorf("conversion routes for %s form a cycle", currency)
}

func (c *Converter) Convert(ctx context.Context, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsZero() {
		return amount, nil
	}

	rate, err := c.Rate(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Mul(rate), nil
}
