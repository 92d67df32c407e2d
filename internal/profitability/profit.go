package profitability

import (
	"context"
	"fmt"
	"strings"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/shopspring/decimal"
)

type ProfitBase int

const (
	BaseDeposits ProfitBase = iota
	BaseCostBasis
)

func ParseProfitBase(s string) (ProfitBase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deposits":
		return BaseDeposits, nil
	case "cost_basis":
		return BaseCostBasis, nil
	default:
		return 0, fmt.Errorf("unknown profit base %q", s)
	}
}

var hundred = decimal.NewFromInt(100)

// ProfitFor computes profit of value against basis. Both numbers are truncated toward zero;
// a zero basis yields zero relative profit.
func ProfitFor(value, basis decimal.Decimal) model.Profit {
	absolute := value.Sub(basis).Truncate(0)
	return model.Profit{
		Absolute: absolute,
		Relative: relativeTo(absolute, basis),
	}
}

func relativeTo(absolute, basis decimal.Decimal) decimal.Decimal {
	if basis.IsZero() {
		return decimal.Zero
	}
	return absolute.Mul(hundred).Div(basis).Truncate(0)
}

type Calculator struct {
	prices    PriceProvider
	converter *Converter
	base      ProfitBase
}

func NewCalculator(prices PriceProvider, converter *Converter, base ProfitBase) *Calculator {
	return &Calculator{prices: prices, converter: converter, base: base}
}

// Evaluate fills current value and profit of every position and returns the portfolio totals.
func (c *Calculator) Evaluate(ctx context.Context, portfolio *model.Portfolio) (model.PortfolioTotals, error) {
	totals := model.PortfolioTotals{TotalDeposits: portfolio.TotalDeposits}

	for _, position := range portfolio.Positions {
		value, err := c.currentValue(ctx, position)
		if err != nil {
			return model.PortfolioTotals{}, err
		}

		position.CurrentValue = value
		position.Profit = ProfitFor(value, position.CostBasis)

		totals.TotalCostBasis = totals.TotalCostBasis.Add(position.CostBasis)
		totals.TotalFees = totals.TotalFees.Add(position.Fees)
		totals.TotalCurrentValue = totals.TotalCurrentValue.Add(value)
	}

	totals.ProfitToCostBasis = ProfitFor(totals.TotalCurrentValue, totals.TotalCostBasis)
	totals.ProfitToDeposits = model.Profit{
		Absolute: totals.ProfitToCostBasis.Absolute,
		Relative: relativeTo(totals.ProfitToCostBasis.Absolute, totals.TotalDeposits),
	}

	switch c.base {
	case BaseCostBasis:
		totals.Profit = totals.ProfitToCostBasis
	default:
		totals.Profit = totals.ProfitToDeposits
	}

	return totals, nil
}

// currentValue is balance * last price in the home currency. Closed positions need no price.
func (c *Calculator) currentValue(ctx context.Context, position *model.Position) (decimal.Decimal, error) {
	if position.Balance.IsZero() {
		return decimal.Zero, nil
	}

	price, err := c.prices.LastPrice(ctx, position.SecurityID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get price of %s: %w", position.SecurityID, err)
	}

	return c.converter.Convert(ctx, position.Currency, position.Balance.Mul(price))
}
