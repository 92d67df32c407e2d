package model

import "github.com/shopspring/decimal"

type Instrument struct {
	SecurityID string `json:"figi"`
	Name       string `json:"name"`
	Ticker     string `json:"ticker"`
	Currency   string `json:"currency"`
}

type Profit struct {
	Absolute decimal.Decimal
	Relative decimal.Decimal
}

// ProfitValue is a profit that may be absent for a report cell.
type ProfitValue struct {
	Profit     Profit
	Applicable bool
}

func ProfitOf(p Profit) ProfitValue {
	return ProfitValue{Profit: p, Applicable: true}
}

func NotApplicable() ProfitValue {
	return ProfitValue{}
}

// Position is the accumulated state of one security. CostBasis and Fees are RUB-equivalent.
type Position struct {
	SecurityID   string
	Name         string
	Ticker       string
	Currency     string
	Balance      decimal.Decimal
	CostBasis    decimal.Decimal
	Fees         decimal.Decimal
	CurrentValue decimal.Decimal
	Profit       Profit
}

type PortfolioTotals struct {
	TotalDeposits     decimal.Decimal
	TotalCostBasis    decimal.Decimal
	TotalFees         decimal.Decimal
	TotalCurrentValue decimal.Decimal
	ProfitToDeposits  Profit
	ProfitToCostBasis Profit
	// Profit is the headline profit against the configured base
	Profit Profit
}

// Portfolio holds positions in order of their first operation.
type Portfolio struct {
	Positions     []*Position
	TotalDeposits decimal.Decimal
	index         map[string]int
}

func NewPortfolio() *Portfolio {
	return &Portfolio{index: make(map[string]int)}
}

func (p *Portfolio) Position(name string) (*Position, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.Positions[i], true
}

// Upsert returns the position for name, appending a new one built by newFn when absent.
func (p *Portfolio) Upsert(name string, newFn func() *Position) *Position {
	if pos, ok := p.Position(name); ok {
		return pos
	}
	if p.index == nil {
		p.index = make(map[string]int)
	}
	pos := newFn()
	p.index[name] = len(p.Positions)
	p.Positions = append(p.Positions, pos)
	return pos
}

func (p *Portfolio) ByName() map[string]Position {
	res := make(map[string]Position, len(p.Positions))
	for _, pos := range p.Positions {
		res[pos.Name] = *pos
	}
	return res
}

type Report struct {
	BrokerAccountID string
	Portfolio       *Portfolio
	Totals          PortfolioTotals
}
