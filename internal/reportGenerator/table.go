package reportGenerator

import (
	"fmt"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/money"
	"github.com/shopspring/decimal"
)

const (
	TotalRowName   = "Total"
	NotApplicable  = "-"
	BalanceUnit    = "pcs"
	amountDecimals = 2
)

var Header = []string{
	"securities name",
	"ticker",
	"currency",
	"balance",
	"bought at sum",
	"broker's fees",
	"absolute profit",
	"relative profit",
}

// Row is one line of the tabular report. Per-security rows carry their profit in the
// relative column only, the absolute column is NotApplicable for them.
type Row struct {
	Name           string
	Ticker         string
	Currency       string
	Balance        decimal.Decimal
	BalanceUnit    string
	BoughtAtSum    decimal.Decimal
	Fees           decimal.Decimal
	AbsoluteProfit model.ProfitValue
	RelativeProfit model.ProfitValue
}

// BuildRows returns one row per position in portfolio order followed by the total row.
func BuildRows(report model.Report) []Row {
	rows := make([]Row, 0, len(report.Portfolio.Positions)+1)

	for _, position := range report.Portfolio.Positions {
		rows = append(rows, Row{
			Name:           position.Name,
			Ticker:         position.Ticker,
			Currency:       position.Currency,
			Balance:        position.Balance,
			BalanceUnit:    BalanceUnit,
			BoughtAtSum:    position.CostBasis,
			Fees:           position.Fees,
			AbsoluteProfit: model.NotApplicable(),
			RelativeProfit: model.ProfitOf(position.Profit),
		})
	}

	totals := report.Totals
	rows = append(rows, Row{
		Name:           TotalRowName,
		Ticker:         NotApplicable,
		Currency:       money.RUB,
		Balance:        totals.TotalDeposits.Sub(totals.TotalCostBasis),
		BalanceUnit:    money.RUB,
		BoughtAtSum:    totals.TotalCostBasis,
		Fees:           totals.TotalFees,
		AbsoluteProfit: model.ProfitOf(totals.ProfitToDeposits),
		RelativeProfit: model.ProfitOf(totals.ProfitToCostBasis),
	})

	return rows
}

func (r Row) Cells() []string {
	return []string{
		r.Name,
		r.Ticker,
		r.Currency,
		FormatAmount(r.Balance) + " " + r.BalanceUnit,
		FormatAmount(r.BoughtAtSum),
		FormatMoney(r.Fees),
		FormatProfit(r.AbsoluteProfit),
		FormatProfit(r.RelativeProfit),
	}
}

func FormatAmount(d decimal.Decimal) string {
	return d.Round(amountDecimals).String()
}

func FormatMoney(d decimal.Decimal) string {
	return FormatAmount(d) + " " + money.RUB
}

// FormatProfit renders "<absolute> rub (<relative>%)" or "-" for a missing value.
func FormatProfit(v model.ProfitValue) string {
	if !v.Applicable {
		return NotApplicable
	}
	return fmt.Sprintf("%s (%s%%)", FormatMoney(v.Profit.Absolute), v.Profit.Relative.String())
}
