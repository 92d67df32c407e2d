package xlsxGenerator

import (
	"bytes"
	"context"
	"testing"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGenerate(t *testing.T) {
	portfolio := model.NewPortfolio()
	portfolio.TotalDeposits = d("2000")
	portfolio.Upsert("Zeta", func() *model.Position {
		return &model.Position{
			SecurityID: "Z", Name: "Zeta", Ticker: "ZET", Currency: "rub",
			Balance: d("10"), CostBasis: d("1000"), Fees: d("5"),
			Profit: model.Profit{Absolute: d("500"), Relative: d("50")},
		}
	})

	report := model.Report{
		BrokerAccountID: "2000123456",
		Portfolio:       portfolio,
		Totals: model.PortfolioTotals{
			TotalDeposits:     d("2000"),
			TotalCostBasis:    d("1000"),
			TotalFees:         d("5"),
			TotalCurrentValue: d("1500"),
			ProfitToDeposits:  model.Profit{Absolute: d("500"), Relative: d("25")},
			ProfitToCostBasis: model.Profit{Absolute: d("500"), Relative: d("50")},
		},
	}

	content, ext, err := New().Generate(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	sheet := SheetName(report.BrokerAccountID)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "securities name", rows[0][0])
	assert.Equal(t, "relative profit", rows[0][7])

	assert.Equal(t, []string{"Zeta", "ZET", "rub", "10 pcs", "1000", "5 rub", "-", "500 rub (50%)"}, rows[1])

	assert.Equal(t, "Total", rows[2][0])
	assert.Equal(t, "-", rows[2][1])
	assert.Equal(t, "rub", rows[2][2])
	assert.Equal(t, "1000 rub", rows[2][3])
	assert.Equal(t, "500 rub (25%)", rows[2][6])
	assert.Equal(t, "500 rub (50%)", rows[2][7])
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "account 42", SheetName("42"))
	assert.Len(t, SheetName("123456789012345678901234567890"), 31)
}

func TestGenerate_NilPortfolio(t *testing.T) {
	_, _, err := New().Generate(context.Background(), model.Report{})
	assert.Error(t, err)
}

func TestGenerate_AmountsMatchCSVText(t *testing.T) {
	portfolio := model.NewPortfolio()
	portfolio.Upsert("Alpha", func() *model.Position {
		return &model.Position{
			SecurityID: "A", Name: "Alpha", Ticker: "ALP", Currency: "usd",
			Balance: d("3"), CostBasis: d("0.1").Add(d("0.2")).Add(d("879.244")), Fees: d("1.5"),
		}
	})

	report := model.Report{
		BrokerAccountID: "1",
		Portfolio:       portfolio,
		Totals:          model.PortfolioTotals{TotalCostBasis: d("879.544")},
	}

	content, _, err := New().Generate(context.Background(), report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName("1"))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "879.54", rows[1][4])
	assert.Equal(t, "879.54", rows[2][4])
}
