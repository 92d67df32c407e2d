package profitability

import (
	"context"
	"testing"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testInstruments = fakeInstruments{
	"A":     {SecurityID: "A", Name: "Alpha", Ticker: "ALP"},
	"A2":    {SecurityID: "A2", Name: "Alpha", Ticker: "ALP"},
	"B":     {SecurityID: "B", Name: "Beta", Ticker: "BET"},
	"US":    {SecurityID: "US", Name: "Apple", Ticker: "AAPL"},
	"NONAM": {SecurityID: "NONAM", Ticker: "NN"},
}

func newTestAggregator(prices *fakePrices) *Aggregator {
	return NewAggregator(testInstruments, NewConverter(DefaultRoutes("USDRUB"), prices))
}

func assertPositionsEqual(t *testing.T, want, got map[string]model.Position) {
	t.Helper()
	require.Len(t, got, len(want))
	for name, w := range want {
		g, ok := got[name]
		require.True(t, ok, "position %s is missing", name)
		assert.Equal(t, w.SecurityID, g.SecurityID, name)
		assert.True(t, w.Balance.Equal(g.Balance), "%s balance: want %s got %s", name, w.Balance, g.Balance)
		assert.True(t, w.CostBasis.Equal(g.CostBasis), "%s cost basis: want %s got %s", name, w.CostBasis, g.CostBasis)
		assert.True(t, w.Fees.Equal(g.Fees), "%s fees: want %s got %s", name, w.Fees, g.Fees)
	}
}

func TestAggregate_Example(t *testing.T) {
	ops := []model.Operation{
		buy("A", "10", "100", "rub"),
		fee("A", "-5", "rub"),
		deposit("2000"),
	}

	portfolio, err := newTestAggregator(newFakePrices(nil)).Aggregate(context.Background(), ops)
	require.NoError(t, err)

	assert.True(t, portfolio.TotalDeposits.Equal(d("2000")))
	require.Len(t, portfolio.Positions, 1)

	position := portfolio.Positions[0]
	assert.Equal(t, "Alpha", position.Name)
	assert.Equal(t, "ALP", position.Ticker)
	assert.True(t, position.Balance.Equal(d("10")))
	assert.True(t, position.CostBasis.Equal(d("1000")))
	assert.True(t, position.Fees.Equal(d("5")))
}

func permutations(ops []model.Operation) [][]model.Operation {
	if len(ops) <= 1 {
		return [][]model.Operation{append([]model.Operation(nil), ops...)}
	}
	var res [][]model.Operation
	for i := range ops {
		rest := make([]model.Operation, 0, len(ops)-1)
		rest = append(rest, ops[:i]...)
		rest = append(rest, ops[i+1:]...)
		for _, p := range permutations(rest) {
			res = append(res, append([]model.Operation{ops[i]}, p...))
		}
	}
	return res
}

func TestAggregate_OrderIndependent(t *testing.T) {
	ops := []model.Operation{
		buy("A", "10", "100", "rub"),
		sell("A", "3", "450", "rub"),
		fee("A", "-2.5", "rub"),
		buy("B", "1", "20", "usd"),
		deposit("5000"),
		{Kind: model.OperationOther, SecurityID: "B", Payment: d("7")},
	}

	prices := newFakePrices(map[string]string{"USDRUB": "90"})
	reference, err := newTestAggregator(prices).Aggregate(context.Background(), ops)
	require.NoError(t, err)

	for _, perm := range permutations(ops) {
		got, err := newTestAggregator(prices).Aggregate(context.Background(), perm)
		require.NoError(t, err)
		assertPositionsEqual(t, reference.ByName(), got.ByName())
		assert.True(t, reference.TotalDeposits.Equal(got.TotalDeposits))
	}
}

func TestAggregate_BuysAreLinear(t *testing.T) {
	agg := newTestAggregator(newFakePrices(nil))

	split, err := agg.Aggregate(context.Background(), []model.Operation{
		buy("A", "3", "100", "rub"),
		buy("A", "7", "100", "rub"),
	})
	require.NoError(t, err)

	whole, err := agg.Aggregate(context.Background(), []model.Operation{
		buy("A", "10", "100", "rub"),
	})
	require.NoError(t, err)

	assertPositionsEqual(t, whole.ByName(), split.ByName())
}

func TestAggregate_SellClosesPosition(t *testing.T) {
	portfolio, err := newTestAggregator(newFakePrices(nil)).Aggregate(context.Background(), []model.Operation{
		buy("A", "10", "100", "rub"),
		sell("A", "10", "1200", "rub"),
	})
	require.NoError(t, err)

	position, ok := portfolio.Position("Alpha")
	require.True(t, ok)
	assert.True(t, position.Balance.IsZero())
	assert.True(t, position.CostBasis.Equal(d("-200")))
}

func TestAggregate_UsdConvertedOnce(t *testing.T) {
	prices := newFakePrices(map[string]string{"USDRUB": "90.5"})

	portfolio, err := newTestAggregator(prices).Aggregate(context.Background(), []model.Operation{
		buy("US", "2", "150", "usd"),
		buy("US", "1", "160", "USD"),
		fee("US", "-1", "usd"),
	})
	require.NoError(t, err)

	position, ok := portfolio.Position("Apple")
	require.True(t, ok)
	assert.True(t, position.Balance.Equal(d("3")))
	// (2*150 + 160) * 90.5
	assert.True(t, position.CostBasis.Equal(d("41630")), "got %s", position.CostBasis)
	assert.True(t, position.Fees.Equal(d("90.5")))
	assert.Equal(t, 1, prices.calls["USDRUB"], "rate must be looked up once per run")
}

func TestAggregate_GroupsByName(t *testing.T) {
	portfolio, err := newTestAggregator(newFakePrices(nil)).Aggregate(context.Background(), []model.Operation{
		buy("B", "1", "10", "rub"),
		buy("A", "1", "100", "rub"),
		buy("A2", "2", "100", "rub"),
	})
	require.NoError(t, err)

	require.Len(t, portfolio.Positions, 2)
	assert.Equal(t, "Beta", portfolio.Positions[0].Name, "positions keep first occurrence order")
	assert.Equal(t, "Alpha", portfolio.Positions[1].Name)
	assert.Equal(t, "A", portfolio.Positions[1].SecurityID)
	assert.True(t, portfolio.Positions[1].Balance.Equal(d("3")))
}

func TestAggregate_NameFallsBackToSecurityID(t *testing.T) {
	portfolio, err := newTestAggregator(newFakePrices(nil)).Aggregate(context.Background(), []model.Operation{
		buy("NONAM", "1", "10", "rub"),
	})
	require.NoError(t, err)

	_, ok := portfolio.Position("NONAM")
	assert.True(t, ok)
}

func TestAggregate_Errors(t *testing.T) {
	t.Run("unknown instrument", func(t *testing.T) {
		_, err := newTestAggregator(newFakePrices(nil)).Aggregate(context.Background(), []model.Operation{
			buy("UNKNOWN", "1", "1", "rub"),
		})
		assert.ErrorIs(t, err, errNoData)
	})

	t.Run("missing usd rate", func(t *testing.T) {
		_, err := newTestAggregator(newFakePrices(nil)).Aggregate(context.Background(), []model.Operation{
			buy("US", "1", "1", "usd"),
		})
		assert.ErrorIs(t, err, errNoData)
	})

	t.Run("other operations need no lookups", func(t *testing.T) {
		portfolio, err := newTestAggregator(newFakePrices(nil)).Aggregate(context.Background(), []model.Operation{
			{Kind: model.OperationOther, SecurityID: "UNKNOWN"},
		})
		require.NoError(t, err)
		assert.Empty(t, portfolio.Positions)
	})
}
