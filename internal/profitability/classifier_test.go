package profitability

import (
	"testing"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestClassifyType(t *testing.T) {
	tests := []struct {
		rawType string
		want    model.OperationKind
	}{
		{"OPERATION_TYPE_INPUT", model.OperationDeposit},
		{"OPERATION_TYPE_BUY", model.OperationBuy},
		{"OPERATION_TYPE_SELL", model.OperationSell},
		{"OPERATION_TYPE_BROKER_FEE", model.OperationBrokerFee},
		{"OPERATION_TYPE_DIVIDEND", model.OperationOther},
		{"", model.OperationOther},
	}

	for _, tt := range tests {
		t.Run(tt.rawType, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyType(tt.rawType))
		})
	}
}

func TestClassify(t *testing.T) {
	t.Run("buy adds quantity and cost", func(t *testing.T) {
		delta := Classify(buy("A", "10", "100.5", "rub"))
		assert.True(t, delta.Balance.Equal(d("10")))
		assert.True(t, delta.CostBasis.Equal(d("1005")))
		assert.True(t, delta.Fees.IsZero())
		assert.True(t, delta.AffectsPosition())
	})

	t.Run("sell subtracts quantity and received payment", func(t *testing.T) {
		delta := Classify(sell("A", "4", "600", "rub"))
		assert.True(t, delta.Balance.Equal(d("-4")))
		assert.True(t, delta.CostBasis.Equal(d("-600")))
	})

	t.Run("fee is stored as magnitude", func(t *testing.T) {
		assert.True(t, Classify(fee("A", "-5", "rub")).Fees.Equal(d("5")))
		assert.True(t, Classify(fee("A", "5", "rub")).Fees.Equal(d("5")))
	})

	t.Run("deposit keeps payment and skips positions", func(t *testing.T) {
		delta := Classify(deposit("2000"))
		assert.True(t, delta.Deposit.Equal(d("2000")))
		assert.False(t, delta.AffectsPosition())
	})

	t.Run("other is a no-op", func(t *testing.T) {
		delta := Classify(model.Operation{Kind: model.OperationOther, SecurityID: "A", Payment: d("42")})
		assert.Equal(t, Delta{Kind: model.OperationOther}, delta)
		assert.False(t, delta.AffectsPosition())
	})
}
