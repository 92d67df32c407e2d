package profitability

import (
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/shopspring/decimal"
)

// broker operation types that take part in the report, everything else is ignored
const (
	operationTypeInput     = "OPERATION_TYPE_INPUT"
	operationTypeBuy       = "OPERATION_TYPE_BUY"
	operationTypeSell      = "OPERATION_TYPE_SELL"
	operationTypeBrokerFee = "OPERATION_TYPE_BROKER_FEE"
)

func ClassifyType(rawType string) model.OperationKind {
	switch rawType {
	case operationTypeInput:
		return model.OperationDeposit
	case operationTypeBuy:
		return model.OperationBuy
	case operationTypeSell:
		return model.OperationSell
	case operationTypeBrokerFee:
		return model.OperationBrokerFee
	default:
		return model.OperationOther
	}
}

// Delta is the contribution of one operation in the operation currency.
type Delta struct {
	Kind      model.OperationKind
	Deposit   decimal.Decimal
	Balance   decimal.Decimal
	CostBasis decimal.Decimal
	Fees      decimal.Decimal
}

// Classify turns an operation into its signed contribution.
// Unknown operations produce an empty delta of kind OperationOther.
func Classify(op model.Operation) Delta {
	d := Delta{Kind: op.Kind}

	switch op.Kind {
	case model.OperationDeposit:
		d.Deposit = op.Payment
	case model.OperationBuy:
		qty := op.Quantity.Abs()
		d.Balance = qty
		d.CostBasis = qty.Mul(op.UnitPrice.Abs())
	case model.OperationSell:
		d.Balance = op.Quantity.Abs().Neg()
		d.CostBasis = op.Payment.Abs().Neg()
	case model.OperationBrokerFee:
		d.Fees = op.Payment.Abs()
	default:
		d.Kind = model.OperationOther
	}

	return d
}

// AffectsPosition reports whether the delta must be merged into a security position.
func (d Delta) AffectsPosition() bool {
	switch d.Kind {
	case model.OperationBuy, model.OperationSell, model.OperationBrokerFee:
		return true
	default:
		return false
	}
}
