package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OperationKind int

const (
	OperationOther OperationKind = iota
	OperationDeposit
	OperationBuy
	OperationSell
	OperationBrokerFee
)

func (k OperationKind) String() string {
	switch k {
	case OperationDeposit:
		return "deposit"
	case OperationBuy:
		return "buy"
	case OperationSell:
		return "sell"
	case OperationBrokerFee:
		return "broker_fee"
	default:
		return "other"
	}
}

// Operation is a brokerage account operation as received from the broker.
// Payment keeps the broker sign convention: money leaving the account is negative.
type Operation struct {
	ID         string
	Kind       OperationKind
	RawType    string
	SecurityID string
	Currency   string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Payment    decimal.Decimal
	Timestamp  time.Time
}
