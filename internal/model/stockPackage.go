package model

import "github.com/shopspring/decimal"

type StockPackage struct {
	UserID int64
	Ticker string
	Amount decimal.Decimal
	Cost   decimal.Decimal
}
