package model

import "github.com/shopspring/decimal"

type state int

const (
	DefaultState state = iota
	ExpectingSubscription
	ExpectingUnsubscription
	ExpectingBrokerToken
	ExpectingTicker
	ExpectingAmount
	ExpectingCost
)

type StockAction int

const (
	AddStocks StockAction = iota + 1
	DeleteStocks
)

type Session struct {
	State       state           `json:"state"`
	StockAction StockAction     `json:"stock_action,omitempty"`
	Ticker      string          `json:"ticker,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}
