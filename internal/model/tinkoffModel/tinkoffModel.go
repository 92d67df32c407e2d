package tinkoffModel

import "time"

// Quotation and MoneyValue follow the protobuf JSON mapping of the gateway:
// int64 units are encoded as strings.
type Quotation struct {
	Units int64 `json:"units,string"`
	Nano  int32 `json:"nano"`
}

type MoneyValue struct {
	Currency string `json:"currency"`
	Units    int64  `json:"units,string"`
	Nano     int32  `json:"nano"`
}

type Account struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	OpenedDate time.Time `json:"openedDate"`
}

type GetAccountsResponse struct {
	Accounts []Account `json:"accounts"`
}

type GetOperationsRequest struct {
	AccountID string    `json:"accountId"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	State     string    `json:"state,omitempty"`
	Figi      string    `json:"figi,omitempty"`
}

type Operation struct {
	ID            string     `json:"id"`
	Currency      string     `json:"currency"`
	Payment       MoneyValue `json:"payment"`
	Price         MoneyValue `json:"price"`
	State         string     `json:"state"`
	Quantity      int64      `json:"quantity,string"`
	Figi          string     `json:"figi"`
	Date          time.Time  `json:"date"`
	OperationType string     `json:"operationType"`
}

type GetOperationsResponse struct {
	Operations []Operation `json:"operations"`
}

type GetLastPricesRequest struct {
	Figi []string `json:"figi"`
}

type LastPrice struct {
	Figi  string    `json:"figi"`
	Price Quotation `json:"price"`
	Time  time.Time `json:"time"`
}

type GetLastPricesResponse struct {
	LastPrices []LastPrice `json:"lastPrices"`
}

type GetInstrumentByRequest struct {
	IDType string `json:"idType"`
	ID     string `json:"id"`
}

type Instrument struct {
	Figi     string `json:"figi"`
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type GetInstrumentByResponse struct {
	Instrument Instrument `json:"instrument"`
}

type ErrorResponse struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}
