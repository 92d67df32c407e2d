package moexModel

import "github.com/shopspring/decimal"

type RawStocksInfo struct {
	Securities Securities `json:"securities"`
	Marketdata Marketdata `json:"marketdata"`
}

type Securities struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

type Marketdata struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// StockInfo is what the bot knows about a MOEX share, it is also stored in the ticker cache.
type StockInfo struct {
	Ticker     string          `json:"ticker"`
	Shortname  string          `json:"shortname"`
	Lotsize    int             `json:"lotsize"`
	CurrencyID string          `json:"currency_id"`
	Status     bool            `json:"status"`
	Price      decimal.Decimal `json:"price"`
}
