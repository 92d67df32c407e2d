package dbModel

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type Subscription struct {
	UserID          int64        `db:"user_id"`
	TinkoffToken    string       `db:"tinkoff_token"`
	BrokerAccountID string       `db:"broker_account_id"`
	StartedAt       sql.NullTime `db:"started_at"`
}

type StockPackage struct {
	UserID int64           `db:"user_id"`
	Ticker string          `db:"ticker"`
	Amount decimal.Decimal `db:"amount"`
	Cost   decimal.Decimal `db:"cost"`
}
