package dbConverter

import (
	"database/sql"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model/dbModel"
)

func ConvertSubscription(dbSub dbModel.Subscription) model.Subscription {
	sub := model.Subscription{
		UserID:          dbSub.UserID,
		TinkoffToken:    dbSub.TinkoffToken,
		BrokerAccountID: dbSub.BrokerAccountID,
	}

	if dbSub.StartedAt.Valid {
		startedAt := dbSub.StartedAt.Time
		sub.StartedAt = &startedAt
	}

	return sub
}

func ToDBSubscription(sub model.Subscription) dbModel.Subscription {
	dbSub := dbModel.Subscription{
		UserID:          sub.UserID,
		TinkoffToken:    sub.TinkoffToken,
		BrokerAccountID: sub.BrokerAccountID,
	}

	if sub.StartedAt != nil {
		dbSub.StartedAt = sql.NullTime{Time: *sub.StartedAt, Valid: true}
	}

	return dbSub
}

func ConvertStockPackage(dbPkg dbModel.StockPackage) model.StockPackage {
	return model.StockPackage{
		UserID: dbPkg.UserID,
		Ticker: dbPkg.Ticker,
		Amount: dbPkg.Amount,
		Cost:   dbPkg.Cost,
	}
}
