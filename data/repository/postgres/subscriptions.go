package postgres

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/tinkoff_report_bot/data/repository"
	"github.com/KotFed0t/tinkoff_report_bot/internal/converter/dbConverter"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model/dbModel"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
)

func (r *Postgres) AddSubscription(ctx context.Context, sub model.Subscription) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.AddSubscription"
	query := `
		INSERT INTO subscriptions(user_id, tinkoff_token, broker_account_id, started_at)
		VALUES ($1, $2, $3, $4)
	`

	// токен не логируем
	slog.Debug(
		"AddSubscription start",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int64("userID", sub.UserID),
		slog.String("brokerAccountID", sub.BrokerAccountID),
	)
	defer func() {
		if err != nil {
			slog.Error("AddSubscription failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("AddSubscription completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbSub := dbConverter.ToDBSubscription(sub)
	_, err = r.txOrDb(ctx).ExecContext(ctx, query, dbSub.UserID, dbSub.TinkoffToken, dbSub.BrokerAccountID, dbSub.StartedAt)
	if err != nil {
		return mapErr(err)
	}

	return nil
}

func (r *Postgres) RemoveSubscription(ctx context.Context, userID int64, brokerAccountID string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.RemoveSubscription"
	query := `DELETE FROM subscriptions WHERE user_id = $1 AND broker_account_id = $2`

	slog.Debug("RemoveSubscription start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("RemoveSubscription failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("RemoveSubscription completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, userID, brokerAccountID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *Postgres) ListUsers(ctx context.Context) (userIDs []int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.ListUsers"
	query := `SELECT DISTINCT user_id FROM subscriptions ORDER BY user_id`

	slog.Debug("ListUsers start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("ListUsers failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListUsers completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(userIDs)))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &userIDs, query)
	if err != nil {
		return nil, err
	}

	return userIDs, nil
}

func (r *Postgres) ListSubscriptions(ctx context.Context, userID int64) (subs []model.Subscription, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.ListSubscriptions"
	query := `
		SELECT user_id, tinkoff_token, broker_account_id, started_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at, broker_account_id
	`

	slog.Debug("ListSubscriptions start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		if err != nil {
			slog.Error("ListSubscriptions failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListSubscriptions completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(subs)))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbSub dbModel.Subscription
		err = rows.StructScan(&dbSub)
		if err != nil {
			return nil, err
		}
		subs = append(subs, dbConverter.ConvertSubscription(dbSub))
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return subs, nil
}

// NotExists reports whether the user has no subscription for the broker account.
func (r *Postgres) NotExists(ctx context.Context, userID int64, brokerAccountID string) (notExists bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.NotExists"
	query := `
		SELECT NOT EXISTS(
			SELECT 1 FROM subscriptions WHERE user_id = $1 AND broker_account_id = $2
		)
	`

	slog.Debug("NotExists start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("NotExists failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("NotExists completed", slog.String("rqID", rqID), slog.String("op", op), slog.Bool("notExists", notExists))
		}
	}()

	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID, brokerAccountID).Scan(&notExists)
	if err != nil {
		return false, err
	}

	return notExists, nil
}
