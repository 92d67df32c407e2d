package postgres

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/tinkoff_report_bot/internal/converter/dbConverter"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model/dbModel"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
)

// GetStockPackageForUpdate locks the package row, so it must be called within a transaction.
func (r *Postgres) GetStockPackageForUpdate(ctx context.Context, userID int64, ticker string) (pkg model.StockPackage, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetStockPackageForUpdate"
	query := `
		SELECT user_id, ticker, amount, cost
		FROM stocks_packages
		WHERE user_id = $1 AND ticker = $2
		FOR UPDATE
	`

	slog.Debug("GetStockPackageForUpdate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	defer func() {
		if err != nil {
			slog.Warn("GetStockPackageForUpdate failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetStockPackageForUpdate completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbPkg := dbModel.StockPackage{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID, ticker).StructScan(&dbPkg)
	if err != nil {
		return model.StockPackage{}, mapErr(err)
	}

	return dbConverter.ConvertStockPackage(dbPkg), nil
}

// AddToStockPackage creates the package or adds amount and cost to the existing one.
func (r *Postgres) AddToStockPackage(ctx context.Context, pkg model.StockPackage) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.AddToStockPackage"
	query := `
		INSERT INTO stocks_packages(user_id, ticker, amount, cost)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, ticker) DO UPDATE
		SET
			amount = stocks_packages.amount + EXCLUDED.amount,
			cost = stocks_packages.cost + EXCLUDED.cost
	`

	slog.Debug("AddToStockPackage start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("package", pkg))
	defer func() {
		if err != nil {
			slog.Error("AddToStockPackage failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("AddToStockPackage completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, pkg.UserID, pkg.Ticker, pkg.Amount, pkg.Cost)
	return err
}

func (r *Postgres) UpdateStockPackage(ctx context.Context, pkg model.StockPackage) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdateStockPackage"
	query := `
		UPDATE stocks_packages
		SET amount = $1, cost = $2
		WHERE user_id = $3 AND ticker = $4
	`

	slog.Debug("UpdateStockPackage start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("package", pkg))
	defer func() {
		if err != nil {
			slog.Error("UpdateStockPackage failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateStockPackage completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, pkg.Amount, pkg.Cost, pkg.UserID, pkg.Ticker)
	return err
}

func (r *Postgres) DeleteStockPackage(ctx context.Context, userID int64, ticker string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteStockPackage"
	query := `DELETE FROM stocks_packages WHERE user_id = $1 AND ticker = $2`

	slog.Debug("DeleteStockPackage start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	defer func() {
		if err != nil {
			slog.Error("DeleteStockPackage failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteStockPackage completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, userID, ticker)
	return err
}

func (r *Postgres) ListStockPackages(ctx context.Context, userID int64) (pkgs []model.StockPackage, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.ListStockPackages"
	query := `
		SELECT user_id, ticker, amount, cost
		FROM stocks_packages
		WHERE user_id = $1
		ORDER BY ticker
	`

	slog.Debug("ListStockPackages start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		if err != nil {
			slog.Error("ListStockPackages failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListStockPackages completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	var dbPkgs []dbModel.StockPackage
	err = r.txOrDb(ctx).SelectContext(ctx, &dbPkgs, query, userID)
	if err != nil {
		return nil, err
	}

	pkgs = make([]model.StockPackage, 0, len(dbPkgs))
	for _, dbPkg := range dbPkgs {
		pkgs = append(pkgs, dbConverter.ConvertStockPackage(dbPkg))
	}

	return pkgs, nil
}
