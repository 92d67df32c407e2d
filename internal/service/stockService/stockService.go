package stockService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/tinkoff_report_bot/data/repository"
	"github.com/KotFed0t/tinkoff_report_bot/internal/externalApi"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model/moexModel"
	"github.com/KotFed0t/tinkoff_report_bot/internal/service"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
)

type MoexApi interface {
	GetStockInfo(ctx context.Context, ticker string) (moexModel.StockInfo, error)
	GetStocksInfo(ctx context.Context) ([]moexModel.StockInfo, error)
}

type Cache interface {
	GetStockInfo(ctx context.Context, ticker string) (moexModel.StockInfo, error)
	SetStocks(ctx context.Context, stocks []moexModel.StockInfo) error
}

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
	GetStockPackageForUpdate(ctx context.Context, userID int64, ticker string) (model.StockPackage, error)
	AddToStockPackage(ctx context.Context, pkg model.StockPackage) error
	UpdateStockPackage(ctx context.Context, pkg model.StockPackage) error
	DeleteStockPackage(ctx context.Context, userID int64, ticker string) error
	ListStockPackages(ctx context.Context, userID int64) ([]model.StockPackage, error)
}

type StockService struct {
	repo    Repository
	cache   Cache
	moexApi MoexApi
}

func New(repo Repository, cache Cache, moexApi MoexApi) *StockService {
	return &StockService{
		repo:    repo,
		cache:   cache,
		moexApi: moexApi,
	}
}

// GetStockInfo looks the ticker up in the cache first and falls back to MOEX.
func (s *StockService) GetStockInfo(ctx context.Context, ticker string) (stockInfo moexModel.StockInfo, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.GetStockInfo"

	slog.Debug("GetStockInfo start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	defer func() {
		slog.Debug("GetStockInfo finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	}()

	stockInfo, err = s.cache.GetStockInfo(ctx, ticker)
	if err != nil {
		slog.Warn("can't get stock info from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

		stockInfo, err = s.moexApi.GetStockInfo(ctx, ticker)
		if err != nil {
			if errors.Is(err, externalApi.ErrNotFound) {
				slog.Warn("stock not found in moexApi", slog.String("rqID", rqID), slog.String("op", op))
				return moexModel.StockInfo{}, service.ErrInvalidTicker
			}
			slog.Error("can't get stock info from moexApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return moexModel.StockInfo{}, err
		}
	}

	if !stockInfo.Status {
		return moexModel.StockInfo{}, service.ErrStockNotActive
	}

	return stockInfo, nil
}

func (s *StockService) AddStocks(ctx context.Context, pkg model.StockPackage) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.AddStocks"

	slog.Debug("AddStocks start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", pkg.Ticker))
	defer func() {
		slog.Debug("AddStocks finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", pkg.Ticker))
	}()

	if !pkg.Amount.IsPositive() || !pkg.Cost.IsPositive() {
		return service.ErrNotPositive
	}

	if err := s.repo.AddToStockPackage(ctx, pkg); err != nil {
		slog.Error("got error from repo.AddToStockPackage", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// DeleteStocks subtracts amount and cost from the user's package, removing it when
// the whole amount is sold.
func (s *StockService) DeleteStocks(ctx context.Context, pkg model.StockPackage) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.DeleteStocks"

	slog.Debug("DeleteStocks start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", pkg.Ticker))
	defer func() {
		slog.Debug("DeleteStocks finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", pkg.Ticker))
	}()

	if !pkg.Amount.IsPositive() || !pkg.Cost.IsPositive() {
		return service.ErrNotPositive
	}

	return s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetStockPackageForUpdate(ctx, pkg.UserID, pkg.Ticker)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return service.ErrNotEnoughStocks
			}
			return err
		}

		if current.Amount.LessThan(pkg.Amount) {
			return service.ErrNotEnoughStocks
		}

		if current.Amount.Equal(pkg.Amount) {
			return s.repo.DeleteStockPackage(ctx, pkg.UserID, pkg.Ticker)
		}

		current.Amount = current.Amount.Sub(pkg.Amount)
		current.Cost = current.Cost.Sub(pkg.Cost)
		return s.repo.UpdateStockPackage(ctx, current)
	})
}

func (s *StockService) ListStocks(ctx context.Context, userID int64) ([]model.StockPackage, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.ListStocks"

	pkgs, err := s.repo.ListStockPackages(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.ListStockPackages", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return pkgs, nil
}

func (s *StockService) FillMoexCache(ctx context.Context) error {
	ctx = utils.EnsureRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.FillMoexCache"

	slog.Debug("FillMoexCache start", slog.String("rqID", rqID), slog.String("op", op))

	stocks, err := s.moexApi.GetStocksInfo(ctx)
	if err != nil {
		slog.Error("got error from moexApi.GetStocksInfo", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err = s.cache.SetStocks(ctx, stocks); err != nil {
		return err
	}

	slog.Debug("FillMoexCache finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("stocks", len(stocks)))

	return nil
}
