package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/KotFed0t/tinkoff_report_bot/config"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model/moexModel"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("error not found in cache")

const (
	moexStockPrefix  = "moex_stock:"
	instrumentPrefix = "instrument:"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetStocks(ctx context.Context, stocks []moexModel.StockInfo) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start SetStocks", slog.String("rqID", rqID), slog.Int("count", len(stocks)))

	pipe := r.redis.Pipeline()
	for _, stock := range stocks {
		stockJson, err := json.Marshal(stock)
		if err != nil {
			slog.Error(
				"can't marshall stock in SetStocks",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.Any("stock", stock),
			)
			return errors.New("can't marshall stock")
		}

		pipe.Set(ctx, moexStockPrefix+stock.Ticker, stockJson, r.cfg.Cache.StocksExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetStocks completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetStockInfo(ctx context.Context, ticker string) (moexModel.StockInfo, error) {
	stockInfo := moexModel.StockInfo{}
	err := r.get(ctx, moexStockPrefix+ticker, &stockInfo)
	return stockInfo, err
}

func (r *RedisCache) SetInstrument(ctx context.Context, instrument model.Instrument) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	instrumentJson, err := json.Marshal(instrument)
	if err != nil {
		return err
	}

	err = r.redis.Set(ctx, instrumentPrefix+instrument.SecurityID, instrumentJson, r.cfg.Cache.InstrumentExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("figi", instrument.SecurityID))
		return err
	}

	return nil
}

func (r *RedisCache) GetInstrument(ctx context.Context, securityID string) (model.Instrument, error) {
	instrument := model.Instrument{}
	err := r.get(ctx, instrumentPrefix+securityID, &instrument)
	return instrument, err
}

func (r *RedisCache) get(ctx context.Context, key string, dest any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	err = json.Unmarshal([]byte(res), dest)
	if err != nil {
		slog.Error(
			"can't unmarshall cached value",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("key", key),
		)
		return errors.New("can't unmarshall cached value")
	}

	return nil
}
