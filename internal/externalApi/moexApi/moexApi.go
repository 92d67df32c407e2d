package moexApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/tinkoff_report_bot/config"
	"github.com/KotFed0t/tinkoff_report_bot/internal/externalApi"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model/moexModel"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const securitiesUrl = "/iss/engines/stock/markets/shares/boards/TQBR/securities.json"

type MoexApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *MoexApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.MoexApi.Url)
	return &MoexApi{client: client}
}

// GetStocksInfo returns all shares of the main board, used to fill the ticker cache.
func (a *MoexApi) GetStocksInfo(ctx context.Context) ([]moexModel.StockInfo, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start MoexApi.GetStocksInfo request", slog.String("rqID", rqID))

	rawStocksInfo, err := a.getSecurities(ctx, "")
	if err != nil {
		return nil, err
	}

	res := make([]moexModel.StockInfo, 0, len(rawStocksInfo.Marketdata.Data))
	err = a.handleRawStocksInfo(rawStocksInfo, func(stock moexModel.StockInfo) {
		res = append(res, stock)
	})
	if err != nil {
		slog.Error("can't parse raw data", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	slog.Debug("MoexApi.GetStocksInfo request complete", slog.String("rqID", rqID), slog.Int("stocks", len(res)))

	return res, nil
}

func (a *MoexApi) GetStockInfo(ctx context.Context, ticker string) (moexModel.StockInfo, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start MoexApi.GetStockInfo request", slog.String("rqID", rqID), slog.String("ticker", ticker))

	rawStocksInfo, err := a.getSecurities(ctx, ticker)
	if err != nil {
		return moexModel.StockInfo{}, err
	}

	var res []moexModel.StockInfo
	err = a.handleRawStocksInfo(rawStocksInfo, func(stock moexModel.StockInfo) {
		res = append(res, stock)
	})
	if err != nil {
		slog.Error("can't parse raw data", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return moexModel.StockInfo{}, err
	}

	switch len(res) {
	case 0:
		return moexModel.StockInfo{}, externalApi.ErrNotFound
	case 1:
		slog.Debug("MoexApi.GetStockInfo request complete", slog.String("rqID", rqID))
		return res[0], nil
	default:
		return moexModel.StockInfo{}, errors.New("unexpected slice lenght, expected only 1 element")
	}
}

func (a *MoexApi) getSecurities(ctx context.Context, ticker string) (moexModel.RawStocksInfo, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	params := map[string]string{
		"iss.meta":           "off",
		"securities.columns": "SECID,SHORTNAME,LOTSIZE,CURRENCYID,STATUS",
		"marketdata.columns": "SECID,MARKETPRICE",
	}
	if ticker != "" {
		params["securities"] = ticker
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(securitiesUrl)
	if err != nil {
		slog.Error("error while dialing MoexApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return moexModel.RawStocksInfo{}, err
	}

	if resp.IsError() {
		return moexModel.RawStocksInfo{}, fmt.Errorf("moex api status %d", resp.StatusCode())
	}

	rawStocksInfo := moexModel.RawStocksInfo{}
	err = json.Unmarshal(resp.Body(), &rawStocksInfo)
	if err != nil {
		slog.Error("can't unmarshall response into moexModel.RawStocksInfo", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return moexModel.RawStocksInfo{}, err
	}

	return rawStocksInfo, nil
}

func (a *MoexApi) handleRawStocksInfo(rawStocksInfo moexModel.RawStocksInfo, handleFn func(stock moexModel.StockInfo)) error {
	if len(rawStocksInfo.Marketdata.Data) != len(rawStocksInfo.Securities.Data) {
		return errors.New("lengths Marketdata != Securities")
	}

	for i := 0; i < len(rawStocksInfo.Marketdata.Data); i++ {
		if len(rawStocksInfo.Marketdata.Data[i]) != len(rawStocksInfo.Marketdata.Columns) {
			return errors.New("invalid Marketdata")
		}

		if len(rawStocksInfo.Securities.Data[i]) != len(rawStocksInfo.Securities.Columns) {
			return errors.New("invalid Securities")
		}

		stockInfo := moexModel.StockInfo{}

		for j := 0; j < len(rawStocksInfo.Marketdata.Columns); j++ {
			ok := true
			switch rawStocksInfo.Marketdata.Columns[j] {
			case "SECID":
				stockInfo.Ticker, ok = rawStocksInfo.Marketdata.Data[i][j].(string)
			case "MARKETPRICE":
				if rawStocksInfo.Marketdata.Data[i][j] != nil {
					var price float64
					price, ok = rawStocksInfo.Marketdata.Data[i][j].(float64)
					if ok {
						stockInfo.Price = decimal.NewFromFloat(price)
					}
				}
			default:
				return fmt.Errorf("unknown column %s", rawStocksInfo.Marketdata.Columns[j])
			}

			if !ok {
				return fmt.Errorf("invalid type %s = %v", rawStocksInfo.Marketdata.Columns[j], rawStocksInfo.Marketdata.Data[i][j])
			}
		}

		for j := 0; j < len(rawStocksInfo.Securities.Columns); j++ {
			ok := true
			switch rawStocksInfo.Securities.Columns[j] {
			case "SECID":
				if rawStocksInfo.Securities.Data[i][j] != stockInfo.Ticker {
					return fmt.Errorf("secID in securities and market data is not equal %s and %s", rawStocksInfo.Securities.Data[i][j], stockInfo.Ticker)
				}
			case "SHORTNAME":
				stockInfo.Shortname, ok = rawStocksInfo.Securities.Data[i][j].(string)
			case "LOTSIZE":
				var f float64
				f, ok = rawStocksInfo.Securities.Data[i][j].(float64)
				if ok {
					stockInfo.Lotsize = int(f)
				}
			case "CURRENCYID":
				stockInfo.CurrencyID, ok = rawStocksInfo.Securities.Data[i][j].(string)
				if ok && stockInfo.CurrencyID == "SUR" {
					stockInfo.CurrencyID = "RUB"
				}
			case "STATUS":
				var status string // чтобы далее не затенить переменную ok
				status, ok = rawStocksInfo.Securities.Data[i][j].(string)
				if ok && status == "A" {
					stockInfo.Status = true
				}
			default:
				return fmt.Errorf("unknown column %s", rawStocksInfo.Securities.Columns[j])
			}

			if !ok {
				return fmt.Errorf("invalid type %s = %v", rawStocksInfo.Securities.Columns[j], rawStocksInfo.Securities.Data[i][j])
			}
		}
		handleFn(stockInfo)
	}
	return nil
}
