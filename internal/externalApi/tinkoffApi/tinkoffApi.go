package tinkoffApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KotFed0t/tinkoff_report_bot/config"
	"github.com/KotFed0t/tinkoff_report_bot/internal/externalApi"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model/tinkoffModel"
	"github.com/KotFed0t/tinkoff_report_bot/internal/money"
	"github.com/KotFed0t/tinkoff_report_bot/internal/profitability"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	servicePrefix = "/tinkoff.public.invest.api.contract.v1."

	getAccountsPath     = servicePrefix + "UsersService/GetAccounts"
	getOperationsPath   = servicePrefix + "OperationsService/GetOperations"
	getLastPricesPath   = servicePrefix + "MarketDataService/GetLastPrices"
	getInstrumentByPath = servicePrefix + "InstrumentsService/GetInstrumentBy"

	operationStateExecuted = "OPERATION_STATE_EXECUTED"
	instrumentIDTypeFigi   = "INSTRUMENT_ID_TYPE_FIGI"

	// gRPC status codes returned in the gateway error body
	codeNotFound        = 5
	codeUnauthenticated = 16
)

// TinkoffApi is a client of the Tinkoff Invest REST gateway. Every call carries the
// token of the subscription it is made for.
type TinkoffApi struct {
	client *resty.Client
	now    func() time.Time
}

func New(cfg *config.Config) *TinkoffApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.TinkoffApi.Url).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &TinkoffApi{client: client, now: time.Now}
}

func (a *TinkoffApi) GetAccounts(ctx context.Context, token string) ([]model.BrokerAccount, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TinkoffApi.GetAccounts"

	slog.Debug("start TinkoffApi.GetAccounts request", slog.String("rqID", rqID), slog.String("op", op))

	res := tinkoffModel.GetAccountsResponse{}
	if err := a.post(ctx, token, getAccountsPath, struct{}{}, &res); err != nil {
		return nil, err
	}

	accounts := make([]model.BrokerAccount, 0, len(res.Accounts))
	for _, account := range res.Accounts {
		accounts = append(accounts, model.BrokerAccount{
			ID:         account.ID,
			Name:       account.Name,
			OpenedDate: account.OpenedDate,
		})
	}

	slog.Debug("TinkoffApi.GetAccounts request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Int("accounts", len(accounts)))

	return accounts, nil
}

// GetAccount returns externalApi.ErrNotFound when the token has no account with the id.
func (a *TinkoffApi) GetAccount(ctx context.Context, token, accountID string) (model.BrokerAccount, error) {
	accounts, err := a.GetAccounts(ctx, token)
	if err != nil {
		return model.BrokerAccount{}, err
	}

	for _, account := range accounts {
		if account.ID == accountID {
			return account, nil
		}
	}

	return model.BrokerAccount{}, externalApi.ErrNotFound
}

// GetOperations returns executed operations of the account in [from, now].
func (a *TinkoffApi) GetOperations(ctx context.Context, token, accountID string, from time.Time) ([]model.Operation, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TinkoffApi.GetOperations"

	slog.Debug("start TinkoffApi.GetOperations request", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", accountID))

	req := tinkoffModel.GetOperationsRequest{
		AccountID: accountID,
		From:      from.UTC(),
		To:        a.now().UTC(),
		State:     operationStateExecuted,
	}

	res := tinkoffModel.GetOperationsResponse{}
	if err := a.post(ctx, token, getOperationsPath, req, &res); err != nil {
		return nil, err
	}

	operations := make([]model.Operation, 0, len(res.Operations))
	for _, raw := range res.Operations {
		operations = append(operations, convertOperation(raw))
	}

	slog.Debug("TinkoffApi.GetOperations request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Int("operations", len(operations)))

	return operations, nil
}

func (a *TinkoffApi) GetLastPrice(ctx context.Context, token, figi string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TinkoffApi.GetLastPrice"

	slog.Debug("start TinkoffApi.GetLastPrice request", slog.String("rqID", rqID), slog.String("op", op), slog.String("figi", figi))

	res := tinkoffModel.GetLastPricesResponse{}
	if err := a.post(ctx, token, getLastPricesPath, tinkoffModel.GetLastPricesRequest{Figi: []string{figi}}, &res); err != nil {
		return decimal.Zero, err
	}

	for _, lastPrice := range res.LastPrices {
		if lastPrice.Figi == figi {
			return money.FromQuotation(lastPrice.Price.Units, lastPrice.Price.Nano), nil
		}
	}

	slog.Warn("no last price in response", slog.String("rqID", rqID), slog.String("op", op), slog.String("figi", figi))

	return decimal.Zero, externalApi.ErrNotFound
}

func (a *TinkoffApi) GetInstrument(ctx context.Context, token, figi string) (model.Instrument, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TinkoffApi.GetInstrument"

	slog.Debug("start TinkoffApi.GetInstrument request", slog.String("rqID", rqID), slog.String("op", op), slog.String("figi", figi))

	req := tinkoffModel.GetInstrumentByRequest{IDType: instrumentIDTypeFigi, ID: figi}
	res := tinkoffModel.GetInstrumentByResponse{}
	if err := a.post(ctx, token, getInstrumentByPath, req, &res); err != nil {
		return model.Instrument{}, err
	}

	return model.Instrument{
		SecurityID: figi,
		Name:       res.Instrument.Name,
		Ticker:     res.Instrument.Ticker,
		Currency:   money.NormalizeCurrency(res.Instrument.Currency),
	}, nil
}

func (a *TinkoffApi) post(ctx context.Context, token, path string, body, result any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		Post(path)
	if err != nil {
		slog.Error("error while dialing TinkoffApi", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("path", path))
		return err
	}

	if resp.IsError() {
		return parseError(resp)
	}

	err = json.Unmarshal(resp.Body(), result)
	if err != nil {
		slog.Error("can't unmarshall TinkoffApi response", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("path", path))
		return err
	}

	return nil
}

func parseError(resp *resty.Response) error {
	apiErr := tinkoffModel.ErrorResponse{}
	_ = json.Unmarshal(resp.Body(), &apiErr)

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || apiErr.Code == codeUnauthenticated:
		return externalApi.ErrUnauthorized
	case resp.StatusCode() == http.StatusNotFound || apiErr.Code == codeNotFound:
		return externalApi.ErrNotFound
	default:
		return fmt.Errorf("tinkoff api status %d: %s %s", resp.StatusCode(), apiErr.Message, apiErr.Description)
	}
}

func convertOperation(raw tinkoffModel.Operation) model.Operation {
	payment, _ := money.FromMoneyValue(raw.Payment.Currency, raw.Payment.Units, raw.Payment.Nano)
	price, _ := money.FromMoneyValue(raw.Price.Currency, raw.Price.Units, raw.Price.Nano)

	return model.Operation{
		ID:         raw.ID,
		Kind:       profitability.ClassifyType(raw.OperationType),
		RawType:    raw.OperationType,
		SecurityID: raw.Figi,
		Currency:   money.NormalizeCurrency(raw.Currency),
		Quantity:   decimal.NewFromInt(raw.Quantity),
		UnitPrice:  price,
		Payment:    payment,
		Timestamp:  raw.Date,
	}
}

// Session binds the client to one subscription token, so it can serve the aggregation engine.
type Session struct {
	api   *TinkoffApi
	token string
}

func (a *TinkoffApi) Session(token string) *Session {
	return &Session{api: a, token: token}
}

func (s *Session) LastPrice(ctx context.Context, figi string) (decimal.Decimal, error) {
	return s.api.GetLastPrice(ctx, s.token, figi)
}

func (s *Session) Instrument(ctx context.Context, figi string) (model.Instrument, error) {
	return s.api.GetInstrument(ctx, s.token, figi)
}

func (s *Session) Operations(ctx context.Context, accountID string, from time.Time) ([]model.Operation, error) {
	return s.api.GetOperations(ctx, s.token, accountID, from)
}
