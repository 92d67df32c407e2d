package subscriptionService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/tinkoff_report_bot/data/repository"
	"github.com/KotFed0t/tinkoff_report_bot/internal/externalApi"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/service"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
)

type Repository interface {
	AddSubscription(ctx context.Context, sub model.Subscription) error
	RemoveSubscription(ctx context.Context, userID int64, brokerAccountID string) error
	ListSubscriptions(ctx context.Context, userID int64) ([]model.Subscription, error)
	NotExists(ctx context.Context, userID int64, brokerAccountID string) (bool, error)
}

type BrokerApi interface {
	GetAccounts(ctx context.Context, token string) ([]model.BrokerAccount, error)
	GetAccount(ctx context.Context, token, accountID string) (model.BrokerAccount, error)
}

type SubscriptionService struct {
	repo      Repository
	brokerApi BrokerApi
}

func New(repo Repository, brokerApi BrokerApi) *SubscriptionService {
	return &SubscriptionService{repo: repo, brokerApi: brokerApi}
}

// Subscribe checks the token and account against the broker before storing them. Without an
// explicit start date the account opening date is used.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID int64, req model.SubscriptionRequest) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SubscriptionService.Subscribe"

	slog.Debug("Subscribe start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("accountID", req.BrokerAccountID))
	defer func() {
		slog.Debug("Subscribe finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	account, err := s.brokerApi.GetAccount(ctx, req.TinkoffToken, req.BrokerAccountID)
	if err != nil {
		return mapBrokerErr(err)
	}

	startedAt := req.StartedAt
	if startedAt == nil && !account.OpenedDate.IsZero() {
		startedAt = &account.OpenedDate
	}

	err = s.repo.AddSubscription(ctx, model.Subscription{
		UserID:          userID,
		TinkoffToken:    req.TinkoffToken,
		BrokerAccountID: account.ID,
		StartedAt:       startedAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return service.ErrAlreadySubscribed
		}
		slog.Error("got error from repo.AddSubscription", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID int64, brokerAccountID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SubscriptionService.Unsubscribe"

	slog.Debug("Unsubscribe start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("accountID", brokerAccountID))

	notExists, err := s.repo.NotExists(ctx, userID, brokerAccountID)
	if err != nil {
		slog.Error("got error from repo.NotExists", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}
	if notExists {
		return service.ErrUnknownPortfolio
	}

	err = s.repo.RemoveSubscription(ctx, userID, brokerAccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrUnknownPortfolio
		}
		slog.Error("got error from repo.RemoveSubscription", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *SubscriptionService) BrokerAccountIDs(ctx context.Context, token string) ([]model.BrokerAccount, error) {
	accounts, err := s.brokerApi.GetAccounts(ctx, token)
	if err != nil {
		return nil, mapBrokerErr(err)
	}
	return accounts, nil
}

func (s *SubscriptionService) Subscriptions(ctx context.Context, userID int64) ([]model.Subscription, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SubscriptionService.Subscriptions"

	subs, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.ListSubscriptions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return subs, nil
}

func mapBrokerErr(err error) error {
	switch {
	case errors.Is(err, externalApi.ErrUnauthorized):
		return service.ErrUnknownBrokerCredential
	case errors.Is(err, externalApi.ErrNotFound):
		return service.ErrUnknownPortfolio
	default:
		return err
	}
}
