package reportService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/KotFed0t/tinkoff_report_bot/config"
	"github.com/KotFed0t/tinkoff_report_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/profitability"
	"github.com/KotFed0t/tinkoff_report_bot/internal/service"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
	"github.com/google/uuid"
)

const FatalErrMsg = "Произошла фатальная ошибка! Пожалуйста, сообщите о ней администратору."

var errFileTooLarge = errors.New("report exceeds telegram file limit and cloud storage is not configured")

// historyStart is used for subscriptions without a start date.
var historyStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type Repository interface {
	ListUsers(ctx context.Context) ([]int64, error)
	ListSubscriptions(ctx context.Context, userID int64) ([]model.Subscription, error)
}

// BrokerSession is a broker client bound to the token of one subscription.
type BrokerSession interface {
	profitability.PriceProvider
	profitability.InstrumentResolver
	Operations(ctx context.Context, accountID string, from time.Time) ([]model.Operation, error)
}

type Cache interface {
	GetInstrument(ctx context.Context, securityID string) (model.Instrument, error)
	SetInstrument(ctx context.Context, instrument model.Instrument) error
}

type Generator interface {
	Generate(ctx context.Context, report model.Report) (fileBytes []byte, fileExtension string, err error)
}

type Notifier interface {
	SendText(ctx context.Context, userID int64, text string) error
	SendDocument(ctx context.Context, userID int64, path, fileName, caption string) error
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type ReportService struct {
	cfg        *config.Config
	repo       Repository
	newSession func(token string) BrokerSession
	cache      Cache
	generator  Generator
	notifier   Notifier
	storage    CloudStorage
	routes     map[string]profitability.Route
	base       profitability.ProfitBase
	now        func() time.Time
}

// New builds the service. A nil generator sends the chat summary instead of a document,
// a nil storage disables uploading of oversized documents.
func New(
	cfg *config.Config,
	repo Repository,
	newSession func(token string) BrokerSession,
	cache Cache,
	generator Generator,
	notifier Notifier,
	storage CloudStorage,
	base profitability.ProfitBase,
) *ReportService {
	return &ReportService{
		cfg:        cfg,
		repo:       repo,
		newSession: newSession,
		cache:      cache,
		generator:  generator,
		notifier:   notifier,
		storage:    storage,
		routes:     profitability.DefaultRoutes(cfg.API.TinkoffApi.UsdFigi),
		base:       base,
		now:        time.Now,
	}
}

// Job sends reports for every subscription of every user. A failed subscription does not
// stop the others.
func (s *ReportService) Job(ctx context.Context) error {
	ctx = utils.EnsureRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.Job"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		slog.Error("got error from repo.ListUsers", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Info("report job start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("users", len(users)))

	for _, userID := range users {
		if err := s.ReportForUser(ctx, userID); err != nil && !errors.Is(err, service.ErrNoSubscriptions) {
			slog.Error("can't send reports to user", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("err", err.Error()))
		}
	}

	return nil
}

func (s *ReportService) ReportForUser(ctx context.Context, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.ReportForUser"

	slog.Debug("ReportForUser start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("ReportForUser finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	subs, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return service.ErrNoSubscriptions
	}

	for _, sub := range subs {
		if err := s.Notify(ctx, sub); err != nil {
			slog.Error(
				"report generation failed",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.Int64("userID", sub.UserID),
				slog.String("accountID", sub.BrokerAccountID),
				slog.String("err", err.Error()),
			)
			if err := s.notifier.SendText(ctx, sub.UserID, FatalErrMsg); err != nil {
				slog.Error("can't notify user about failure", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			}
		}
	}

	return nil
}

// Notify builds and delivers the report of one subscription within REPORT_TIMEOUT.
func (s *ReportService) Notify(ctx context.Context, sub model.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Report.Timeout)
	defer cancel()

	report, err := s.BuildReport(ctx, sub)
	if err != nil {
		return err
	}

	if s.generator == nil {
		return s.notifier.SendText(ctx, sub.UserID, telebotConverter.ReportSummary(report))
	}

	content, ext, err := s.generator.Generate(ctx, report)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	return s.sendDocument(ctx, sub, content, ext)
}

func (s *ReportService) BuildReport(ctx context.Context, sub model.Subscription) (model.Report, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.BuildReport"

	slog.Debug("BuildReport start", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", sub.BrokerAccountID))

	session := s.newSession(sub.TinkoffToken)
	prices := profitability.NewPriceMemo(session)
	converter := profitability.NewConverter(s.routes, prices)
	aggregator := profitability.NewAggregator(&cachedInstruments{cache: s.cache, source: session}, converter)
	calculator := profitability.NewCalculator(prices, converter, s.base)

	from := historyStart
	if sub.StartedAt != nil {
		from = *sub.StartedAt
	}

	operations, err := session.Operations(ctx, sub.BrokerAccountID, from)
	if err != nil {
		return model.Report{}, fmt.Errorf("get operations: %w", err)
	}

	portfolio, err := aggregator.Aggregate(ctx, operations)
	if err != nil {
		return model.Report{}, fmt.Errorf("aggregate operations: %w", err)
	}

	totals, err := calculator.Evaluate(ctx, portfolio)
	if err != nil {
		return model.Report{}, fmt.Errorf("evaluate portfolio: %w", err)
	}

	slog.Debug("BuildReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("positions", len(portfolio.Positions)))

	return model.Report{BrokerAccountID: sub.BrokerAccountID, Portfolio: portfolio, Totals: totals}, nil
}

// sendDocument stores the document in a temp file for the upload and always removes it.
func (s *ReportService) sendDocument(ctx context.Context, sub model.Subscription, content []byte, ext string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.sendDocument"

	dir := s.cfg.Report.TempDir
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write temp report: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Error("can't remove temp report", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	fileName := fmt.Sprintf("report_%s_%s%s", sub.BrokerAccountID, s.now().Format("2006-01-02"), ext)

	if len(content) <= s.cfg.Telegram.FileLimitInBytes {
		caption := fmt.Sprintf("📊 Отчёт по счёту %s", sub.BrokerAccountID)
		return s.notifier.SendDocument(ctx, sub.UserID, path, fileName, caption)
	}

	if s.storage == nil {
		return errFileTooLarge
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	link, err := s.storage.UploadFile(ctx, f, fileName)
	if err != nil {
		return fmt.Errorf("upload report: %w", err)
	}

	slog.Info("report uploaded to cloud storage", slog.String("rqID", rqID), slog.String("op", op), slog.Int("bytes", len(content)))

	return s.notifier.SendText(ctx, sub.UserID, fmt.Sprintf("📊 Отчёт по счёту %s слишком большой для Telegram, скачать его можно по ссылке:\n%s", sub.BrokerAccountID, link))
}

// cachedInstruments serves instrument metadata from the cache and falls back to the broker.
type cachedInstruments struct {
	cache  Cache
	source profitability.InstrumentResolver
}

func (c *cachedInstruments) Instrument(ctx context.Context, securityID string) (model.Instrument, error) {
	instrument, err := c.cache.GetInstrument(ctx, securityID)
	if err == nil {
		return instrument, nil
	}

	instrument, err = c.source.Instrument(ctx, securityID)
	if err != nil {
		return model.Instrument{}, err
	}

	if err := c.cache.SetInstrument(ctx, instrument); err != nil {
		slog.Warn("can't cache instrument", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("figi", securityID), slog.String("err", err.Error()))
	}

	return instrument, nil
}
