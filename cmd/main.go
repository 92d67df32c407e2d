package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/tinkoff_report_bot/config"
	"github.com/KotFed0t/tinkoff_report_bot/data"
	"github.com/KotFed0t/tinkoff_report_bot/data/cache"
	"github.com/KotFed0t/tinkoff_report_bot/data/repository/postgres"
	"github.com/KotFed0t/tinkoff_report_bot/data/session"
	"github.com/KotFed0t/tinkoff_report_bot/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/tinkoff_report_bot/internal/externalApi/moexApi"
	"github.com/KotFed0t/tinkoff_report_bot/internal/externalApi/tinkoffApi"
	"github.com/KotFed0t/tinkoff_report_bot/internal/profitability"
	"github.com/KotFed0t/tinkoff_report_bot/internal/reportGenerator/csvGenerator"
	"github.com/KotFed0t/tinkoff_report_bot/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/tinkoff_report_bot/internal/scheduler"
	"github.com/KotFed0t/tinkoff_report_bot/internal/service/reportService"
	"github.com/KotFed0t/tinkoff_report_bot/internal/service/stockService"
	"github.com/KotFed0t/tinkoff_report_bot/internal/service/subscriptionService"
	"github.com/KotFed0t/tinkoff_report_bot/internal/tgbot"
	"github.com/KotFed0t/tinkoff_report_bot/internal/transport/telegram"
	"github.com/KotFed0t/tinkoff_report_bot/internal/transport/telegram/notifier"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config loaded", slog.String("logLevel", cfg.LogLevel), slog.String("reportFormat", cfg.Report.Format))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	profitBase, err := profitability.ParseProfitBase(cfg.Report.ProfitBase)
	if err != nil {
		slog.Error("invalid REPORT_PROFIT_BASE", slog.String("err", err.Error()))
		os.Exit(1)
	}

	generator, ok := newGenerator(cfg.Report.Format)
	if !ok {
		slog.Error("invalid REPORT_FORMAT", slog.String("format", cfg.Report.Format))
		os.Exit(1)
	}

	pgClient := data.NewPostgresClient(ctx, cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(pgClient)

	redisClient := data.NewRedisClient(ctx, cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg.SessionExpiration)

	moexApiClient := moexApi.New(cfg)
	tinkoffApiClient := tinkoffApi.New(cfg)

	var cloudStorage reportService.CloudStorage
	var driveApi *googleDriveApi.GoogleDriveApi
	if cfg.GoogleDrive.CredentialsFile != "" {
		driveApi = googleDriveApi.New(ctx, cfg)
		cloudStorage = driveApi
	}

	bot := tgbot.NewTeleBot(cfg)
	tgNotifier := notifier.New(bot)

	newBrokerSession := func(token string) reportService.BrokerSession {
		return tinkoffApiClient.Session(token)
	}

	reportSrv := reportService.New(cfg, pgRepo, newBrokerSession, redisCache, generator, tgNotifier, cloudStorage, profitBase)
	subscriptionSrv := subscriptionService.New(pgRepo, tinkoffApiClient)
	stockSrv := stockService.New(pgRepo, redisCache, moexApiClient)

	sched := scheduler.New()
	sched.NewIntervalJob("fill moex cache", stockSrv.FillMoexCache, cfg.Jobs.FillMoexCacheInterval, true)
	sched.NewCrontabJob("send reports", reportSrv.Job, cfg.Jobs.ReportCrontab, false)
	if driveApi != nil {
		sched.NewIntervalJob("delete old drive files", driveApi.DeleteOldFiles, cfg.Jobs.DeleteOldFilesInterval, false)
	}
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(subscriptionSrv, reportSrv, stockSrv, redisSession)

	tgBot := tgbot.New(bot, tgController, redisSession)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

// newGenerator returns a nil generator for the "message" format, reports are sent as text then.
func newGenerator(format string) (reportService.Generator, bool) {
	switch format {
	case "csv":
		return csvGenerator.New(), true
	case "xlsx":
		return xlsxGenerator.New(), true
	case "message":
		return nil, true
	default:
		return nil, false
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
