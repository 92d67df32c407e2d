package tgbot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/KotFed0t/tinkoff_report_bot/config"
	"github.com/KotFed0t/tinkoff_report_bot/data/session"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/transport/telegram"
	customMW "github.com/KotFed0t/tinkoff_report_bot/internal/transport/telegram/middleware"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
}

type TGBot struct {
	bot     *tele.Bot
	ctrl    *telegram.Controller
	session Session
}

// NewTeleBot is created before the services, the scheduled report job sends through it too.
func NewTeleBot(cfg *config.Config) *tele.Bot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return b
}

func New(bot *tele.Bot, ctrl *telegram.Controller, session Session) *TGBot {
	return &TGBot{bot: bot, ctrl: ctrl, session: session}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle(tele.OnText, b.routeText)

	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/help", b.ctrl.Help)
	b.bot.Handle("/subscribe", b.ctrl.Subscribe)
	b.bot.Handle("/unsubscribe", b.ctrl.Unsubscribe)
	b.bot.Handle("/broker_account_ids", b.ctrl.BrokerAccountIDs)
	b.bot.Handle("/subscriptions", b.ctrl.Subscriptions)
	b.bot.Handle("/report", b.ctrl.Report)
	b.bot.Handle("/add_stocks", b.ctrl.AddStocks)
	b.bot.Handle("/delete_stocks", b.ctrl.DeleteStocks)
	b.bot.Handle("/stocks", b.ctrl.Stocks)
}

// routeText picks the controller method by the step the user is on.
func (b *TGBot) routeText(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := b.session.GetSession(ctx, strconv.FormatInt(c.Sender().ID, 10))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return c.Send("сначала введите одну из команд, список в /help")
		}
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send("что-то пошло не так...")
	}

	c.Set("session", chatSession)

	switch chatSession.State {
	case model.ExpectingSubscription:
		return b.ctrl.ProcessSubscription(c)
	case model.ExpectingUnsubscription:
		return b.ctrl.ProcessUnsubscription(c)
	case model.ExpectingBrokerToken:
		return b.ctrl.ProcessBrokerToken(c)
	case model.ExpectingTicker:
		return b.ctrl.ProcessTicker(c)
	case model.ExpectingAmount:
		return b.ctrl.ProcessAmount(c)
	case model.ExpectingCost:
		return b.ctrl.ProcessCost(c)
	default:
		slog.Warn("unexpected chatSession state", slog.String("rqID", rqID), slog.Any("state", chatSession.State))
		return c.Send("сначала введите одну из команд, список в /help")
	}
}
