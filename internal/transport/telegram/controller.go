package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/KotFed0t/tinkoff_report_bot/data/session"
	"github.com/KotFed0t/tinkoff_report_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model/moexModel"
	"github.com/KotFed0t/tinkoff_report_bot/internal/service"
	"github.com/KotFed0t/tinkoff_report_bot/internal/transport/telegram/parser"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg = "что-то пошло не так..."
	successMsg     = "Успешно!"

	helpMsg = `Я присылаю отчёты о доходности портфелей Тинькофф Инвестиций.

/subscribe - подписаться на портфель
/unsubscribe - отписаться от портфеля
/broker_account_ids - показать ID портфелей по токену
/subscriptions - мои подписки
/report - получить отчёт сейчас
/add_stocks - добавить акции вручную
/delete_stocks - удалить акции
/stocks - мои акции`
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, userID int64, req model.SubscriptionRequest) error
	Unsubscribe(ctx context.Context, userID int64, brokerAccountID string) error
	BrokerAccountIDs(ctx context.Context, token string) ([]model.BrokerAccount, error)
	Subscriptions(ctx context.Context, userID int64) ([]model.Subscription, error)
}

type ReportService interface {
	ReportForUser(ctx context.Context, userID int64) error
}

type StockService interface {
	GetStockInfo(ctx context.Context, ticker string) (moexModel.StockInfo, error)
	AddStocks(ctx context.Context, pkg model.StockPackage) error
	DeleteStocks(ctx context.Context, pkg model.StockPackage) error
	ListStocks(ctx context.Context, userID int64) ([]model.StockPackage, error)
}

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
	ResetSession(ctx context.Context, key string) error
}

type Controller struct {
	subscriptionService SubscriptionService
	reportService       ReportService
	stockService        StockService
	session             Session
}

func NewController(subscriptionService SubscriptionService, reportService ReportService, stockService StockService, session Session) *Controller {
	return &Controller{
		subscriptionService: subscriptionService,
		reportService:       reportService,
		stockService:        stockService,
		session:             session,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = ctrl.session.ResetSession(ctx, sessionKey(c))
	return c.Send("Привет! " + helpMsg)
}

func (ctrl *Controller) Help(c tele.Context) error {
	return c.Send(helpMsg)
}

func (ctrl *Controller) Subscribe(c tele.Context) error {
	if c.Message().Payload != "" {
		return ctrl.subscribe(utils.CreateCtxWithRqID(c), c, c.Message().Payload)
	}
	return ctrl.expect(c, model.Session{State: model.ExpectingSubscription},
		"Введите Tinkoff API token, ID портфеля и, при необходимости, дату начала в формате дд.мм.гггг")
}

func (ctrl *Controller) ProcessSubscription(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = ctrl.session.ResetSession(ctx, sessionKey(c))
	return ctrl.subscribe(ctx, c, c.Message().Text)
}

func (ctrl *Controller) subscribe(ctx context.Context, c tele.Context, text string) error {
	req, err := parser.ParseSubscription(text)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	err = ctrl.subscriptionService.Subscribe(ctx, c.Sender().ID, req)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "Не могу подписаться на прослушивание портфеля!")
	}

	return c.Send(successMsg)
}

func (ctrl *Controller) Unsubscribe(c tele.Context) error {
	if c.Message().Payload != "" {
		return ctrl.unsubscribe(utils.CreateCtxWithRqID(c), c, c.Message().Payload)
	}
	return ctrl.expect(c, model.Session{State: model.ExpectingUnsubscription}, "Введите ID портфеля")
}

func (ctrl *Controller) ProcessUnsubscription(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = ctrl.session.ResetSession(ctx, sessionKey(c))
	return ctrl.unsubscribe(ctx, c, c.Message().Text)
}

func (ctrl *Controller) unsubscribe(ctx context.Context, c tele.Context, text string) error {
	accountID, err := parser.ParseUnsubscription(text)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	err = ctrl.subscriptionService.Unsubscribe(ctx, c.Sender().ID, accountID)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "Не могу отписаться от прослушивания портфеля!")
	}

	return c.Send(successMsg)
}

func (ctrl *Controller) BrokerAccountIDs(c tele.Context) error {
	if c.Message().Payload != "" {
		return ctrl.brokerAccountIDs(utils.CreateCtxWithRqID(c), c, c.Message().Payload)
	}
	return ctrl.expect(c, model.Session{State: model.ExpectingBrokerToken}, "Введите Tinkoff API token")
}

func (ctrl *Controller) ProcessBrokerToken(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = ctrl.session.ResetSession(ctx, sessionKey(c))
	return ctrl.brokerAccountIDs(ctx, c, c.Message().Text)
}

func (ctrl *Controller) brokerAccountIDs(ctx context.Context, c tele.Context, text string) error {
	token, err := parser.ParseToken(text)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	accounts, err := ctrl.subscriptionService.BrokerAccountIDs(ctx, token)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	return c.Send(telebotConverter.BrokerAccounts(accounts))
}

func (ctrl *Controller) Subscriptions(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	subs, err := ctrl.subscriptionService.Subscriptions(ctx, c.Sender().ID)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	return c.Send(telebotConverter.Subscriptions(subs))
}

func (ctrl *Controller) Report(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	_ = c.Send("Формирую отчёт...")

	err := ctrl.reportService.ReportForUser(ctx, c.Sender().ID)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	return nil
}

func (ctrl *Controller) AddStocks(c tele.Context) error {
	return ctrl.expect(c, model.Session{State: model.ExpectingTicker, StockAction: model.AddStocks}, "Введите тикер")
}

func (ctrl *Controller) DeleteStocks(c tele.Context) error {
	return ctrl.expect(c, model.Session{State: model.ExpectingTicker, StockAction: model.DeleteStocks}, "Введите тикер")
}

func (ctrl *Controller) ProcessTicker(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	ticker, err := parser.ParseTicker(c.Message().Text)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	if _, err = ctrl.stockService.GetStockInfo(ctx, ticker); err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	chatSession.Ticker = ticker
	chatSession.State = model.ExpectingAmount
	return ctrl.saveAndSend(ctx, c, chatSession, "Введите кол-во акций")
}

func (ctrl *Controller) ProcessAmount(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	amount, err := parser.ParsePositiveDecimal(c.Message().Text)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	chatSession.Amount = amount
	chatSession.State = model.ExpectingCost
	return ctrl.saveAndSend(ctx, c, chatSession, "Введите стоимость акций")
}

func (ctrl *Controller) ProcessCost(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	cost, err := parser.ParsePositiveDecimal(c.Message().Text)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	pkg := model.StockPackage{
		UserID: c.Sender().ID,
		Ticker: chatSession.Ticker,
		Amount: chatSession.Amount,
		Cost:   cost,
	}

	// the conversation is over whatever the outcome
	_ = ctrl.session.ResetSession(ctx, sessionKey(c))

	switch chatSession.StockAction {
	case model.AddStocks:
		err = ctrl.stockService.AddStocks(ctx, pkg)
	case model.DeleteStocks:
		err = ctrl.stockService.DeleteStocks(ctx, pkg)
	default:
		err = errors.New("unknown stock action")
	}
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	return c.Send(successMsg)
}

func (ctrl *Controller) Stocks(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	pkgs, err := ctrl.stockService.ListStocks(ctx, c.Sender().ID)
	if err != nil {
		return ctrl.replyErr(ctx, c, err, "")
	}

	return c.Send(telebotConverter.StockPackages(pkgs))
}

// expect stores the session so that the next text message is routed by its state.
func (ctrl *Controller) expect(c tele.Context, chatSession model.Session, prompt string) error {
	return ctrl.saveAndSend(utils.CreateCtxWithRqID(c), c, chatSession, prompt)
}

func (ctrl *Controller) saveAndSend(ctx context.Context, c tele.Context, chatSession model.Session, text string) error {
	err := ctrl.session.SetSession(ctx, sessionKey(c), chatSession)
	if err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}
	return c.Send(text)
}

func (ctrl *Controller) getSessionFromTeleCtxOrStorage(ctx context.Context, c tele.Context) (model.Session, error) {
	chatSession, ok := c.Get("session").(model.Session)
	if ok {
		return chatSession, nil
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	chatSession, err := ctrl.session.GetSession(ctx, sessionKey(c))
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		}
		return model.Session{}, err
	}
	return chatSession, nil
}

// replyErr answers with the message of a known error, with fallback or the generic message otherwise.
func (ctrl *Controller) replyErr(ctx context.Context, c tele.Context, err error, fallback string) error {
	if msg, ok := errorMessage(err); ok {
		return c.Send(msg)
	}

	slog.Error("request failed", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))

	if fallback != "" {
		return c.Send(fallback)
	}
	return c.Send(internalErrMsg)
}

func errorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrInsufficientInput):
		return "Неполное число входных аргументов!", true
	case errors.Is(err, service.ErrInvalidNumericFormat):
		return "Указано число неверного формата!", true
	case errors.Is(err, service.ErrInvalidDate):
		return "Неправильный формат даты! Используйте дд.мм.гггг", true
	case errors.Is(err, service.ErrUnknownBrokerCredential):
		return "Нет пользователя с таким Tinkoff API token!", true
	case errors.Is(err, service.ErrUnknownPortfolio):
		return "Нет портфеля с таким ID!", true
	case errors.Is(err, service.ErrAlreadySubscribed):
		return "Вы уже подписаны на этот портфель!", true
	case errors.Is(err, service.ErrNotPositive):
		return "Недопустимое значение", true
	case errors.Is(err, service.ErrNotEnoughStocks):
		return "У вас нет такого количества акций", true
	case errors.Is(err, service.ErrInvalidTicker):
		return "Нет компании с таким тикером", true
	case errors.Is(err, service.ErrStockNotActive):
		return "Акция не торгуется", true
	case errors.Is(err, service.ErrNoSubscriptions):
		return "У вас нет подписок", true
	default:
		return "", false
	}
}

func sessionKey(c tele.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}
