package telegram

import (
	"context"
	"testing"

	"github.com/KotFed0t/tinkoff_report_bot/data/session"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/model/moexModel"
	"github.com/KotFed0t/tinkoff_report_bot/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

const userID = 42

// fakeContext implements the part of tele.Context the controller uses.
type fakeContext struct {
	tele.Context
	msg     *tele.Message
	store   map[string]interface{}
	replies []string
}

func newFakeContext(text, payload string) *fakeContext {
	return &fakeContext{
		msg:   &tele.Message{Text: text, Payload: payload, Sender: &tele.User{ID: userID}},
		store: map[string]interface{}{},
	}
}

func (c *fakeContext) Message() *tele.Message { return c.msg }
func (c *fakeContext) Sender() *tele.User     { return c.msg.Sender }

func (c *fakeContext) Get(key string) interface{} { return c.store[key] }

func (c *fakeContext) Set(key string, val interface{}) { c.store[key] = val }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.replies = append(c.replies, what.(string))
	return nil
}

func (c *fakeContext) lastReply() string {
	if len(c.replies) == 0 {
		return ""
	}
	return c.replies[len(c.replies)-1]
}

type fakeSessions map[string]model.Session

func (s fakeSessions) GetSession(_ context.Context, key string) (model.Session, error) {
	chatSession, ok := s[key]
	if !ok {
		return model.Session{}, session.ErrNotFound
	}
	return chatSession, nil
}

func (s fakeSessions) SetSession(_ context.Context, key string, chatSession model.Session) error {
	s[key] = chatSession
	return nil
}

func (s fakeSessions) ResetSession(_ context.Context, key string) error {
	delete(s, key)
	return nil
}

type fakeSubscriptions struct {
	subscribed []model.SubscriptionRequest
	err        error
}

func (f *fakeSubscriptions) Subscribe(_ context.Context, _ int64, req model.SubscriptionRequest) error {
	if f.err != nil {
		return f.err
	}
	f.subscribed = append(f.subscribed, req)
	return nil
}

func (f *fakeSubscriptions) Unsubscribe(_ context.Context, _ int64, _ string) error {
	return f.err
}

func (f *fakeSubscriptions) BrokerAccountIDs(_ context.Context, _ string) ([]model.BrokerAccount, error) {
	return []model.BrokerAccount{{ID: "2000", Name: "Брокерский счёт"}}, f.err
}

func (f *fakeSubscriptions) Subscriptions(_ context.Context, _ int64) ([]model.Subscription, error) {
	return nil, f.err
}

type fakeReports struct{ err error }

func (f *fakeReports) ReportForUser(_ context.Context, _ int64) error { return f.err }

type fakeStocks struct {
	added   []model.StockPackage
	deleted []model.StockPackage
}

func (f *fakeStocks) GetStockInfo(_ context.Context, ticker string) (moexModel.StockInfo, error) {
	if ticker != "SBER" {
		return moexModel.StockInfo{}, service.ErrInvalidTicker
	}
	return moexModel.StockInfo{Ticker: ticker, Status: true}, nil
}

func (f *fakeStocks) AddStocks(_ context.Context, pkg model.StockPackage) error {
	f.added = append(f.added, pkg)
	return nil
}

func (f *fakeStocks) DeleteStocks(_ context.Context, pkg model.StockPackage) error {
	f.deleted = append(f.deleted, pkg)
	return service.ErrNotEnoughStocks
}

func (f *fakeStocks) ListStocks(_ context.Context, _ int64) ([]model.StockPackage, error) {
	return nil, nil
}

type fixture struct {
	ctrl     *Controller
	sessions fakeSessions
	subs     *fakeSubscriptions
	reports  *fakeReports
	stocks   *fakeStocks
}

func newFixture() *fixture {
	f := &fixture{
		sessions: fakeSessions{},
		subs:     &fakeSubscriptions{},
		reports:  &fakeReports{},
		stocks:   &fakeStocks{},
	}
	f.ctrl = NewController(f.subs, f.reports, f.stocks, f.sessions)
	return f
}

func TestSubscribe_TwoSteps(t *testing.T) {
	f := newFixture()

	c := newFakeContext("/subscribe", "")
	require.NoError(t, f.ctrl.Subscribe(c))
	assert.Equal(t, model.ExpectingSubscription, f.sessions["42"].State)

	c = newFakeContext("t.secret 2000 01.02.2020", "")
	require.NoError(t, f.ctrl.ProcessSubscription(c))

	assert.Equal(t, successMsg, c.lastReply())
	assert.NotContains(t, f.sessions, "42")
	require.Len(t, f.subs.subscribed, 1)
	assert.Equal(t, "2000", f.subs.subscribed[0].BrokerAccountID)
}

func TestSubscribe_InlinePayload(t *testing.T) {
	f := newFixture()

	c := newFakeContext("/subscribe t.secret 2000", "t.secret 2000")
	require.NoError(t, f.ctrl.Subscribe(c))

	assert.Equal(t, successMsg, c.lastReply())
	assert.Empty(t, f.sessions)
}

func TestSubscribe_ErrorReplies(t *testing.T) {
	f := newFixture()

	c := newFakeContext("onlytoken", "")
	require.NoError(t, f.ctrl.ProcessSubscription(c))
	assert.Equal(t, "Неполное число входных аргументов!", c.lastReply())

	f.subs.err = service.ErrUnknownBrokerCredential
	c = newFakeContext("t.secret 2000", "")
	require.NoError(t, f.ctrl.ProcessSubscription(c))
	assert.Equal(t, "Нет пользователя с таким Tinkoff API token!", c.lastReply())
	assert.NotContains(t, c.lastReply(), "t.secret")

	f.subs.err = assert.AnError
	c = newFakeContext("t.secret 2000", "")
	require.NoError(t, f.ctrl.ProcessSubscription(c))
	assert.Equal(t, "Не могу подписаться на прослушивание портфеля!", c.lastReply())
}

func TestUnsubscribe(t *testing.T) {
	f := newFixture()

	c := newFakeContext("abc", "")
	require.NoError(t, f.ctrl.ProcessUnsubscription(c))
	assert.Equal(t, "Указано число неверного формата!", c.lastReply())

	f.subs.err = service.ErrUnknownPortfolio
	c = newFakeContext("2000", "")
	require.NoError(t, f.ctrl.ProcessUnsubscription(c))
	assert.Equal(t, "Нет портфеля с таким ID!", c.lastReply())
}

func TestReport_NoSubscriptions(t *testing.T) {
	f := newFixture()
	f.reports.err = service.ErrNoSubscriptions

	c := newFakeContext("/report", "")
	require.NoError(t, f.ctrl.Report(c))
	assert.Equal(t, "У вас нет подписок", c.lastReply())
}

func TestAddStocks_Flow(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.ctrl.AddStocks(newFakeContext("/add_stocks", "")))
	assert.Equal(t, model.ExpectingTicker, f.sessions["42"].State)

	c := newFakeContext("gazp", "")
	require.NoError(t, f.ctrl.ProcessTicker(c))
	assert.Equal(t, "Нет компании с таким тикером", c.lastReply())
	assert.Equal(t, model.ExpectingTicker, f.sessions["42"].State, "invalid ticker keeps the state")

	c = newFakeContext("sber", "")
	require.NoError(t, f.ctrl.ProcessTicker(c))
	assert.Equal(t, "Введите кол-во акций", c.lastReply())
	assert.Equal(t, "SBER", f.sessions["42"].Ticker)

	c = newFakeContext("-1", "")
	require.NoError(t, f.ctrl.ProcessAmount(c))
	assert.Equal(t, "Недопустимое значение", c.lastReply())

	c = newFakeContext("10", "")
	require.NoError(t, f.ctrl.ProcessAmount(c))
	assert.Equal(t, "Введите стоимость акций", c.lastReply())

	c = newFakeContext("3000.5", "")
	require.NoError(t, f.ctrl.ProcessCost(c))
	assert.Equal(t, successMsg, c.lastReply())
	assert.Empty(t, f.sessions)

	require.Len(t, f.stocks.added, 1)
	assert.Equal(t, "SBER", f.stocks.added[0].Ticker)
	assert.True(t, decimal.NewFromInt(10).Equal(f.stocks.added[0].Amount))
	assert.True(t, decimal.RequireFromString("3000.5").Equal(f.stocks.added[0].Cost))
}

func TestDeleteStocks_NotEnough(t *testing.T) {
	f := newFixture()
	f.sessions["42"] = model.Session{State: model.ExpectingCost, StockAction: model.DeleteStocks, Ticker: "SBER", Amount: decimal.NewFromInt(5)}

	c := newFakeContext("100", "")
	require.NoError(t, f.ctrl.ProcessCost(c))

	assert.Equal(t, "У вас нет такого количества акций", c.lastReply())
	require.Len(t, f.stocks.deleted, 1)
	assert.Empty(t, f.sessions)
}
