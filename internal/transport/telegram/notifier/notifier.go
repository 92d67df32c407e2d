package notifier

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/tinkoff_report_bot/utils"
	tele "gopkg.in/telebot.v4"
)

type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier sends messages that are not replies to an update, e.g. scheduled reports.
// Users talk to the bot in private chats, so the user id is the chat id.
type Notifier struct {
	bot Sender
}

func New(bot Sender) *Notifier {
	return &Notifier{bot: bot}
}

func (n *Notifier) SendText(ctx context.Context, userID int64, text string) error {
	_, err := n.bot.Send(tele.ChatID(userID), text)
	if err != nil {
		slog.Error("can't send message", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.Int64("userID", userID), slog.String("err", err.Error()))
		return err
	}
	return nil
}

func (n *Notifier) SendDocument(ctx context.Context, userID int64, path, fileName, caption string) error {
	doc := &tele.Document{
		File:     tele.FromDisk(path),
		FileName: fileName,
		Caption:  caption,
	}

	_, err := n.bot.Send(tele.ChatID(userID), doc)
	if err != nil {
		slog.Error("can't send document", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.Int64("userID", userID), slog.String("err", err.Error()))
		return err
	}
	return nil
}
