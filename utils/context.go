package utils

import (
	"context"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

func CreateCtxWithRqID(c tele.Context) context.Context {
	rqId, ok := c.Get("rqID").(string)
	if !ok {
		return context.WithValue(context.Background(), rqIDKey{}, uuid.NewString())
	}
	return context.WithValue(context.Background(), rqIDKey{}, rqId)
}

// EnsureRqID keeps the request id already in ctx and adds a new one otherwise.
func EnsureRqID(ctx context.Context) context.Context {
	if GetRequestIDFromCtx(ctx) != "" {
		return ctx
	}
	return WithNewRqID(ctx)
}

// WithNewRqID is used by background jobs that are not started by a telegram update.
func WithNewRqID(ctx context.Context) context.Context {
	return context.WithValue(ctx, rqIDKey{}, uuid.NewString())
}
