package model

import "time"

type Subscription struct {
	UserID          int64
	TinkoffToken    string
	BrokerAccountID string
	StartedAt       *time.Time
}

type SubscriptionRequest struct {
	TinkoffToken    string
	BrokerAccountID string
	StartedAt       *time.Time
}

type BrokerAccount struct {
	ID         string
	Name       string
	OpenedDate time.Time
}
