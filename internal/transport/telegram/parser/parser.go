package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/service"
	"github.com/shopspring/decimal"
)

const dateLayout = "02.01.2006"

var (
	subscriptionRe = regexp.MustCompile(`^(\S+)\s+(\d+)(?:\s+(\S+))?$`)
	tickerRe       = regexp.MustCompile(`^[A-Z0-9]{1,12}$`)
)

type rule[T any] struct {
	check func(T) bool
	err   error
}

// validate applies rules in order and returns the error of the first failed one.
func validate[T any](value T, rules ...rule[T]) error {
	for _, r := range rules {
		if !r.check(value) {
			return r.err
		}
	}
	return nil
}

// ParseSubscription parses "<token> <accountId> [dd.mm.yyyy]".
func ParseSubscription(text string) (model.SubscriptionRequest, error) {
	groups := subscriptionRe.FindStringSubmatch(strings.TrimSpace(text))
	if groups == nil {
		return model.SubscriptionRequest{}, service.ErrInsufficientInput
	}

	req := model.SubscriptionRequest{
		TinkoffToken:    groups[1],
		BrokerAccountID: groups[2],
	}

	if groups[3] != "" {
		startedAt, err := time.Parse(dateLayout, groups[3])
		if err != nil {
			return model.SubscriptionRequest{}, service.ErrInvalidDate
		}
		req.StartedAt = &startedAt
	}

	return req, nil
}

// ParseUnsubscription returns the broker account id, which must be numeric.
func ParseUnsubscription(text string) (string, error) {
	accountID := strings.TrimSpace(text)
	if accountID == "" {
		return "", service.ErrInsufficientInput
	}
	if _, err := strconv.ParseUint(accountID, 10, 64); err != nil {
		return "", service.ErrInvalidNumericFormat
	}
	return accountID, nil
}

func ParseToken(text string) (string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", service.ErrInsufficientInput
	}
	return fields[0], nil
}

func ParseTicker(text string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(text))

	err := validate(ticker,
		rule[string]{check: func(s string) bool { return s != "" }, err: service.ErrInsufficientInput},
		rule[string]{check: tickerRe.MatchString, err: service.ErrInvalidTicker},
	)
	if err != nil {
		return "", err
	}

	return ticker, nil
}

// ParsePositiveDecimal accepts both "1.5" and "1,5".
func ParsePositiveDecimal(text string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(text), ",", "."))
	if err != nil {
		return decimal.Zero, service.ErrInvalidNumericFormat
	}

	err = validate(value,
		rule[decimal.Decimal]{check: decimal.Decimal.IsPositive, err: service.ErrNotPositive},
	)
	if err != nil {
		return decimal.Zero, err
	}

	return value, nil
}
