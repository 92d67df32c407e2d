package parser

import (
	"testing"
	"time"

	"github.com/KotFed0t/tinkoff_report_bot/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubscription(t *testing.T) {
	req, err := ParseSubscription("t.token 2000123456 15.03.2021")
	require.NoError(t, err)
	assert.Equal(t, "t.token", req.TinkoffToken)
	assert.Equal(t, "2000123456", req.BrokerAccountID)
	require.NotNil(t, req.StartedAt)
	assert.True(t, req.StartedAt.Equal(time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)))

	req, err = ParseSubscription("  t.token   2000123456  ")
	require.NoError(t, err)
	assert.Nil(t, req.StartedAt)
}

func TestParseSubscription_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{name: "only token", input: "onlytoken", err: service.ErrInsufficientInput},
		{name: "empty", input: "", err: service.ErrInsufficientInput},
		{name: "non numeric account", input: "token account", err: service.ErrInsufficientInput},
		{name: "impossible date", input: "token 2000 31.02.2021", err: service.ErrInvalidDate},
		{name: "garbage date", input: "token 2000 yesterday", err: service.ErrInvalidDate},
		{name: "letters after account digits", input: "tok 123abc", err: service.ErrInsufficientInput},
		{name: "dash inside account", input: "tok 12-34", err: service.ErrInsufficientInput},
		{name: "trailing argument", input: "tok 123 01.01.2020 extra", err: service.ErrInsufficientInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSubscription(tt.input)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseUnsubscription(t *testing.T) {
	accountID, err := ParseUnsubscription(" 2000123456\n")
	require.NoError(t, err)
	assert.Equal(t, "2000123456", accountID)

	_, err = ParseUnsubscription("abc")
	assert.ErrorIs(t, err, service.ErrInvalidNumericFormat)

	_, err = ParseUnsubscription("   ")
	assert.ErrorIs(t, err, service.ErrInsufficientInput)
}

func TestParseToken(t *testing.T) {
	token, err := ParseToken(" t.token extra")
	require.NoError(t, err)
	assert.Equal(t, "t.token", token)

	_, err = ParseToken("")
	assert.ErrorIs(t, err, service.ErrInsufficientInput)
}

func TestParseTicker(t *testing.T) {
	ticker, err := ParseTicker(" sber ")
	require.NoError(t, err)
	assert.Equal(t, "SBER", ticker)

	_, err = ParseTicker("")
	assert.ErrorIs(t, err, service.ErrInsufficientInput)

	_, err = ParseTicker("SB ER")
	assert.ErrorIs(t, err, service.ErrInvalidTicker)
}

func TestParsePositiveDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  decimal.Decimal
		err   error
	}{
		{input: "10", want: decimal.NewFromInt(10)},
		{input: "2,5", want: decimal.RequireFromString("2.5")},
		{input: "0", err: service.ErrNotPositive},
		{input: "-3", err: service.ErrNotPositive},
		{input: "ten", err: service.ErrInvalidNumericFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePositiveDecimal(tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}
