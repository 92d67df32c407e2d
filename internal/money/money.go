package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	RUB = "rub"
	USD = "usd"
)

const nanoExp = -9

// FromQuotation converts a broker units+nano pair into an exact decimal.
// The value is negative when either part is negative, so records that sign
// only one of the fields are handled the same way as fully signed ones.
func FromQuotation(units int64, nano int32) decimal.Decimal {
	negative := units < 0 || nano < 0

	u := decimal.NewFromInt(units).Abs()
	n := decimal.New(int64(nano), nanoExp).Abs()

	value := u.Add(n)
	if negative {
		return value.Neg()
	}
	return value
}

// FromMoneyValue is FromQuotation for money records, also returning the normalized currency code.
func FromMoneyValue(currency string, units int64, nano int32) (decimal.Decimal, string) {
	return FromQuotation(units, nano), NormalizeCurrency(currency)
}

func NormalizeCurrency(currency string) string {
	return strings.ToLower(strings.TrimSpace(currency))
}
