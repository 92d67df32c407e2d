package profitability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Rate(t *testing.T) {
	prices := newFakePrices(map[string]string{"USDRUB": "90", "EURUSD": "1.1"})
	routes := DefaultRoutes("USDRUB")
	routes["eur"] = Route{AnchorSecurityID: "EURUSD", Target: "usd"}

	conv := NewConverter(routes, prices)

	rate, err := conv.Rate(context.Background(), "rub")
	require.NoError(t, err)
	assert.True(t, rate.Equal(d("1")))

	rate, err = conv.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(d("90")))

	rate, err = conv.Rate(context.Background(), "eur")
	require.NoError(t, err)
	assert.True(t, rate.Equal(d("99")), "got %s", rate)

	rate, err = conv.Rate(context.Background(), "hkd")
	require.NoError(t, err)
	assert.True(t, rate.Equal(d("1")), "currencies without a route are not converted")
}

func TestConverter_Cycle(t *testing.T) {
	prices := newFakePrices(map[string]string{"X": "2", "Y": "3"})
	conv := NewConverter(map[string]Route{
		"aaa": {AnchorSecurityID: "X", Target: "bbb"},
		"bbb": {AnchorSecurityID: "Y", Target: "aaa"},
	}, prices)

	_, err := conv.Rate(context.Background(), "aaa")
	assert.Error(t, err)
}

func TestConverter_ConvertZeroSkipsLookup(t *testing.T) {
	prices := newFakePrices(nil)
	conv := NewConverter(DefaultRoutes("USDRUB"), prices)

	got, err := conv.Convert(context.Background(), "usd", d("0"))
	require.NoError(t, err)
	assert.True(t, got.IsZero())
	assert.Zero(t, prices.calls["USDRUB"])
}
