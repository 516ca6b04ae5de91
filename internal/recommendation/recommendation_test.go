package recommendation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func some(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

var none = decimal.NullDecimal{}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name      string
		sentiment decimal.NullDecimal
		returnPct decimal.NullDecimal
		expected  string
	}{
		{"no sentiment", none, some("50"), NoData},
		{"no sentiment and no return", none, none, NoData},
		{"bullish with gain", some("0.5"), some("5"), IncreaseExposure},
		{"bearish with loss", some("-0.5"), some("-5"), CutExposure},
		{"neutral beats positive return", some("0.0"), some("5"), Hold},
		{"mild positive with loss", some("0.25"), some("-3"), WatchClosely},
		{"bullish with loss", some("0.9"), some("-1"), WatchClosely},
		{"bearish with gain", some("-0.9"), some("1"), WatchClosely},
		{"bullish with flat return", some("0.5"), some("0"), WatchClosely},
		{"bullish without return", some("0.5"), none, WatchClosely},
		{"neutral without return", some("0.1"), none, Hold},
		{"upper strong bound falls through", some("0.3"), some("5"), WatchClosely},
		{"lower strong bound falls through", some("-0.3"), some("-5"), WatchClosely},
		{"upper neutral bound falls through", some("0.2"), some("1"), WatchClosely},
		{"lower neutral bound falls through", some("-0.2"), some("1"), WatchClosely},
		{"just inside neutral", some("-0.19999"), some("-1"), Hold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Recommend(tt.sentiment, tt.returnPct))
		})
	}
}

func TestRecommendIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, IncreaseExposure, Recommend(some("0.31"), some("0.01")))
	}
}
