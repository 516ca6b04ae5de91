package recommendation

import "github.com/shopspring/decimal"

const (
	NoData           = "No Data"
	IncreaseExposure = "Increase Exposure"
	CutExposure      = "Cut Exposure"
	Hold             = "Hold"
	WatchClosely     = "Watch Closely"
)

var (
	strongPositive = decimal.RequireFromString("0.3")
	strongNegative = decimal.RequireFromString("-0.3")
	neutralUpper   = decimal.RequireFromString("0.2")
	neutralLower   = decimal.RequireFromString("-0.2")
)

// Recommend maps a sentiment score and a return percentage to an action.
// Rules are checked in order and all bounds are strict. A missing return
// counts as neither a gain nor a loss.
func Recommend(sentiment, returnPct decimal.NullDecimal) string {
	if !sentiment.Valid {
		return NoData
	}

	s := sentiment.Decimal
	gain := returnPct.Valid && returnPct.Decimal.IsPositive()
	loss := returnPct.Valid && returnPct.Decimal.IsNegative()

	switch {
	case s.GreaterThan(strongPositive) && gain:
		return IncreaseExposure
	case s.LessThan(strongNegative) && loss:
		return CutExposure
	case s.GreaterThan(neutralLower) && s.LessThan(neutralUpper):
		return Hold
	default:
		return WatchClosely
	}
}
