package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceCurrency is the currency served by the central-bank provider.
// Pairs involving it are resolved against the CBR daily snapshot instead of
// the third-party snapshot provider.
const ReferenceCurrency = "RUB"

// ExchangeRate is a resolved division rate for a currency pair on a specific
// exchange date. Rate is the divisor applied to a value in the "from"
// currency to obtain the equivalent in the "to" currency:
//
//	result = value / Rate
type ExchangeRate struct {
	FromCurrencyCode string
	ToCurrencyCode   string
	Rate             decimal.Decimal
	Date             time.Time
	Source           string
}

// Reciprocal returns the division rate for the opposite direction of the pair.
func (r ExchangeRate) Reciprocal() decimal.Decimal {
	return decimal.NewFromInt(1).Div(r.Rate)
}
