package dto

import (
	"strings"
	"time"
)

// RatesParams defines the query parameters accepted by GET /rates.
// Dates use the ISO calendar layout (2006-01-02). Currency codes are
// case-insensitive at the boundary and validated by the custom "currency"
// rule (three alphabetic characters).
type RatesParams struct {
	From  string    `form:"from,default=USD" binding:"currency"`
	To    string    `form:"to,default=RUB" binding:"currency"`
	Value float64   `form:"value,default=100" binding:"gt=0"`
	Date  time.Time `form:"date" time_format:"2006-01-02"`
}

// Normalize upper-cases the currency codes and defaults the exchange date.
func (p *RatesParams) Normalize(now time.Time) {
	p.From = strings.ToUpper(p.From)
	p.To = strings.ToUpper(p.To)
	if p.Date.IsZero() {
		p.Date = now
	}
}

// RatesResponse is the conversion result payload.
type RatesResponse struct {
	Result float64 `json:"result"`
}

// ErrorDetailResponse is the error body for an unresolvable currency pair.
type ErrorDetailResponse struct {
	Detail string `json:"detail"`
}
