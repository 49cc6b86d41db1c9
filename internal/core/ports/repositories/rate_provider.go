package repositories

import (
	"context"
	"time"

	"github.com/smbrine/exchange-api-test-task/internal/core/domain"
)

// RateProvider resolves a pairwise division rate from an upstream source.
// dateKey is the cache sub-key for the exchange date (providers cache full
// snapshot tables by it), date is the exchange date itself.
//
// Implementations wrap apperrors.ErrNotFound for every business miss: an
// unknown currency code, a malformed snapshot body, or a missing table
// entry. Any other error is a transient upstream failure.
type RateProvider interface {
	FetchDivisionRate(ctx context.Context, from, to, dateKey string, date time.Time) (*domain.ExchangeRate, error)
}
