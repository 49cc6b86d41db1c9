package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smbrine/exchange-api-test-task/internal/apperrors"
	"github.com/smbrine/exchange-api-test-task/internal/core/domain"
	portsrepo "github.com/smbrine/exchange-api-test-task/internal/core/ports/repositories"
	"github.com/smbrine/exchange-api-test-task/internal/middleware"
)

// cacheDateLayout is the sub-key every cached rate is scoped by.
const cacheDateLayout = "2006:01:02"

const cacheSource = "cache"

// RateService resolves division rates: cache first, then one of the two
// providers depending on whether the pair involves the reference currency.
type RateService struct {
	cache             portsrepo.RateCacheFacade
	reference         portsrepo.RateProvider
	snapshot          portsrepo.RateProvider
	referenceCurrency string
}

// NewRateService creates a new RateService.
func NewRateService(
	rateCache portsrepo.RateCacheFacade,
	reference portsrepo.RateProvider,
	snapshot portsrepo.RateProvider,
	referenceCurrency string,
) *RateService {
	return &RateService{
		cache:             rateCache,
		reference:         reference,
		snapshot:          snapshot,
		referenceCurrency: referenceCurrency,
	}
}

// GetDivisionRate resolves the division rate for a currency pair on a given
// exchange date. Codes must already be upper-case. A pair that cannot be
// resolved through any path returns apperrors.ErrNotFound; transient
// upstream failures are logged and presented the same way, so the endpoint
// has exactly one failure mode.
func (s *RateService) GetDivisionRate(ctx context.Context, from, to string, date time.Time) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	nameKey := from + ":" + to
	reverseNameKey := to + ":" + from
	dateKey := date.Format(cacheDateLayout)

	if cached, ok := s.cache.HGet(ctx, nameKey, dateKey); ok {
		// A cached rate is trusted only if it parses to a positive value;
		// anything else is treated as a miss so a corrupt entry can never
		// become a zero divisor downstream.
		rate, err := decimal.NewFromString(cached)
		if err == nil && rate.IsPositive() {
			return &domain.ExchangeRate{
				FromCurrencyCode: from,
				ToCurrencyCode:   to,
				Rate:             rate,
				Date:             date,
				Source:           cacheSource,
			}, nil
		}
		logger.Warn("Discarding invalid cached rate",
			slog.String("key", nameKey),
			slog.String("date_key", dateKey),
			slog.String("value", cached),
		)
	}

	provider := s.snapshot
	if from == s.referenceCurrency || to == s.referenceCurrency {
		provider = s.reference
	}

	resolved, err := provider.FetchDivisionRate(ctx, from, to, dateKey, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		logger.Error("Rate provider failed",
			slog.String("from", from),
			slog.String("to", to),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: provider failure for %s", apperrors.ErrNotFound, nameKey)
	}

	reciprocal := resolved.Reciprocal()

	// Both directions are written together, fire-and-forget: issued
	// concurrently, awaited together, never rolled back if one side is
	// skipped by the cache.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.cache.HSet(ctx, nameKey, dateKey, resolved.Rate.String(), 0)
	}()
	go func() {
		defer wg.Done()
		s.cache.HSet(ctx, reverseNameKey, dateKey, reciprocal.String(), 0)
	}()
	wg.Wait()

	return resolved, nil
}

// Convert returns value / divisionRate(from, to, date), banker's-rounded to
// two decimal places.
func (s *RateService) Convert(ctx context.Context, from, to string, value float64, date time.Time) (float64, error) {
	resolved, err := s.GetDivisionRate(ctx, from, to, date)
	if err != nil {
		return 0, err
	}

	result, _ := decimal.NewFromFloat(value).Div(resolved.Rate).RoundBank(2).Float64()
	return result, nil
}
