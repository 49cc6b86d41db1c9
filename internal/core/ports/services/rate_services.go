package services

import (
	"context"
	"time"

	"github.com/smbrine/exchange-api-test-task/internal/core/domain"
)

// RateReaderSvc defines read operations for division rates.
type RateReaderSvc interface {
	// GetDivisionRate resolves the division rate for a currency pair on a
	// given exchange date, consulting the cache before any provider.
	// Currency codes must already be upper-case.
	GetDivisionRate(ctx context.Context, from, to string, date time.Time) (*domain.ExchangeRate, error)
}

// ConversionSvc defines the value conversion operation.
type ConversionSvc interface {
	// Convert returns value / divisionRate(from, to, date), banker's-rounded
	// to two decimal places.
	Convert(ctx context.Context, from, to string, value float64, date time.Time) (float64, error)
}

// RateSvcFacade combines all rate-related service interfaces.
type RateSvcFacade interface {
	RateReaderSvc
	ConversionSvc
}

// ServiceContainer bundles the service interfaces handed to the HTTP layer.
type ServiceContainer struct {
	Rate RateSvcFacade
}
