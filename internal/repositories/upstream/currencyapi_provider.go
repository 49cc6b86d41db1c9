package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smbrine/exchange-api-test-task/internal/apperrors"
	"github.com/smbrine/exchange-api-test-task/internal/core/domain"
	portsrepo "github.com/smbrine/exchange-api-test-task/internal/core/ports/repositories"
	"github.com/smbrine/exchange-api-test-task/internal/middleware"
)

const (
	apiRatesTablePrefix = "api_rates:"
	currencyAPISource   = "currency-api"
)

// CurrencyAPIProvider resolves division rates for non-reference pairs from
// the fawazahmed0 currency-api CDN. The feed publishes, per base currency
// and date, a table of reverse rates keyed by lower-case currency code; the
// division rate is the reciprocal of the "to" entry. The per-base sub-table
// is cached serialized under ("api_rates:{FROM}", dateKey).
type CurrencyAPIProvider struct {
	baseURL    string
	cache      portsrepo.RateCacheFacade
	httpClient *http.Client
}

// NewCurrencyAPIProvider creates a currency-api snapshot provider.
func NewCurrencyAPIProvider(baseURL string, rateCache portsrepo.RateCacheFacade) *CurrencyAPIProvider {
	return &CurrencyAPIProvider{
		baseURL:    baseURL,
		cache:      rateCache,
		httpClient: &http.Client{},
	}
}

// FetchDivisionRate implements the rate provider port.
func (p *CurrencyAPIProvider) FetchDivisionRate(ctx context.Context, from, to, dateKey string, date time.Time) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	table := apiRatesTablePrefix + from

	if raw, ok := p.cache.HGet(ctx, table, dateKey); ok {
		var rates map[string]decimal.Decimal
		if err := json.Unmarshal([]byte(raw), &rates); err == nil {
			return p.rateFromTable(from, to, date, rates)
		}
		logger.Warn("Discarding unparseable cached rate table", slog.String("table", table), slog.String("date_key", dateKey))
	}

	body, err := p.fetchSnapshot(ctx, from, date)
	if err != nil {
		return nil, err
	}

	// The CDN answers misses (unknown currency, unpublished date) with a
	// non-JSON error page; both parse failures below mean "absent".
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: no currency-api snapshot for %s on %s", apperrors.ErrNotFound, from, dateKey)
	}

	sub, ok := payload[strings.ToLower(from)]
	if !ok {
		return nil, fmt.Errorf("%w: currency %q not in currency-api response", apperrors.ErrNotFound, from)
	}

	var rates map[string]decimal.Decimal
	if err := json.Unmarshal(sub, &rates); err != nil {
		return nil, fmt.Errorf("%w: malformed currency-api table for %s", apperrors.ErrNotFound, from)
	}

	if serialized, err := json.Marshal(rates); err == nil {
		p.cache.HSet(ctx, table, dateKey, string(serialized), 0)
	}

	return p.rateFromTable(from, to, date, rates)
}

func (p *CurrencyAPIProvider) rateFromTable(from, to string, date time.Time, rates map[string]decimal.Decimal) (*domain.ExchangeRate, error) {
	reverse, ok := rates[strings.ToLower(to)]
	if !ok || reverse.IsZero() {
		return nil, fmt.Errorf("%w: currency %q not in %s rate table", apperrors.ErrNotFound, to, from)
	}

	return &domain.ExchangeRate{
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             decimal.NewFromInt(1).Div(reverse),
		Date:             date,
		Source:           currencyAPISource,
	}, nil
}

// fetchSnapshot retrieves the per-base-currency table for one date. The CDN
// path is versioned by "YYYY.MM.D" with an unpadded day.
func (p *CurrencyAPIProvider) fetchSnapshot(ctx context.Context, from string, date time.Time) ([]byte, error) {
	url := fmt.Sprintf("%s/npm/@fawazahmed0/currency-api@%s.%d/v1/currencies/%s.json",
		p.baseURL, date.Format("2006.01"), date.Day(), strings.ToLower(from))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("currency-api: %w", err)
	}

	res, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("currency-api: %w", err)
	}
	defer res.Body.Close()

	// Status is deliberately not checked: the CDN's 404 body is not JSON
	// and is mapped to an absent result by the caller.
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("currency-api: %w", err)
	}
	return body, nil
}
