package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smbrine/exchange-api-test-task/internal/apperrors"
	"github.com/smbrine/exchange-api-test-task/internal/core/domain"
	portsrepo "github.com/smbrine/exchange-api-test-task/internal/core/ports/repositories"
	"github.com/smbrine/exchange-api-test-task/internal/middleware"
)

const (
	cbrRatesTable    = "cb_rates"
	cbrArchiveLayout = "2006/01/02"
	cbrSource        = "cbr"
)

// cbrSnapshot is the shape of the CBR daily_json.js feed.
type cbrSnapshot struct {
	Date   string               `json:"Date"`
	Valute map[string]cbrValute `json:"Valute"`
}

type cbrValute struct {
	Nominal int64           `json:"Nominal"`
	Value   decimal.Decimal `json:"Value"`
}

// CBRProvider resolves division rates for pairs involving the reference
// currency against the Central Bank of Russia daily snapshot. The full
// snapshot is cached verbatim per exchange date; subsequent lookups for any
// pair on that date never hit the upstream again.
type CBRProvider struct {
	baseURL    string
	cache      portsrepo.RateCacheFacade
	httpClient *http.Client
}

// NewCBRProvider creates a CBR snapshot provider. The HTTP client carries no
// timeout of its own; cancellation comes from the request context.
func NewCBRProvider(baseURL string, rateCache portsrepo.RateCacheFacade) *CBRProvider {
	return &CBRProvider{
		baseURL:    baseURL,
		cache:      rateCache,
		httpClient: &http.Client{},
	}
}

// FetchDivisionRate implements the rate provider port.
func (p *CBRProvider) FetchDivisionRate(ctx context.Context, from, to, dateKey string, date time.Time) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	raw, ok := p.cache.HGet(ctx, cbrRatesTable, dateKey)
	if !ok {
		body, err := p.fetchSnapshot(ctx, date)
		if err != nil {
			return nil, err
		}
		raw = body
		p.cache.HSet(ctx, cbrRatesTable, dateKey, raw, 0)
	}

	var snapshot cbrSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		logger.Warn("Malformed CBR snapshot", slog.String("date_key", dateKey), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: malformed CBR snapshot for %s", apperrors.ErrNotFound, dateKey)
	}

	// The snapshot quotes every currency against the reference currency:
	// Value reference units buy Nominal units of the listed currency.
	var rate decimal.Decimal
	if from == domain.ReferenceCurrency {
		v, ok := snapshot.Valute[to]
		if !ok || v.Nominal == 0 || v.Value.IsZero() {
			return nil, fmt.Errorf("%w: currency %q not in CBR snapshot", apperrors.ErrNotFound, to)
		}
		rate = v.Value.Div(decimal.NewFromInt(v.Nominal))
	} else {
		v, ok := snapshot.Valute[from]
		if !ok || v.Nominal == 0 || v.Value.IsZero() {
			return nil, fmt.Errorf("%w: currency %q not in CBR snapshot", apperrors.ErrNotFound, from)
		}
		rate = decimal.NewFromInt(v.Nominal).Div(v.Value)
	}

	return &domain.ExchangeRate{
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             rate,
		Date:             date,
		Source:           cbrSource,
	}, nil
}

// fetchSnapshot retrieves the raw daily snapshot, falling back from the
// dated archive to the latest feed when the archive has no entry (weekends,
// future dates).
func (p *CBRProvider) fetchSnapshot(ctx context.Context, date time.Time) (string, error) {
	archiveURL := fmt.Sprintf("%s/archive/%s/daily_json.js", p.baseURL, date.Format(cbrArchiveLayout))

	body, status, err := p.get(ctx, archiveURL)
	if err != nil {
		return "", fmt.Errorf("cbr: archive fetch: %w", err)
	}
	if status >= 200 && status < 300 {
		return body, nil
	}

	latestURL := fmt.Sprintf("%s/daily_json.js", p.baseURL)
	body, status, err = p.get(ctx, latestURL)
	if err != nil {
		return "", fmt.Errorf("cbr: latest fetch: %w", err)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("cbr: latest snapshot returned status %d", status)
	}
	return body, nil
}

func (p *CBRProvider) get(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}

	res, err := p.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", res.StatusCode, err
	}
	return string(body), res.StatusCode, nil
}
