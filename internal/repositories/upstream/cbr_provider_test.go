package upstream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smbrine/exchange-api-test-task/internal/apperrors"
	"github.com/smbrine/exchange-api-test-task/internal/repositories/upstream"
)

const cbrSnapshotBody = `{
	"Date": "2024-01-15T11:30:00+03:00",
	"Valute": {
		"USD": {"Nominal": 1, "Value": 90.5},
		"HUF": {"Nominal": 100, "Value": 25.17}
	}
}`

func TestCBRProvider_FetchDivisionRate(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	dateKey := "2024:01:15"

	t.Run("from reference currency uses target table entry", func(t *testing.T) {
		var archivePath atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			archivePath.Store(r.URL.Path)
			_, _ = w.Write([]byte(cbrSnapshotBody))
		}))
		defer srv.Close()

		cache := newFakeRateCache()
		p := upstream.NewCBRProvider(srv.URL, cache)

		rate, err := p.FetchDivisionRate(context.Background(), "RUB", "USD", dateKey, date)
		require.NoError(t, err)

		// RUB -> USD: Value / Nominal = 90.5
		assert.InDelta(t, 90.5, rate.Rate.InexactFloat64(), 1e-9)
		assert.Equal(t, "/archive/2024/01/15/daily_json.js", archivePath.Load())

		// Raw snapshot cached verbatim for the date.
		cached, ok := cache.HGet(context.Background(), "cb_rates", dateKey)
		require.True(t, ok)
		assert.Equal(t, cbrSnapshotBody, cached)
	})

	t.Run("to reference currency inverts using source table entry", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(cbrSnapshotBody))
		}))
		defer srv.Close()

		p := upstream.NewCBRProvider(srv.URL, newFakeRateCache())

		rate, err := p.FetchDivisionRate(context.Background(), "USD", "RUB", dateKey, date)
		require.NoError(t, err)

		// USD -> RUB: Nominal / Value = 1 / 90.5
		assert.InDelta(t, 1.0/90.5, rate.Rate.InexactFloat64(), 1e-9)
	})

	t.Run("nominal scaling respected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(cbrSnapshotBody))
		}))
		defer srv.Close()

		p := upstream.NewCBRProvider(srv.URL, newFakeRateCache())

		rate, err := p.FetchDivisionRate(context.Background(), "RUB", "HUF", dateKey, date)
		require.NoError(t, err)

		// 100 HUF cost 25.17 RUB, so one HUF is 0.2517.
		assert.InDelta(t, 0.2517, rate.Rate.InexactFloat64(), 1e-9)
	})

	t.Run("archive miss falls back to latest", func(t *testing.T) {
		var latestHit atomic.Bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/daily_json.js" {
				latestHit.Store(true)
				_, _ = w.Write([]byte(cbrSnapshotBody))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		p := upstream.NewCBRProvider(srv.URL, newFakeRateCache())

		rate, err := p.FetchDivisionRate(context.Background(), "RUB", "USD", dateKey, date)
		require.NoError(t, err)
		assert.InDelta(t, 90.5, rate.Rate.InexactFloat64(), 1e-9)
		assert.True(t, latestHit.Load())
	})

	t.Run("cached snapshot skips upstream", func(t *testing.T) {
		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			_, _ = w.Write([]byte(cbrSnapshotBody))
		}))
		defer srv.Close()

		cache := newFakeRateCache()
		p := upstream.NewCBRProvider(srv.URL, cache)

		_, err := p.FetchDivisionRate(context.Background(), "RUB", "USD", dateKey, date)
		require.NoError(t, err)
		_, err = p.FetchDivisionRate(context.Background(), "RUB", "HUF", dateKey, date)
		require.NoError(t, err)

		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("unknown currency is absent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(cbrSnapshotBody))
		}))
		defer srv.Close()

		p := upstream.NewCBRProvider(srv.URL, newFakeRateCache())

		_, err := p.FetchDivisionRate(context.Background(), "RUB", "ZZZ", dateKey, date)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("reference self conversion is absent", func(t *testing.T) {
		// The snapshot quotes foreign currencies only; RUB has no entry.
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(cbrSnapshotBody))
		}))
		defer srv.Close()

		p := upstream.NewCBRProvider(srv.URL, newFakeRateCache())

		_, err := p.FetchDivisionRate(context.Background(), "RUB", "RUB", dateKey, date)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("malformed snapshot is absent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>gateway error</html>"))
		}))
		defer srv.Close()

		p := upstream.NewCBRProvider(srv.URL, newFakeRateCache())

		_, err := p.FetchDivisionRate(context.Background(), "RUB", "USD", dateKey, date)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("double fetch failure is transient, not absent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		p := upstream.NewCBRProvider(srv.URL, newFakeRateCache())

		_, err := p.FetchDivisionRate(context.Background(), "RUB", "USD", dateKey, date)
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	})
}
