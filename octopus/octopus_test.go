package octopus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angas/agilewatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageBody = `{
	"count": 3,
	"next": "https://api.octopus.energy/v1/products/AGILE-24-04-03/electricity-tariffs/E-1R-AGILE-24-04-03-D/standard-unit-rates/?page=2&page_size=96",
	"previous": null,
	"results": [
		{"value_exc_vat": 20.1, "value_inc_vat": 21.105, "valid_from": "2025-01-01T11:00:00Z", "valid_to": "2025-01-01T11:30:00Z", "payment_method": null},
		{"value_exc_vat": -1.5, "value_inc_vat": -1.575, "valid_from": "2025-01-01T10:30:00Z", "valid_to": "2025-01-01T11:00:00Z", "payment_method": null},
		{"value_exc_vat": 15, "value_inc_vat": 15.75, "valid_from": "2025-01-01T10:00:00Z", "valid_to": "2025-01-01T10:30:00Z", "payment_method": null}
	]
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Octopus {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseUrl:     srv.URL + "/v1",
		ProductCode: "AGILE-24-04-03",
		TariffCode:  "E-1R-AGILE-24-04-03-D",
		PageSize:    96,
		Timeout:     5 * time.Second,
	}, nil)
}

func TestGetPrices(t *testing.T) {
	requests := 0
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/v1/products/AGILE-24-04-03/electricity-tariffs/E-1R-AGILE-24-04-03-D/standard-unit-rates/", r.URL.Path)
		assert.Equal(t, "96", r.URL.Query().Get("page_size"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pageBody))
	})

	series, err := provider.GetPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, 1, requests, "pagination must not be followed")

	// Order is left to the repository, the provider keeps the upstream order.
	assert.Equal(t, "21.105", series[0].ValueIncVat.String())
	assert.Equal(t, "-1.575", series[1].ValueIncVat.String())
	assert.Equal(t, "-1.5", series[1].ValueExcVat.String())
	assert.True(t, series[2].ValidFrom.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, series[2].ValidTo.Equal(time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)))
}

func TestGetPricesSkipsMalformedRecords(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 5, "next": null, "previous": null, "results": [
			{"value_inc_vat": 10, "valid_from": "2025-01-01T10:00:00Z", "valid_to": "2025-01-01T10:30:00Z"},
			{"value_inc_vat": 11, "valid_from": "2025-01-01T10:30:00Z"},
			{"valid_from": "2025-01-01T11:00:00Z", "valid_to": "2025-01-01T11:30:00Z"},
			{"value_inc_vat": 12, "valid_from": "yesterday", "valid_to": "2025-01-01T12:00:00Z"},
			{"value_inc_vat": 13, "valid_from": "2025-01-01T13:00:00Z", "valid_to": "2025-01-01T12:30:00Z"}
		]}`))
	})

	series, err := provider.GetPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "10", series[0].ValueIncVat.String())
	assert.True(t, series[0].ValueExcVat.IsZero())
}

func TestGetPricesErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    types.FetchErrorKind
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			kind: types.FetchErrorStatus,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			kind: types.FetchErrorStatus,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"results": [`))
			},
			kind: types.FetchErrorDecode,
		},
		{
			name: "missing results",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"detail": "No product found"}`))
			},
			kind: types.FetchErrorDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, tt.handler)
			series, err := provider.GetPrices(context.Background())
			require.Error(t, err)
			assert.Nil(t, series)

			var fe *types.FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Equal(t, ProviderName, fe.Provider)
		})
	}
}

func TestGetPricesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	provider := New(Config{BaseUrl: srv.URL, ProductCode: "P", TariffCode: "T", PageSize: 1, Timeout: time.Second}, nil)
	_, err := provider.GetPrices(context.Background())

	var fe *types.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, types.FetchErrorNetwork, fe.Kind)
}
