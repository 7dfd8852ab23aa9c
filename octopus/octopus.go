package octopus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/angas/agilewatch/clock"
	"github.com/angas/agilewatch/types"
	"github.com/shopspring/decimal"
)

const ProviderName = "octopus-rest"

type Config struct {
	BaseUrl     string
	ProductCode string
	TariffCode  string
	PageSize    int
	Timeout     time.Duration
}

// Octopus reads standard unit rates straight from the public REST API.
type Octopus struct {
	cnfg   Config
	client *http.Client
	logger *slog.Logger
}

func New(cnfg Config, rt http.RoundTripper) *Octopus {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &Octopus{
		cnfg:   cnfg,
		client: &http.Client{Timeout: cnfg.Timeout, Transport: rt},
		logger: slog.Default().With("module", "octopus"),
	}
}

func (o *Octopus) Name() string {
	return ProviderName
}

func (o *Octopus) unitRatesUrl() (string, error) {
	u, err := url.Parse(o.cnfg.BaseUrl)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	u = u.JoinPath("products", o.cnfg.ProductCode, "electricity-tariffs", o.cnfg.TariffCode, "standard-unit-rates/")
	q := u.Query()
	q.Set("page_size", strconv.Itoa(o.cnfg.PageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (o *Octopus) GetPrices(ctx context.Context) (types.PriceSeries, error) {
	endpoint, err := o.unitRatesUrl()
	if err != nil {
		return nil, types.NewFetchError(ProviderName, types.FetchErrorNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, types.NewFetchError(ProviderName, types.FetchErrorNetwork, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, types.NewFetchError(ProviderName, types.FetchErrorNetwork, fmt.Errorf("failed to fetch prices: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, types.NewFetchError(ProviderName, types.FetchErrorStatus, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	var body unitRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, types.NewFetchError(ProviderName, types.FetchErrorDecode, fmt.Errorf("failed to decode response: %w", err))
	}
	if body.Results == nil {
		return nil, types.NewFetchError(ProviderName, types.FetchErrorDecode, errors.New("response has no results"))
	}

	series := make(types.PriceSeries, 0, len(body.Results))
	skipped := 0
	for _, raw := range body.Results {
		slot, ok := raw.toPriceSlot()
		if !ok {
			skipped++
			continue
		}
		series = append(series, slot)
	}

	if skipped > 0 {
		o.logger.Warn("skipped malformed unit rates",
			slog.Int("skipped", skipped),
			slog.Int("received", len(body.Results)))
	}

	return series, nil
}

// toPriceSlot converts a record, rejecting it when a window bound or the
// displayed price is missing or the window is empty.
func (r rawRate) toPriceSlot() (types.PriceSlot, bool) {
	if r.ValidFrom == nil || r.ValidTo == nil || r.ValueIncVat == nil {
		return types.PriceSlot{}, false
	}
	slot := types.PriceSlot{
		ValidFrom:   clock.FromIso(*r.ValidFrom),
		ValidTo:     clock.FromIso(*r.ValidTo),
		ValueIncVat: *r.ValueIncVat,
		ValueExcVat: decimal.Zero,
	}
	if r.ValueExcVat != nil {
		slot.ValueExcVat = *r.ValueExcVat
	}
	return slot, slot.IsValid()
}
