package octopussdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/angas/agilewatch/types"
	"github.com/go-openapi/runtime"
	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
	octopus "github.com/mgazza/go-octopus-energy/client"
	"github.com/mgazza/go-octopus-energy/client/products"
	"github.com/shopspring/decimal"
)

const ProviderName = "octopus-sdk"

type Config struct {
	BaseUrl     string
	ProductCode string
	TariffCode  string
	PageSize    int
	Timeout     time.Duration
}

// OctopusSDK reads the same unit rates as the REST provider through the generated
// Octopus Energy client. It is used as the secondary provider.
type OctopusSDK struct {
	cnfg   Config
	client *octopus.OctopusEnergyRESTAPI
	logger *slog.Logger
}

func New(cnfg Config, rt http.RoundTripper) (*OctopusSDK, error) {
	tc := octopus.DefaultTransportConfig()
	host, basePath, schemes := tc.Host, tc.BasePath, tc.Schemes
	if cnfg.BaseUrl != "" {
		u, err := url.Parse(cnfg.BaseUrl)
		if err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
		host, basePath, schemes = u.Host, u.Path, []string{u.Scheme}
	}

	if rt == nil {
		rt = http.DefaultTransport
	}
	transport := httptransport.New(host, basePath, schemes)
	transport.Transport = bodyCapture{next: rt}

	return &OctopusSDK{
		cnfg:   cnfg,
		client: octopus.New(transport, strfmt.Default),
		logger: slog.Default().With("module", "octopussdk"),
	}, nil
}

func (o *OctopusSDK) Name() string {
	return ProviderName
}

// GetPrices fetches the first page only, the newest slots come first upstream.
func (o *OctopusSDK) GetPrices(ctx context.Context) (types.PriceSeries, error) {
	pageSize := int64(o.cnfg.PageSize)
	raw := &capturedBody{}
	params := products.NewListElectricityTariffStandardUnitRatesParams().
		WithContext(context.WithValue(ctx, capturedBodyKey{}, raw)).
		WithProductCode(o.cnfg.ProductCode).
		WithTariffCode(o.cnfg.TariffCode).
		WithPageSize(&pageSize)
	if o.cnfg.Timeout > 0 {
		params.WithTimeout(o.cnfg.Timeout)
	}

	response, err := o.client.Products.ListElectricityTariffStandardUnitRates(params, nil)
	if err != nil {
		return nil, types.NewFetchError(ProviderName, classify(err), fmt.Errorf("failed to fetch unit rates: %w", err))
	}
	if response == nil || response.Payload == nil {
		return nil, types.NewFetchError(ProviderName, types.FetchErrorDecode, errors.New("empty response"))
	}

	priced, err := pricedResults(raw.data, len(response.Payload.Results))
	if err != nil {
		return nil, types.NewFetchError(ProviderName, types.FetchErrorDecode, err)
	}

	series := make(types.PriceSeries, 0, len(response.Payload.Results))
	skipped := 0
	for i, rate := range response.Payload.Results {
		if !priced[i] || rate.ValidFrom == nil || rate.ValidTo == nil {
			skipped++
			continue
		}
		slot := types.PriceSlot{
			ValidFrom:   time.Time(*rate.ValidFrom),
			ValidTo:     time.Time(*rate.ValidTo),
			ValueExcVat: decimal.NewFromFloat(rate.ValueExcVat),
			ValueIncVat: decimal.NewFromFloat(rate.ValueIncVat),
		}
		if !slot.IsValid() {
			skipped++
			continue
		}
		series = append(series, slot)
	}

	if skipped > 0 {
		o.logger.Warn("skipped malformed unit rates",
			slog.Int("skipped", skipped),
			slog.Int("received", len(response.Payload.Results)))
	}

	return series, nil
}

// pricedResults reports, per result, whether value_inc_vat was present in the
// body. The generated model decodes a missing price as 0 and a null entry as nil.
func pricedResults(body []byte, count int) ([]bool, error) {
	var page struct {
		Results []map[string]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to inspect unit rates: %w", err)
	}
	if len(page.Results) != count {
		return nil, fmt.Errorf("unit rate count mismatch: decoded %d, body has %d", count, len(page.Results))
	}

	priced := make([]bool, count)
	for i, result := range page.Results {
		value, ok := result["value_inc_vat"]
		priced[i] = ok && string(bytes.TrimSpace(value)) != "null"
	}
	return priced, nil
}

type capturedBodyKey struct{}

type capturedBody struct {
	data []byte
}

// bodyCapture keeps a copy of the response body for requests whose context
// carries a *capturedBody.
type bodyCapture struct {
	next http.RoundTripper
}

func (b bodyCapture) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := b.next.RoundTrip(req)
	if err != nil || resp.Body == nil {
		return resp, err
	}
	dst, ok := req.Context().Value(capturedBodyKey{}).(*capturedBody)
	if !ok {
		return resp, nil
	}

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	dst.data = data
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

func classify(err error) types.FetchErrorKind {
	var apiErr *runtime.APIError
	if errors.As(err, &apiErr) {
		return types.FetchErrorStatus
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return types.FetchErrorNetwork
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return types.FetchErrorNetwork
	}
	return types.FetchErrorDecode
}
