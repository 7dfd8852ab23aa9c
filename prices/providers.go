package prices

import (
	"fmt"
	"strings"

	"github.com/angas/agilewatch/config"
	"github.com/angas/agilewatch/octopus"
	"github.com/angas/agilewatch/octopussdk"
	"github.com/angas/agilewatch/types"
)

// NewProviders builds the providers named in tariff.providers, in that order.
func NewProviders(cnfg config.AppConfigTariff) ([]types.PriceProvider, error) {
	providers := make([]types.PriceProvider, 0, len(cnfg.Providers))
	for _, name := range cnfg.Providers {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "rest":
			providers = append(providers, octopus.New(octopus.Config{
				BaseUrl:     cnfg.BaseUrl,
				ProductCode: cnfg.ProductCode,
				TariffCode:  cnfg.TariffCode,
				PageSize:    cnfg.PageSize,
				Timeout:     cnfg.Timeout,
			}, nil))
		case "sdk":
			p, err := octopussdk.New(octopussdk.Config{
				BaseUrl:     cnfg.BaseUrl,
				ProductCode: cnfg.ProductCode,
				TariffCode:  cnfg.TariffCode,
				PageSize:    cnfg.PageSize,
				Timeout:     cnfg.Timeout,
			}, nil)
			if err != nil {
				return nil, fmt.Errorf("sdk provider: %w", err)
			}
			providers = append(providers, p)
		default:
			return nil, fmt.Errorf("unknown price provider %q", name)
		}
	}
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	return providers, nil
}
