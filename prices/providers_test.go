package prices

import (
	"testing"
	"time"

	"github.com/angas/agilewatch/config"
	"github.com/angas/agilewatch/octopus"
	"github.com/angas/agilewatch/octopussdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tariffConfig(providers ...string) config.AppConfigTariff {
	return config.AppConfigTariff{
		BaseUrl:     "https://api.octopus.energy/v1",
		ProductCode: "AGILE-24-04-03",
		TariffCode:  "E-1R-AGILE-24-04-03-D",
		PageSize:    96,
		Timeout:     10 * time.Second,
		Providers:   providers,
	}
}

func TestNewProviders(t *testing.T) {
	providers, err := NewProviders(tariffConfig("rest", " SDK "))
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, octopus.ProviderName, providers[0].Name())
	assert.Equal(t, octopussdk.ProviderName, providers[1].Name())

	providers, err = NewProviders(tariffConfig("sdk"))
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, octopussdk.ProviderName, providers[0].Name())
}

func TestNewProvidersErrors(t *testing.T) {
	_, err := NewProviders(tariffConfig("nordpool"))
	assert.ErrorContains(t, err, "nordpool")

	_, err = NewProviders(tariffConfig())
	assert.ErrorIs(t, err, ErrNoProviders)
}
