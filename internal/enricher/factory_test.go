package enricher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medscan/internal/enricher"
	"medscan/internal/port"
	"medscan/mocks"
)

func registerFake(name string) {
	enricher.RegisterProvider(name, func(cfg enricher.ProviderConfig) (port.ReportEnricher, error) {
		m := new(mocks.MockReportEnricher)
		m.On("Name").Return(cfg.Provider).Maybe()
		return m, nil
	})
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := enricher.New(enricher.ProviderConfig{Provider: "does-not-exist", APIKey: "k"})
	assert.ErrorContains(t, err, "unknown llm provider")
}

func TestNew_RequiresAPIKey(t *testing.T) {
	registerFake("fake-a")

	_, err := enricher.New(enricher.ProviderConfig{Provider: "fake-a"})
	assert.ErrorContains(t, err, "api key is required")
}

func TestNewChain(t *testing.T) {
	registerFake("fake-a")
	registerFake("fake-b")

	single, err := enricher.NewChain(enricher.ProviderConfig{Provider: "fake-a", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fake-a", single.Name())

	chain, err := enricher.NewChain(
		enricher.ProviderConfig{Provider: "fake-a", APIKey: "k"},
		&enricher.ProviderConfig{Provider: "fake-b", APIKey: "k"},
	)
	require.NoError(t, err)
	assert.IsType(t, &enricher.FallbackEnricher{}, chain)
	assert.Equal(t, "fake-a,fake-b", chain.Name())

	assert.Contains(t, enricher.Registered(), "fake-a")
}
