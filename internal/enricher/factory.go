package enricher

import (
	"fmt"
	"sort"
	"sync"

	"medscan/internal/port"
)

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	Provider    string
	APIKey      string
	Model       string
	Endpoint    string
	TimeoutSecs int
}

// ProviderFactory creates a ReportEnricher from a provider config.
type ProviderFactory func(cfg ProviderConfig) (port.ReportEnricher, error)

var (
	mu        sync.RWMutex
	providers = map[string]ProviderFactory{}
)

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// Registered lists the registered provider names in sorted order.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a ReportEnricher using the registered factory for cfg.Provider.
func New(cfg ProviderConfig) (port.ReportEnricher, error) {
	mu.RLock()
	factory, ok := providers[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm provider %s: api key is required", cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds the primary enricher and, when a secondary config is
// given, wraps both in a FallbackEnricher.
func NewChain(primary ProviderConfig, secondary *ProviderConfig) (port.ReportEnricher, error) {
	first, err := New(primary)
	if err != nil {
		return nil, err
	}
	if secondary == nil || secondary.Provider == "" {
		return first, nil
	}
	second, err := New(*secondary)
	if err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}
	return NewFallbackEnricher(first, second), nil
}
