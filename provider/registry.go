package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ProviderRegistry manages payment method implementations by system name
type ProviderRegistry struct {
	providers map[string]ProviderFactory
	mu        sync.RWMutex
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register adds a payment method factory to the registry
func (r *ProviderRegistry) Register(systemName string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[systemName] = factory
}

// Get retrieves a payment method factory by system name
func (r *ProviderRegistry) Get(systemName string) (ProviderFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.providers[systemName]
	if !exists {
		return nil, fmt.Errorf("payment method '%s' is not registered", systemName)
	}

	return factory, nil
}

// CreateProvider builds a payment method from the settings in store
func (r *ProviderRegistry) CreateProvider(ctx context.Context, systemName string, settings SettingStore) (PaymentMethod, error) {
	factory, err := r.Get(systemName)
	if err != nil {
		return nil, err
	}

	return factory(ctx, settings)
}

// GetAvailableProviders returns the registered system names in sorted order
func (r *ProviderRegistry) GetAvailableProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// DefaultRegistry is the global default provider registry
var DefaultRegistry = NewProviderRegistry()

// Register registers a payment method with the default registry
func Register(systemName string, factory ProviderFactory) {
	DefaultRegistry.Register(systemName, factory)
}

// Get retrieves a factory from the default registry
func Get(systemName string) (ProviderFactory, error) {
	return DefaultRegistry.Get(systemName)
}

// CreateProvider creates a payment method from the default registry
func CreateProvider(ctx context.Context, systemName string, settings SettingStore) (PaymentMethod, error) {
	return DefaultRegistry.CreateProvider(ctx, systemName, settings)
}

// GetAvailableProviders lists the default registry's system names
func GetAvailableProviders() []string {
	return DefaultRegistry.GetAvailableProviders()
}
