package providers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/config"
)

// Factory builds an adapter from configuration.
type Factory func(cfg *config.Config) (Adapter, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a factory under name. Called from adapter init().
func Register(name string, f Factory) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic("providers: empty name in Register")
	}
	if f == nil {
		panic("providers: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("providers: duplicate registration for " + n)
	}
	registry[n] = f
}

// FactoryByName looks up a registered factory.
func FactoryByName(name string) (Factory, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[n]
	return f, ok
}

// AvailableNames lists registered adapter names, sorted.
func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BuildEnabled constructs the adapters named in cfg.Providers.Enabled,
// ordered by descending priority so quota-aware sync attempts the most
// trusted source first.
func BuildEnabled(cfg *config.Config) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(cfg.Providers.Enabled))
	for _, name := range cfg.Providers.Enabled {
		f, ok := FactoryByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown provider %q (available: %v)", name, AvailableNames())
		}
		a, err := f(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build provider %q: %w", name, err)
		}
		adapters = append(adapters, a)
	}
	sort.SliceStable(adapters, func(i, j int) bool {
		return adapters[i].Priority() > adapters[j].Priority()
	})
	return adapters, nil
}
