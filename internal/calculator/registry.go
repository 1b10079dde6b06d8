package calculator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/observability"
)

// Factory constructs a backend from its configuration.
type Factory func(cfg *config.CalculatorConfig, logger observability.Logger) (Calculator, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend factory available under the given name.
// Registering a duplicate name panics; this is a programming error caught
// at startup, not a runtime condition.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("calculator: backend %q registered twice", name))
	}
	registry[name] = factory
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs and initializes the backend selected by the
// configuration. An unknown backend name or a failed Init is fatal: the
// error propagates and the caller is expected to abort startup rather
// than degrade silently.
func New(ctx context.Context, cfg *config.CalculatorConfig, logger observability.Logger) (Calculator, error) {
	registryMu.RLock()
	factory, ok := registry[cfg.Backend]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("calculator: unknown backend %q (registered: %v)", cfg.Backend, Backends())
	}

	calc, err := factory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("calculator: building backend %q: %w", cfg.Backend, err)
	}

	if err := calc.Init(ctx); err != nil {
		return nil, fmt.Errorf("calculator: initializing backend %q: %w", cfg.Backend, err)
	}

	return calc, nil
}
