package integration

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bookingplatform/backend/internal/domain/integration"
)

// AdapterRegistry maps provider names to adapters. It is built once and is
// read-only afterwards, so concurrent lookups need no locking.
type AdapterRegistry struct {
	byName  map[string]integration.ProviderAdapter
	ordered []integration.ProviderAdapter
	names   []string
}

var _ integration.AdapterRegistry = (*AdapterRegistry)(nil)

// NewAdapterRegistry indexes adapters by their normalized source name.
// Construction fails on a nil set, a nil logger, a nil adapter, a blank
// name or two adapters claiming the same name.
func NewAdapterRegistry(adapters []integration.ProviderAdapter, logger *zap.Logger) (*AdapterRegistry, error) {
	if adapters == nil {
		return nil, integration.ErrNilAdapterSet
	}
	if logger == nil {
		return nil, integration.ErrLoggerRequired
	}

	r := &AdapterRegistry{
		byName:  make(map[string]integration.ProviderAdapter, len(adapters)),
		ordered: make([]integration.ProviderAdapter, 0, len(adapters)),
		names:   make([]string, 0, len(adapters)),
	}
	for i, a := range adapters {
		if a == nil {
			return nil, fmt.Errorf("%w: position %d", integration.ErrNilAdapter, i)
		}
		name := integration.NormalizeSourceName(a.SourceName())
		if name == "" {
			return nil, fmt.Errorf("%w: position %d", integration.ErrEmptySourceName, i)
		}
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("%w: %q", integration.ErrDuplicateAdapter, name)
		}
		r.byName[name] = a
		r.ordered = append(r.ordered, a)
		r.names = append(r.names, name)
	}

	logger.Info("Adapter registry initialized",
		zap.Int("adapter_count", len(r.names)),
		zap.Strings("providers", r.names),
	)
	return r, nil
}

// Resolve returns the adapter registered under name, ignoring case and
// surrounding whitespace.
func (r *AdapterRegistry) Resolve(name string) (integration.ProviderAdapter, error) {
	a, ok := r.byName[integration.NormalizeSourceName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", integration.ErrAdapterNotFound, name)
	}
	return a, nil
}

// List returns the adapters in registration order
func (r *AdapterRegistry) List() []integration.ProviderAdapter {
	out := make([]integration.ProviderAdapter, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns the normalized provider names in registration order
func (r *AdapterRegistry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
