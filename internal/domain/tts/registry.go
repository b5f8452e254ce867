package tts

import (
	"sort"
	"sync"

	"voicelab-server-go/internal/platform/config"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
)

// Factory builds a Provider from its configuration block.
type Factory func(cfg config.TTSConfig, logger *logging.Logger) (Provider, error)

// FactoryRegistry maps provider type names to constructors. Adapters register
// themselves in init; the bootstrap layer instantiates by config type.
type FactoryRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewFactoryRegistry() *FactoryRegistry {
	return &FactoryRegistry{factories: make(map[string]Factory)}
}

func (r *FactoryRegistry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if factory == nil {
		return platformerrors.Newf(platformerrors.KindPlatform, "tts.registry",
			"factory for %q is nil", name)
	}
	if _, exists := r.factories[name]; exists {
		return platformerrors.Newf(platformerrors.KindPlatform, "tts.registry",
			"factory %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

func (r *FactoryRegistry) Create(name string, cfg config.TTSConfig, logger *logging.Logger) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, platformerrors.Newf(platformerrors.KindPlatform, "tts.registry",
			"no factory registered for provider type %q", name)
	}
	return factory(cfg, logger)
}

func (r *FactoryRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var defaultFactories = NewFactoryRegistry()

// RegisterFactory adds a factory to the process-wide registry. Panics on
// duplicate registration since that is always a programming error.
func RegisterFactory(name string, factory Factory) {
	if err := defaultFactories.Register(name, factory); err != nil {
		panic(err)
	}
}

// CreateProvider instantiates a provider from the process-wide registry.
func CreateProvider(name string, cfg config.TTSConfig, logger *logging.Logger) (Provider, error) {
	return defaultFactories.Create(name, cfg, logger)
}

// RegisteredTypes lists the provider types known to the process-wide registry.
func RegisteredTypes() []string {
	return defaultFactories.Types()
}
