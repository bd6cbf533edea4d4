package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new backend instance.
type Factory func() (Backend, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	priority = []string{NameWGPU, NameCPU}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names in priority order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		return rank(names[i]) < rank(names[j]) ||
			(rank(names[i]) == rank(names[j]) && names[i] < names[j])
	})
	return names
}

func rank(name string) int {
	for i, p := range priority {
		if p == name {
			return i
		}
	}
	return len(priority)
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get creates a backend instance by name.
func Get(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q not registered", ErrBackendNotAvailable, name)
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBackendNotAvailable, name, err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s returned no backend", ErrBackendNotAvailable, name)
	}
	return b, nil
}
