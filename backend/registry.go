package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new executor instance.
// Factories are registered via Register() and called by NewExecutor().
type Factory func() Executor

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register registers an executor factory with the given name.
// This function is typically called from init() in backend packages,
// following the database/sql driver pattern:
//
//	func init() {
//	    backend.Register("software", func() backend.Executor {
//	        return New(800, 600)
//	    })
//	}
//
// Register panics if factory is nil or if the name is already taken, so
// duplicate registrations surface during program initialization.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("backend: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("backend: Register called twice for " + name)
	}
	factories[name] = factory
}

// Unregister removes an executor from the registry.
// This is primarily useful for testing. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// NewExecutor creates a new executor instance by name.
//
//	import _ "github.com/gogpu/rq/backend/software"
//
//	exec, err := backend.NewExecutor("software")
//
// The error for an unregistered name wraps ErrUnknownExecutor and hints at a
// forgotten import.
func NewExecutor(name string) (Executor, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownExecutor, name)
	}
	return factory(), nil
}

// MustExecutor is like NewExecutor but panics on error.
func MustExecutor(name string) Executor {
	e, err := NewExecutor(name)
	if err != nil {
		panic(err)
	}
	return e
}

// Executors returns the registered names, sorted alphabetically.
func Executors() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if an executor with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}
