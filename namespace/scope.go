// Package namespace implements the create/use/provide pattern as an
// explicit registry-of-registries keyed by a namespace string. A Scope is
// passed by constructor injection; there is no ambient tree-scoped lookup
// and no package-level global state.
package namespace

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Scope errors.
var (
	ErrNotProvided = errors.New("namespace not provided")
)

// Scope holds provided containers keyed by namespace.
type Scope struct {
	mu       sync.RWMutex
	provided map[string]any
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{provided: make(map[string]any)}
}

// Provide stores a container under the namespace, replacing any previous
// provider for the same key.
func (s *Scope) Provide(ns string, container any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provided[ns] = container
}

// Use returns the container provided under the namespace.
// Returns ErrNotProvided when nothing has been provided.
func (s *Scope) Use(ns string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	container, ok := s.provided[ns]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotProvided, ns)
	}
	return container, nil
}

// MustUse returns the container provided under the namespace, panicking
// when absent. Reserved for wiring code where a missing provider is a
// programming error.
func (s *Scope) MustUse(ns string) any {
	container, err := s.Use(ns)
	if err != nil {
		panic(err)
	}
	return container
}

// Release removes the namespace's provider.
func (s *Scope) Release(ns string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.provided, ns)
}

// Namespaces returns all provided namespaces, sorted alphabetically.
func (s *Scope) Namespaces() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.provided))
	for ns := range s.provided {
		keys = append(keys, ns)
	}
	sort.Strings(keys)
	return keys
}

// Use resolves a typed container from the scope. It fails when the
// namespace is missing or holds a container of a different type.
func Use[T any](s *Scope, ns string) (T, error) {
	var zero T
	container, err := s.Use(ns)
	if err != nil {
		return zero, err
	}
	typed, ok := container.(T)
	if !ok {
		return zero, fmt.Errorf("namespace %q holds %T, not %T", ns, container, zero)
	}
	return typed, nil
}
