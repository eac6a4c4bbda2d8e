package model

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownAlias is returned by Resolve for aliases that were never
// registered.
var ErrUnknownAlias = errors.New("unknown model alias")

// Registry maps model aliases (the names agent configurations reference, e.g.
// "claude-sonnet") to providers. Resolution is an explicit table lookup: an
// alias resolves if and only if it was registered, never through substring
// inspection of the alias text. The full alias set is enumerable via Aliases.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register binds an alias to a provider. Registering an existing alias
// replaces the previous binding.
func (r *Registry) Register(alias string, p Provider) error {
	if alias == "" {
		return fmt.Errorf("model alias must not be empty")
	}
	if p == nil {
		return fmt.Errorf("provider for alias %q must not be nil", alias)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[alias] = p

	return nil
}

// Resolve returns the provider bound to alias, or ErrUnknownAlias.
func (r *Registry) Resolve(alias string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlias, alias)
	}
	return p, nil
}

// Aliases returns the registered aliases in sorted order.
func (r *Registry) Aliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.providers))
	for alias := range r.providers {
		out = append(out, alias)
	}
	sort.Strings(out)

	return out
}
