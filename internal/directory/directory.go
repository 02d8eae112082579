// Package directory defines the identity provider capability: resolving a
// person identifier to a canonical identity record, and free-text search over
// a people directory. Concrete backends (LDAP, static) register factories by
// name so deployment configuration selects one without the core depending on
// any of them.
package directory

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Person is an ordered list of directory attribute values. Position 0 is the
// stable unique identifier, position 1 the display name. Attributes the
// backing entry does not carry are empty strings.
type Person struct {
	Attributes []string
}

// NewPerson builds a Person, padding the attribute list so UID and Name are
// always addressable.
func NewPerson(attributes []string) Person {
	for len(attributes) < 2 {
		attributes = append(attributes, "")
	}
	return Person{Attributes: attributes}
}

// UID returns the unique identifier attribute.
func (p Person) UID() string { return p.Attributes[0] }

// Name returns the display name attribute.
func (p Person) Name() string { return p.Attributes[1] }

// Provider resolves people from a backing directory.
//
// Both operations absorb backend availability failures at this boundary:
// Search returns an empty list and Lookup returns nil when the backend is
// unreachable, with the failure logged by the implementation. Callers must
// treat a nil Lookup result as "no such person" and check it explicitly.
type Provider interface {
	// Search returns people whose configured attributes contain the query,
	// in deterministic order.
	Search(ctx context.Context, query string) []Person

	// Lookup resolves a unique identifier to exactly one person. It returns
	// nil when the identifier matches no entry, and also when it matches
	// more than one (a backend inconsistency, logged as an error).
	Lookup(ctx context.Context, uid string) *Person
}

// Factory constructs a Provider. Factories must validate their configuration
// eagerly and fail construction on malformed values.
type Factory func() (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register maps a configuration name to a provider factory. Registration
// fails fast on empty names, nil factories and duplicates, so wiring errors
// surface at startup rather than at first use.
func Register(name string, factory Factory) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if name == "" {
		return fmt.Errorf("directory: provider name is required")
	}
	if factory == nil {
		return fmt.Errorf("directory: factory for %q is required", name)
	}
	if _, exists := registry[name]; exists {
		return fmt.Errorf("directory: provider %q already registered", name)
	}
	registry[name] = factory
	return nil
}

// New constructs the provider registered under name.
func New(name string) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("directory: unknown provider %q (registered: %v)", name, names())
	}
	return factory()
}

func names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
