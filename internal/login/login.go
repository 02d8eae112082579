// Package login defines the authentication provider capability: validating a
// submitted credential for a claimed identity. Providers declare the form
// fields they need and are selected by name at process configuration time.
package login

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Field describes one input a provider needs from the login form.
type Field struct {
	// Name is the form field name.
	Name string
	// Label is the display name for the field.
	Label string
	// Secret marks password-like fields that must be masked on input.
	Secret bool
	// Required marks fields the provider will reject the form without. The
	// provider still validates presence itself; this only shapes the form.
	Required bool
	// Description is optional help text shown near the input.
	Description string
	// Order sorts fields ascending for display.
	Order int
}

// BaseFields returns the default username and password descriptors. Providers
// start from these and may drop fields they do not need.
func BaseFields() []Field {
	return []Field{
		{Name: "username", Label: "Username", Required: true, Order: 1},
		{Name: "password", Label: "Password", Secret: true, Required: true, Order: 2},
	}
}

// SortFields orders fields by their Order value for display.
func SortFields(fields []Field) []Field {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}

// Outcome is the result of an authentication attempt. Username carries the
// normalized identity even on failure when it could be recovered; Message is
// a user-facing explanation set on failure.
type Outcome struct {
	Username string
	OK       bool
	Message  string
}

// Provider validates submitted credentials.
//
// Authenticate never fails with an error: missing fields, backend timeouts
// and rejections are all failure outcomes, logged by the implementation where
// appropriate.
type Provider interface {
	// Fields returns the input descriptors for this provider, sorted for
	// display.
	Fields() []Field

	// Authenticate checks the submitted form values.
	Authenticate(ctx context.Context, form map[string]string) Outcome

	// ProductionReady reports whether this provider performs genuine
	// credential verification. Debug providers return false; the UI shows a
	// warning but nothing is enforced.
	ProductionReady() bool
}

// NormalizeUsername trims whitespace and strips an @domain suffix so the
// identity matches directory UIDs.
func NormalizeUsername(raw string) string {
	username, _, _ := strings.Cut(raw, "@")
	return strings.TrimSpace(username)
}

// Factory constructs a Provider. Factories must validate their configuration
// eagerly and fail construction on malformed values.
type Factory func() (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register maps a configuration name to a provider factory, failing fast on
// empty names, nil factories and duplicates.
func Register(name string, factory Factory) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if name == "" {
		return fmt.Errorf("login: provider name is required")
	}
	if factory == nil {
		return fmt.Errorf("login: factory for %q is required", name)
	}
	if _, exists := registry[name]; exists {
		return fmt.Errorf("login: provider %q already registered", name)
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
		return nil, fmt.Errorf("login: unknown provider %q (registered: %v)", name, names())
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
