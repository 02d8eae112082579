// Package static provides an in-memory directory backend for development and
// tests. People are fixed at construction time.
package static

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"vouch/internal/directory"
)

// Provider serves lookups and searches from a fixed people list.
type Provider struct {
	people []directory.Person
	logger *slog.Logger
}

// New constructs a static directory from the given people. Every person must
// carry a unique identifier.
func New(people []directory.Person, logger *slog.Logger) *Provider {
	return &Provider{people: people, logger: logger}
}

// Search matches the query as a case-insensitive substring against every
// attribute, returning results sorted by their attribute tuple.
func (p *Provider) Search(_ context.Context, query string) []directory.Person {
	query = strings.ToLower(query)
	var results []directory.Person
	for _, person := range p.people {
		for _, attr := range person.Attributes {
			if strings.Contains(strings.ToLower(attr), query) {
				results = append(results, person)
				break
			}
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return strings.Join(results[i].Attributes, "\x00") < strings.Join(results[j].Attributes, "\x00")
	})
	return results
}

// Lookup resolves a unique identifier to exactly one person. Duplicate
// identifiers are a fixture inconsistency: logged as an error, resolved to
// nil rather than an arbitrary match.
func (p *Provider) Lookup(ctx context.Context, uid string) *directory.Person {
	var found *directory.Person
	for i := range p.people {
		if p.people[i].UID() != uid {
			continue
		}
		if found != nil {
			p.logger.ErrorContext(ctx, "static directory holds duplicate uid",
				"uid", uid,
			)
			return nil
		}
		found = &p.people[i]
	}
	if found == nil {
		return nil
	}
	person := *found
	return &person
}
