// Package router resolves locators against an ordered set of contracts and
// dispatches create, read, update and delete to an execution backend.
package router

import (
	"github.com/mesh-intelligence/provider/pkg/types"
)

// Registry is an ordered, immutable list of contracts. Registration order
// is part of the configuration: table name, content type and item filter
// resolution take the first match, while insert and projection resolution
// scan every contract and take the last match. The asymmetry is observable
// and kept as is.
type Registry struct {
	contracts []types.Contract
}

// NewRegistry returns a registry over contracts in the given order.
func NewRegistry(contracts ...types.Contract) *Registry {
	return &Registry{contracts: append([]types.Contract(nil), contracts...)}
}

// Contracts returns the registered contracts in registration order.
func (r *Registry) Contracts() []types.Contract {
	return append([]types.Contract(nil), r.contracts...)
}

// ResolveTableName returns the table of the first contract matching l.
func (r *Registry) ResolveTableName(l types.Locator, authority string) (string, error) {
	for _, c := range r.contracts {
		if c.MatchesAny(l, authority) {
			return c.TableName(), nil
		}
	}
	return "", &types.UnknownResourceError{Locator: l}
}

// ResolveContentType checks each contract in order for a collection match,
// then an item match, and returns the content type of the first hit.
func (r *Registry) ResolveContentType(l types.Locator, authority string) (string, error) {
	for _, c := range r.contracts {
		if c.MatchesCollection(l, authority) {
			return c.ContentType(), nil
		}
		if c.MatchesItemByID(l, authority) {
			return c.ItemContentType(), nil
		}
	}
	return "", &types.UnknownResourceError{Locator: l}
}

// ResolveInsertContract returns the last contract whose collection
// predicate matches l. Later registrations override earlier ones for
// insert routing.
func (r *Registry) ResolveInsertContract(l types.Locator, authority string) (types.Contract, error) {
	var found types.Contract
	for _, c := range r.contracts {
		if c.MatchesCollection(l, authority) {
			found = c
		}
	}
	if found == nil {
		return nil, &types.UnknownResourceError{Locator: l}
	}
	return found, nil
}

// ResolveProjection returns the projection of the last contract matching l.
func (r *Registry) ResolveProjection(l types.Locator, authority string) (map[string]string, error) {
	var (
		projection map[string]string
		found      bool
	)
	for _, c := range r.contracts {
		if c.MatchesAny(l, authority) {
			projection = c.Projection()
			found = true
		}
	}
	if !found {
		return nil, &types.UnknownResourceError{Locator: l}
	}
	return projection, nil
}

// AdjustFilter scopes filter to the record named by l when the first
// contract whose item predicate matches is found. Otherwise filter is
// returned unchanged.
func (r *Registry) AdjustFilter(l types.Locator, filter types.Filter, authority string) types.Filter {
	for _, c := range r.contracts {
		if c.MatchesItemByID(l, authority) {
			return c.BuildItemFilter(l, filter)
		}
	}
	return filter
}
