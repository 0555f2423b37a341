// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package provider holds the typed backend tables used by the document store
// and the sentence embedder. Backend packages add themselves from init(), so a
// blank import is enough to make a backend selectable from configuration.
package provider

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ErrUnknownBackend is returned by New when no factory has the requested name.
var ErrUnknownBackend = errors.New("unknown backend")

// Factory builds a backend from a flat parameter map. Backends read the keys
// they understand and ignore the rest.
type Factory[T any] func(ctx context.Context, params map[string]string) (T, error)

// Registry maps backend names to factories for the capability T.
type Registry[T any] struct {
	kind string

	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry returns an empty table. kind is the configuration key the
// backends are selected by, e.g. "doc_store" or "embedder".
func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, factories: map[string]Factory[T]{}}
}

// Register panics on a duplicate name.
func (r *Registry[T]) Register(name string, f Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories[name] != nil {
		panic(fmt.Sprintf("provider: %s %q registered twice", r.kind, name))
	}
	r.factories[name] = f
}

// New builds the backend registered under name. Unknown names wrap
// ErrUnknownBackend and list what is available; factory errors are wrapped
// with the kind and name.
func (r *Registry[T]) New(ctx context.Context, name string, params map[string]string) (T, error) {
	var zero T

	r.mu.RLock()
	f := r.factories[name]
	r.mu.RUnlock()
	if f == nil {
		return zero, fmt.Errorf("%s %q: %w (choose one of: %s)",
			r.kind, name, ErrUnknownBackend, strings.Join(r.Available(), ", "))
	}

	backend, err := f(ctx, params)
	if err != nil {
		return zero, fmt.Errorf("%s %q: %w", r.kind, name, err)
	}
	return backend, nil
}

// Available returns the registered names in sorted order.
func (r *Registry[T]) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
