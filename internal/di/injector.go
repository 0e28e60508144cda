// Copyright (c) 2025-present deep.rent GmbH (https://www.deep.rent)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package di provides a small dependency container keyed by name. It
// satisfies the container contract expected by pipeline.Registry, so pipes
// and middleware can be constructed from the names they are registered
// under.
package di

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Provider defines the function signature for a service factory.
//
// When a service is requested, its provider is called with the *Injector,
// which it can use to resolve its own dependencies. Whether the result is
// reused on later requests is decided by the Resolver it was bound with.
type Provider func(in *Injector) (any, error)

// binding holds the provider and its associated resolution strategy.
type binding struct {
	provider Provider
	resolver Resolver
}

// table holds the bindings shared by an Injector and its resolution scopes.
type table struct {
	bindings map[string]*binding
	lock     sync.RWMutex
}

// Injector is the dependency container. It is safe for concurrent use.
//
// Providers receive a scoped view of the container that remembers which
// names are currently being resolved, so a provider that depends on itself,
// directly or through others, fails with an error.
type Injector struct {
	*table
	visiting []string
}

// NewInjector creates and returns a new, empty Injector.
func NewInjector() *Injector {
	return &Injector{
		table: &table{bindings: make(map[string]*binding)},
	}
}

// Bind registers a provider under name. It panics if name is already bound.
func Bind(
	in *Injector,
	name string,
	provider Provider,
	resolver Resolver,
) {
	in.lock.Lock()
	defer in.lock.Unlock()

	if _, ok := in.bindings[name]; ok {
		panic(fmt.Sprintf("name %q is already bound", name))
	}

	in.bindings[name] = &binding{
		provider: provider,
		resolver: resolver,
	}
}

// Use resolves name and converts the result to T.
func Use[T any](in *Injector, name string) (T, error) {
	var zero T
	v, err := in.Get(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%q: expected %T, got %T", name, zero, v)
	}
	return t, nil
}

// Has reports whether a provider is bound to name.
func (in *Injector) Has(name string) bool {
	in.lock.RLock()
	defer in.lock.RUnlock()
	_, ok := in.bindings[name]
	return ok
}

// Names returns the bound names in lexical order.
func (in *Injector) Names() []string {
	in.lock.RLock()
	defer in.lock.RUnlock()
	names := make([]string, 0, len(in.bindings))
	for name := range in.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get resolves the service bound to name.
//
// It returns an error if the name is not bound, the provider returns an
// error or panics, or name is already being resolved further up the chain.
func (in *Injector) Get(name string) (any, error) {
	if slices.Contains(in.visiting, name) {
		return nil, fmt.Errorf(
			"circular dependency detected resolving %q (%s -> %s)",
			name, strings.Join(in.visiting, " -> "), name,
		)
	}

	in.lock.RLock()
	b, ok := in.bindings[name]
	in.lock.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no provider bound for %q", name)
	}

	scope := &Injector{
		table:    in.table,
		visiting: append(slices.Clip(in.visiting), name),
	}
	return b.resolver.Resolve(scope, b.provider, name)
}
