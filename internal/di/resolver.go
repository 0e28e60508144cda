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

package di

import (
	"fmt"
	"sync"
)

// Resolver defines a strategy for resolving service instances.
type Resolver interface {
	// Resolve provides an instance of the service bound to name.
	Resolve(in *Injector, provider Provider, name string) (any, error)
}

// singleton is a Resolver that caches the instance after the first call.
type singleton struct {
	instance any
	err      error
	once     sync.Once
}

// Resolve implements the Resolver interface.
func (s *singleton) Resolve(in *Injector, provider Provider, name string) (any, error) {
	s.once.Do(func() { s.instance, s.err = provide(in, provider, name) })
	return s.instance, s.err
}

// Singleton returns a Resolver that creates an instance once and reuses it
// thereafter. A failed first attempt is cached as well.
func Singleton() Resolver {
	return &singleton{}
}

// transient is a Resolver that creates a new instance on every call.
type transient struct{}

// Resolve implements the Resolver interface.
func (transient) Resolve(in *Injector, provider Provider, name string) (any, error) {
	return provide(in, provider, name)
}

// Transient returns a Resolver that creates a new instance on every call.
// Pipes holding per-run state should be bound this way.
func Transient() Resolver {
	return transient{}
}

// provide safely executes provider, converting a panic into an error.
func provide(in *Injector, provider Provider, name string) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf(
				"panic during provider call for %q: %v",
				name, rec,
			)
			instance = nil
		}
	}()

	return provider(in)
}
