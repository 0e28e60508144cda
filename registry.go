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

package pipeline

import (
	"fmt"
	"sync"
)

// Container is a dependency container consulted before the factories of a
// Registry when a name is made.
type Container interface {
	// Has reports whether the container can provide name.
	Has(name string) bool
	// Get provides the instance bound to name.
	Get(name string) (any, error)
}

// Factory constructs a fresh instance for a registered name.
type Factory func() (any, error)

// Registry maps names to constructible pipes. It is safe for concurrent use.
type Registry struct {
	container Container
	factories map[string]Factory
	lock      sync.RWMutex
}

// NewRegistry creates an empty Registry. The container is optional.
func NewRegistry(c Container) *Registry {
	return &Registry{
		container: c,
		factories: make(map[string]Factory),
	}
}

// SetContainer replaces the container consulted by Make.
func (r *Registry) SetContainer(c Container) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.container = c
}

// Register binds a factory to name, replacing any previous binding.
func (r *Registry) Register(name string, f Factory) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.factories[name] = f
}

// Has reports whether name can be made, either through the container or
// through a registered factory. A nil Registry knows no names.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.container != nil && r.container.Has(name) {
		return true
	}
	f, ok := r.factories[name]
	return ok && f != nil
}

// Make produces the instance for name. The container wins if it has an
// entry; otherwise the registered factory is called.
func (r *Registry) Make(name string) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("no factory registered for %q", name)
	}
	r.lock.RLock()
	c, f := r.container, r.factories[name]
	r.lock.RUnlock()

	if c != nil && c.Has(name) {
		return c.Get(name)
	}
	if f == nil {
		return nil, fmt.Errorf("no factory registered for %q", name)
	}
	return f()
}

// Resolve turns a step into a callable pipe function.
//
// Known names are made and must yield a Pipe; unknown names and
// unclassifiable values fail with an InvalidPipeError. Any other failure
// raised while making or binding a named pipe, including a panicking
// factory, is reported as an InvalidPipelineError carrying the cause.
func (r *Registry) Resolve(step Step) (fn Func, err error) {
	defer func() {
		if v := recover(); v != nil {
			fn, err = nil, NewInvalidPipelineError(newPanicError(v))
		}
	}()

	switch step.kind {
	case named:
		if !r.Has(step.name) {
			return nil, &InvalidPipeError{Pipe: step.name}
		}
		v, err := r.Make(step.name)
		if err != nil {
			return nil, NewInvalidPipelineError(err)
		}
		return bind(step.name, v)
	case instance:
		return step.pipe.Handle, nil
	case direct:
		return step.fn, nil
	default:
		return nil, &InvalidPipeError{Pipe: step.value}
	}
}

// Resolve turns a step into a callable pipe function using an empty
// Registry, so only Fn and Of steps succeed.
func Resolve(step Step) (Func, error) {
	return (*Registry)(nil).Resolve(step)
}

func bind(name string, v any) (Func, error) {
	switch p := v.(type) {
	case func(any, Next, ...any) (any, error):
		return p, nil
	case Pipe:
		return p.Handle, nil
	}
	return nil, NewInvalidPipelineError(
		fmt.Errorf("%q resolved to %T, which does not implement Pipe", name, v),
	)
}
