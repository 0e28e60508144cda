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

import "fmt"

// Next continues the chain with the given subject and returns whatever the
// remainder of the chain produced.
type Next func(subject any) (any, error)

// Pipe is a single unit of transformation in the chain.
type Pipe interface {
	// Handle transforms the subject. It calls next to hand the subject over
	// to the remainder of the chain, or returns without doing so to stop the
	// chain early. The extra arguments are the ones registered with
	// Pipeline.Use, in the same order.
	Handle(subject any, next Next, extra ...any) (any, error)
}

// Func adapts an ordinary function to the Pipe interface.
type Func func(subject any, next Next, extra ...any) (any, error)

// Handle implements the Pipe interface.
func (f Func) Handle(subject any, next Next, extra ...any) (any, error) {
	return f(subject, next, extra...)
}

// Ensure Func implements Pipe.
var _ Pipe = Func(nil)

type kind uint8

const (
	invalid kind = iota
	named
	direct
	instance
)

// Step describes a pipe registered with a Pipeline. The zero value is an
// invalid step.
type Step struct {
	kind  kind
	name  string
	fn    Func
	pipe  Pipe
	value any
}

// Named returns a step that is resolved by name through the Registry of the
// pipeline at composition time.
func Named(name string) Step {
	return Step{kind: named, name: name, value: name}
}

// Fn returns a step that invokes f directly.
func Fn(f Func) Step {
	if f == nil {
		return Step{}
	}
	return Step{kind: direct, fn: f, value: f}
}

// Of returns a step that delegates to the Handle method of p.
func Of(p Pipe) Step {
	if p == nil {
		return Step{}
	}
	return Step{kind: instance, pipe: p, value: p}
}

// From classifies an arbitrary value. Strings become Named steps, functions
// with the Func signature become Fn steps, and Pipe implementations become
// Of steps. Any other value yields a step that fails with an
// InvalidPipeError once it is resolved.
func From(v any) Step {
	switch v := v.(type) {
	case Step:
		return v
	case string:
		return Named(v)
	case Func:
		return Fn(v)
	case func(any, Next, ...any) (any, error):
		return Fn(v)
	case Pipe:
		return Of(v)
	}
	return Step{value: v}
}

// Value returns the descriptor this step was created from.
func (s Step) Value() any { return s.value }

// String implements the fmt.Stringer interface.
func (s Step) String() string {
	switch s.kind {
	case named:
		return fmt.Sprintf("named(%s)", s.name)
	case direct:
		return "func"
	case instance:
		return fmt.Sprintf("pipe(%T)", s.pipe)
	}
	return fmt.Sprintf("invalid(%T)", s.value)
}
