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
	"errors"
	"log/slog"

	"github.com/deep-rent/nexus/log"
	"github.com/google/uuid"
)

// Fallback substitutes a value when the chain fails. It receives the failure
// and the extra arguments registered with Pipeline.Use.
type Fallback func(err error, extra ...any) (any, error)

// config holds the options of a Pipeline.
type config struct {
	registry *Registry
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*config)

// WithRegistry sets the Registry that resolves Named steps. Without it, every
// Named step fails with an InvalidPipeError.
func WithRegistry(r *Registry) Option {
	return func(cfg *config) {
		if r != nil {
			cfg.registry = r
		}
	}
}

// WithLogger sets the logger used to trace pipeline runs. Defaults to a
// silent logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// Pipeline threads a subject through an ordered list of steps.
//
// A Pipeline is a mutable builder owned by a single caller. It is not safe
// for concurrent use.
type Pipeline struct {
	subject  any
	steps    []Step
	extra    []any
	fallback Fallback
	registry *Registry
	logger   *slog.Logger
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	cfg := config{
		logger: log.Silent(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Pipeline{
		registry: cfg.registry,
		logger:   cfg.logger,
	}
}

// Send sets the subject to be transformed.
func (p *Pipeline) Send(subject any) *Pipeline {
	p.subject = subject
	return p
}

// Use sets the extra arguments handed to every step after the subject and
// the continuation. The last call wins.
func (p *Pipeline) Use(args ...any) *Pipeline {
	p.extra = append([]any(nil), args...)
	return p
}

// Through sets the steps of the pipeline. Steps added with Pipe before this
// call are kept and run after the given ones, in their original order.
func (p *Pipeline) Through(steps ...Step) *Pipeline {
	deferred := p.steps
	p.steps = append(make([]Step, 0, len(steps)+len(deferred)), steps...)
	for _, step := range deferred {
		p.Pipe(step)
	}
	return p
}

// Pipe appends a single step.
func (p *Pipeline) Pipe(step Step) *Pipeline {
	p.steps = append(p.steps, step)
	return p
}

// SealWith registers a fallback that turns a failing run into a value.
// Invalid pipes are never sealed.
func (p *Pipeline) SealWith(fallback Fallback) *Pipeline {
	p.fallback = fallback
	return p
}

// Then runs the subject through every step and finally through terminal,
// which receives whatever the last step passed on. A nil terminal passes
// the subject through unchanged.
//
// If the run fails and a fallback was registered, the fallback's result is
// returned instead, unless the failure is an InvalidPipeError.
func (p *Pipeline) Then(terminal Next) (any, error) {
	if terminal == nil {
		terminal = identity
	}
	run := p.logger.With(slog.String("run", uuid.NewString()))
	extra := p.extra

	chain := terminal
	for i := len(p.steps) - 1; i >= 0; i-- {
		chain = p.wrap(chain, p.steps[i], extra)
	}

	run.Debug("Running pipeline",
		slog.Int("steps", len(p.steps)),
		slog.Int("extra", len(extra)),
	)

	out, err := call(chain, p.subject)
	if err == nil {
		return out, nil
	}

	var pipe *InvalidPipeError
	if p.fallback == nil || errors.As(err, &pipe) {
		run.Debug("Pipeline failed", slog.Any("error", err))
		return nil, err
	}

	run.Debug("Sealing pipeline failure", slog.Any("error", err))
	return p.fallback(err, extra...)
}

// ThenReturn runs the pipeline and returns the transformed subject.
func (p *Pipeline) ThenReturn() (any, error) {
	return p.Then(identity)
}

// wrap composes step in front of next.
func (p *Pipeline) wrap(next Next, step Step, extra []any) Next {
	return func(subject any) (any, error) {
		fn, err := p.registry.Resolve(step)
		if err != nil {
			return nil, reclassify(err, subject)
		}
		return call(func(subject any) (any, error) {
			return fn(subject, next, extra...)
		}, subject)
	}
}

// call invokes next and reclassifies any failure it reports, including a
// panic.
func call(next Next, subject any) (out any, err error) {
	defer func() {
		if v := recover(); v != nil {
			out, err = nil, reclassify(newPanicError(v), subject)
		}
	}()
	out, err = next(subject)
	if err != nil {
		return nil, reclassify(err, subject)
	}
	return out, nil
}

func identity(subject any) (any, error) {
	return subject, nil
}
