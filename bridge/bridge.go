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

// Package bridge lets generic pipes and request/response middleware be
// mixed in one pipeline.
//
// A middleware that runs as a pipe receives the response produced so far as
// its subject and the request as the first extra argument of the pipeline:
//
//	b := bridge.New()
//	res, err := pipeline.New().
//		Use(req).
//		Send(initial).
//		Through(
//			pipeline.Of(b.MiddlewareToPipe(auth)),
//			pipeline.Of(b.MiddlewareToPipe("cors")),
//		).
//		ThenReturn()
//
// The response so far is attached to the request under MiddlewareResponse
// and the middleware is processed exactly once, with a handler that yields
// that response. Its result is handed on to the rest of the chain.
package bridge

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/deep-rent/nexus/log"

	"github.com/deep-rent/pipeline"
)

// config holds the options of a Bridge.
type config struct {
	registry *pipeline.Registry
	standard *Capability
	logger   *slog.Logger
}

// Option configures a Bridge.
type Option func(*config)

// WithRegistry sets the Registry used to make pipes and middleware by name.
func WithRegistry(r *pipeline.Registry) Option {
	return func(cfg *config) {
		if r != nil {
			cfg.registry = r
		}
	}
}

// WithStandard replaces the capability used when no custom one is
// registered. Passing nil models a host that does not provide any
// middleware contract, in which case ToMiddleware fails with
// ErrMiddlewareNotFound until SetMiddlewareAdapter is called.
func WithStandard(c *Capability) Option {
	return func(cfg *config) {
		cfg.standard = c
	}
}

// WithLogger sets the logger of the bridge. Defaults to a silent logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// Bridge converts between pipes and middleware. Its adapter registration
// may be changed at any time and is safe for concurrent use.
type Bridge struct {
	registry   *pipeline.Registry
	standard   *Capability
	capability *Capability
	adapter    AdapterFactory
	logger     *slog.Logger
	lock       sync.RWMutex
}

// New creates a Bridge. Without options it uses an empty Registry and the
// Standard capability.
func New(opts ...Option) *Bridge {
	std := Standard
	cfg := config{
		standard: &std,
		logger:   log.Silent(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = pipeline.NewRegistry(nil)
	}
	return &Bridge{
		registry: cfg.registry,
		standard: cfg.standard,
		logger:   cfg.logger,
	}
}

// Registry returns the Registry used to make pipes and middleware by name.
func (b *Bridge) Registry() *pipeline.Registry {
	return b.registry
}

// SetContainer sets the container consulted before the registered
// factories when a name is made.
func (b *Bridge) SetContainer(c pipeline.Container) {
	b.registry.SetContainer(c)
}

// Make constructs the instance registered under name.
func (b *Bridge) Make(name string) (any, error) {
	return b.registry.Make(name)
}

// SetMiddlewareAdapter registers a host middleware contract together with
// the factory producing middleware of the host's type. Either may be left
// empty, in which case the standard counterpart is used.
func (b *Bridge) SetMiddlewareAdapter(c Capability, adapter AdapterFactory) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.capability = &c
	b.adapter = adapter
}

// ResetMiddlewareAdapter removes a registered host contract and adapter.
func (b *Bridge) ResetMiddlewareAdapter() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.capability = nil
	b.adapter = nil
}

// HasMiddlewareInterfaceAdapter reports whether a usable host contract is
// registered.
func (b *Bridge) HasMiddlewareInterfaceAdapter() bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.capability.valid()
}

// HasMiddlewareClassAdapter reports whether a host adapter factory is
// registered.
func (b *Bridge) HasMiddlewareClassAdapter() bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.adapter != nil
}

// ToPipe resolves step and wraps it into a Pipe that hands the step's
// result to the rest of the chain. It suits steps that transform the
// subject without calling the continuation themselves.
func (b *Bridge) ToPipe(step pipeline.Step) (pipeline.Pipe, error) {
	fn, err := b.registry.Resolve(step)
	if err != nil {
		return nil, err
	}
	return &pipe{fn: fn}, nil
}

// ToMiddleware normalizes m into a Middleware.
//
// A MiddlewareFunc or a function of the same signature is used as is; a
// name known to the Registry is made and bound; a value satisfying the
// active capability is bound. Anything else fails with an
// InvalidMiddlewareError. Any unexpected failure is reported as an
// InvalidMiddlewareError naming m if m is a name, and as an
// InvalidPipelineError otherwise.
func (b *Bridge) ToMiddleware(m any) (mw Middleware, err error) {
	capability, ok := b.active()
	if !ok {
		return nil, ErrMiddlewareNotFound
	}

	defer func() {
		if v := recover(); v != nil {
			mw, err = nil, b.unexpected(m, capability, fmt.Errorf("panic: %v", v))
		}
	}()

	fn, err := b.bind(m, capability)
	if err != nil {
		var invalid *InvalidMiddlewareError
		if errors.As(err, &invalid) {
			return nil, err
		}
		return nil, b.unexpected(m, capability, err)
	}
	return b.adapt(fn), nil
}

// MiddlewareToPipe wraps m into a Pipe. Conversion of m is deferred until
// the pipe runs, so an invalid middleware only fails the run.
//
// The pipe expects the response so far as its subject and the request as
// the first extra argument. If the second extra argument is a
// HandlerFactory, it builds the handler given to the middleware; otherwise
// a ResponseHandler yielding the response so far is used.
func (b *Bridge) MiddlewareToPipe(m any) pipeline.Pipe {
	return &pipe{
		fn: func(subject any, _ pipeline.Next, extra ...any) (any, error) {
			res, ok := subject.(Response)
			if !ok {
				return nil, fmt.Errorf("middleware pipe: subject %T is not a Response", subject)
			}
			if len(extra) == 0 {
				return nil, errors.New("middleware pipe: missing request argument")
			}
			req, ok := extra[0].(Request)
			if !ok {
				return nil, fmt.Errorf("middleware pipe: argument %T is not a Request", extra[0])
			}

			mw, err := b.ToMiddleware(m)
			if err != nil {
				return nil, err
			}

			b.logger.Debug("Processing middleware as pipe",
				slog.String("middleware", fmt.Sprintf("%T", m)),
				slog.Int("status", res.StatusCode()),
			)
			req = req.WithAttribute(MiddlewareResponse, res)
			return mw.Process(req, handlerFor(res, extra[1:]))
		},
	}
}

// active returns the capability in effect.
func (b *Bridge) active() (*Capability, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if b.capability.valid() {
		return b.capability, true
	}
	if b.standard.valid() {
		return b.standard, true
	}
	return nil, false
}

// bind extracts the process function from m.
func (b *Bridge) bind(m any, c *Capability) (MiddlewareFunc, error) {
	switch v := m.(type) {
	case MiddlewareFunc:
		if v != nil {
			return v, nil
		}
	case func(Request, Handler) (Response, error):
		if v != nil {
			return v, nil
		}
	case string:
		if !b.registry.Has(v) {
			return nil, &InvalidMiddlewareError{Middleware: v, Capability: c.Name}
		}
		inst, err := b.registry.Make(v)
		if err != nil {
			return nil, err
		}
		fn, ok := c.Bind(inst)
		if !ok {
			return nil, &InvalidMiddlewareError{Middleware: v, Capability: c.Name}
		}
		return fn, nil
	default:
		if fn, ok := c.Bind(m); ok {
			return fn, nil
		}
	}
	return nil, &InvalidMiddlewareError{Middleware: m, Capability: c.Name}
}

// unexpected reclassifies a failure that is not an invalid middleware.
func (b *Bridge) unexpected(m any, c *Capability, err error) error {
	if name, ok := m.(string); ok {
		b.logger.Debug("Middleware construction failed",
			slog.String("middleware", name),
			slog.Any("error", err),
		)
		return &InvalidMiddlewareError{Middleware: name, Capability: c.Name}
	}
	return pipeline.NewInvalidPipelineError(err)
}

// adapt wraps fn into the middleware type of the host, or into the built-in
// adapter if no host adapter is registered.
func (b *Bridge) adapt(fn MiddlewareFunc) Middleware {
	b.lock.RLock()
	factory := b.adapter
	b.lock.RUnlock()
	if factory != nil {
		return factory(fn)
	}
	return &adapter{fn: fn}
}

// handlerFor builds the handler given to a middleware running as a pipe.
func handlerFor(res Response, args []any) Handler {
	if len(args) > 0 {
		if f, ok := args[0].(HandlerFactory); ok && f != nil {
			return f(res)
		}
	}
	return NewResponseHandler(res)
}

// pipe hands the result of fn to the rest of the chain.
type pipe struct {
	fn pipeline.Func
}

// Handle implements the pipeline.Pipe interface.
func (p *pipe) Handle(subject any, next pipeline.Next, extra ...any) (any, error) {
	out, err := p.fn(subject, next, extra...)
	if err != nil {
		return nil, err
	}
	return next(out)
}

// Ensure pipe implements pipeline.Pipe.
var _ pipeline.Pipe = (*pipe)(nil)
