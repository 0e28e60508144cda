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

package bridge_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deep-rent/pipeline"
	"github.com/deep-rent/pipeline/bridge"
	"github.com/deep-rent/pipeline/internal/di"
	"github.com/deep-rent/pipeline/internal/message"
)

// shift delegates to the handler and adds delta to the status code.
type shift struct{ delta int }

func (s shift) Process(req bridge.Request, h bridge.Handler) (bridge.Response, error) {
	res, err := h.Handle(req)
	if err != nil {
		return nil, err
	}
	return res.WithStatus(res.StatusCode() + s.delta), nil
}

// fixed ignores the handler and sets the status of the response so far.
type fixed struct{ status int }

func (f fixed) Process(req bridge.Request, _ bridge.Handler) (bridge.Response, error) {
	res := req.Attribute(bridge.MiddlewareResponse).(bridge.Response)
	return res.WithStatus(f.status), nil
}

// runner is the middleware contract of a fictional host framework.
type runner interface {
	Run(req bridge.Request, h bridge.Handler) (bridge.Response, error)
}

// hostShift satisfies the host contract only.
type hostShift struct{ delta int }

func (s hostShift) Run(req bridge.Request, h bridge.Handler) (bridge.Response, error) {
	return shift(s).Process(req, h)
}

// hostAdapter produces middleware satisfying both contracts.
type hostAdapter struct{ fn bridge.MiddlewareFunc }

func (a *hostAdapter) Run(req bridge.Request, h bridge.Handler) (bridge.Response, error) {
	return a.fn(req, h)
}

func (a *hostAdapter) Process(req bridge.Request, h bridge.Handler) (bridge.Response, error) {
	return a.fn(req, h)
}

var host = bridge.Capability{
	Name: "host.Runner",
	Bind: func(v any) (bridge.MiddlewareFunc, bool) {
		r, ok := v.(runner)
		if !ok {
			return nil, false
		}
		return r.Run, true
	},
}

func newHostAdapter(fn bridge.MiddlewareFunc) bridge.Middleware {
	return &hostAdapter{fn: fn}
}

func newBridge() *bridge.Bridge {
	reg := pipeline.NewRegistry(nil)
	reg.Register("shift", func() (any, error) { return shift{delta: 100}, nil })
	reg.Register("host-shift", func() (any, error) { return hostShift{delta: 100}, nil })
	reg.Register("not-middleware", func() (any, error) { return struct{}{}, nil })
	reg.Register("failing", func() (any, error) { return nil, errors.New("cannot construct") })
	reg.Register("upper", func() (any, error) {
		return pipeline.Func(func(s any, next pipeline.Next, _ ...any) (any, error) {
			return next(strings.ToUpper(s.(string)))
		}), nil
	})
	return bridge.New(bridge.WithRegistry(reg))
}

func TestToPipe(t *testing.T) {
	b := newBridge()

	steps := map[string]pipeline.Step{
		"func": pipeline.Fn(func(s any, next pipeline.Next, _ ...any) (any, error) {
			return next(s)
		}),
		"named": pipeline.Named("upper"),
		"instance": pipeline.Of(pipeline.Func(func(s any, next pipeline.Next, _ ...any) (any, error) {
			return next(s)
		})),
	}

	for name, step := range steps {
		t.Run(name, func(t *testing.T) {
			p, err := b.ToPipe(step)
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := b.ToPipe(pipeline.Named("missing"))
		require.ErrorIs(t, err, pipeline.ErrInvalidPipe)
	})
}

func TestToPipeHandsResultOn(t *testing.T) {
	b := newBridge()
	p, err := b.ToPipe(pipeline.Fn(func(s any, _ pipeline.Next, _ ...any) (any, error) {
		return strings.TrimSpace(s.(string)), nil
	}))
	require.NoError(t, err)

	out, err := pipeline.New().
		Send("  trimmed and shouted ").
		Through(pipeline.Of(p), pipeline.Fn(func(s any, next pipeline.Next, _ ...any) (any, error) {
			return next(strings.ToUpper(s.(string)))
		})).
		ThenReturn()

	require.NoError(t, err)
	assert.Equal(t, "TRIMMED AND SHOUTED", out)
}

func middlewares() []struct {
	name string
	mw   any
	err  error
} {
	return []struct {
		name string
		mw   any
		err  error
	}{
		{name: "name", mw: "shift"},
		{name: "instance", mw: shift{delta: 1}},
		{name: "func literal", mw: func(bridge.Request, bridge.Handler) (bridge.Response, error) {
			return message.NewResponse(http.StatusOK), nil
		}},
		{name: "middleware func", mw: bridge.MiddlewareFunc(func(bridge.Request, bridge.Handler) (bridge.Response, error) {
			return message.NewResponse(http.StatusOK), nil
		})},
		{name: "unknown name", mw: `\Invalid\Middleware`, err: bridge.ErrInvalidMiddleware},
		{name: "bool", mw: true, err: bridge.ErrInvalidMiddleware},
		{name: "name of wrong type", mw: "not-middleware", err: bridge.ErrInvalidMiddleware},
		{name: "failing name", mw: "failing", err: bridge.ErrInvalidMiddleware},
		{name: "nil", mw: nil, err: bridge.ErrInvalidMiddleware},
	}
}

func TestToMiddleware(t *testing.T) {
	b := newBridge()
	for _, tc := range middlewares() {
		t.Run(tc.name, func(t *testing.T) {
			mw, err := b.ToMiddleware(tc.mw)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				assert.Nil(t, mw)
				return
			}
			require.NoError(t, err)
			assert.Implements(t, (*bridge.Middleware)(nil), mw)
		})
	}
}

func TestToMiddlewareNamesClass(t *testing.T) {
	b := newBridge()
	_, err := b.ToMiddleware("failing")

	var invalid *bridge.InvalidMiddlewareError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "failing", invalid.Middleware)
	assert.Equal(t, bridge.Standard.Name, invalid.Capability)
	assert.Contains(t, err.Error(), `"failing"`)
}

func TestToMiddlewareUnexpectedFailure(t *testing.T) {
	b := newBridge()
	b.SetMiddlewareAdapter(bridge.Capability{
		Name: "explosive",
		Bind: func(any) (bridge.MiddlewareFunc, bool) { panic("binding exploded") },
	}, nil)

	_, err := b.ToMiddleware(struct{}{})
	require.ErrorIs(t, err, pipeline.ErrInvalidPipeline)
	assert.NotErrorIs(t, err, bridge.ErrInvalidMiddleware)

	_, err = b.ToMiddleware("shift")
	require.ErrorIs(t, err, bridge.ErrInvalidMiddleware)
}

func TestMiddlewareToPipeConversion(t *testing.T) {
	b := newBridge()
	for _, tc := range middlewares() {
		t.Run(tc.name, func(t *testing.T) {
			// Invalid middleware only fails once the pipe runs.
			assert.NotNil(t, b.MiddlewareToPipe(tc.mw))
		})
	}
}

func TestMiddlewareAdapter(t *testing.T) {
	b := newBridge()
	assert.False(t, b.HasMiddlewareInterfaceAdapter())
	assert.False(t, b.HasMiddlewareClassAdapter())

	_, err := b.ToMiddleware(hostShift{delta: 1})
	require.ErrorIs(t, err, bridge.ErrInvalidMiddleware, "host contract unknown yet")

	b.SetMiddlewareAdapter(host, newHostAdapter)
	assert.True(t, b.HasMiddlewareInterfaceAdapter())
	assert.True(t, b.HasMiddlewareClassAdapter())

	for _, mw := range []any{hostShift{delta: 1}, "host-shift"} {
		out, err := b.ToMiddleware(mw)
		require.NoError(t, err)
		assert.IsType(t, &hostAdapter{}, out)
	}

	_, err = b.ToMiddleware(shift{delta: 1})
	require.ErrorIs(t, err, bridge.ErrInvalidMiddleware, "standard contract is replaced")

	b.ResetMiddlewareAdapter()
	assert.False(t, b.HasMiddlewareInterfaceAdapter())
	assert.False(t, b.HasMiddlewareClassAdapter())

	out, err := b.ToMiddleware(shift{delta: 1})
	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestMiddlewareAdapterPartial(t *testing.T) {
	b := newBridge()
	b.SetMiddlewareAdapter(bridge.Capability{Name: "incomplete"}, newHostAdapter)

	assert.False(t, b.HasMiddlewareInterfaceAdapter())
	assert.True(t, b.HasMiddlewareClassAdapter())

	out, err := b.ToMiddleware(shift{delta: 1})
	require.NoError(t, err)
	assert.IsType(t, &hostAdapter{}, out)
}

func TestMiddlewareNotFound(t *testing.T) {
	b := bridge.New(bridge.WithStandard(nil))

	_, err := b.ToMiddleware("")
	require.ErrorIs(t, err, bridge.ErrMiddlewareNotFound)
	assert.EqualError(t, err, "cannot find a middleware contract")

	b.SetMiddlewareAdapter(host, nil)
	_, err = b.ToMiddleware(hostShift{delta: 1})
	require.NoError(t, err)
}

func TestBridge(t *testing.T) {
	b := newBridge()
	req := message.NewRequest(http.MethodGet, "/")

	out, err := pipeline.New().
		Use(req).
		Send(message.NewResponse(100)).
		Through(
			pipeline.Of(b.MiddlewareToPipe("shift")),
			pipeline.Of(b.MiddlewareToPipe(func(r bridge.Request, _ bridge.Handler) (bridge.Response, error) {
				return r.Attribute(bridge.MiddlewareResponse).(bridge.Response).WithStatus(300), nil
			})),
			pipeline.Of(b.MiddlewareToPipe(fixed{status: 350})),
		).
		ThenReturn()

	require.NoError(t, err)
	assert.Equal(t, 350, out.(bridge.Response).StatusCode())
	assert.Nil(t, req.Attribute(bridge.MiddlewareResponse), "caller's request stays untouched")
}

func TestBridgeCumulative(t *testing.T) {
	b := newBridge()
	calls := 0
	count := bridge.MiddlewareFunc(func(r bridge.Request, h bridge.Handler) (bridge.Response, error) {
		calls++
		return shift{delta: 30}.Process(r, h)
	})

	out, err := pipeline.New().
		Use(message.NewRequest(http.MethodGet, "/")).
		Send(message.NewResponse(100)).
		Through(
			pipeline.Of(b.MiddlewareToPipe(shift{delta: 10})),
			pipeline.Of(b.MiddlewareToPipe(shift{delta: 20})),
			pipeline.Of(b.MiddlewareToPipe(count)),
		).
		ThenReturn()

	require.NoError(t, err)
	assert.Equal(t, 160, out.(bridge.Response).StatusCode())
	assert.Equal(t, 1, calls, "middleware must be processed exactly once")
}

func TestBridgeMixedWithPipes(t *testing.T) {
	b := newBridge()
	double := pipeline.Fn(func(s any, next pipeline.Next, _ ...any) (any, error) {
		res := s.(bridge.Response)
		return next(res.WithStatus(res.StatusCode() * 2))
	})

	out, err := pipeline.New().
		Use(message.NewRequest(http.MethodGet, "/")).
		Send(message.NewResponse(5)).
		Through(
			double,
			pipeline.Of(b.MiddlewareToPipe(shift{delta: 10})),
			double,
		).
		ThenReturn()

	require.NoError(t, err)
	assert.Equal(t, 40, out.(bridge.Response).StatusCode())
}

func TestRoundTrip(t *testing.T) {
	b := newBridge()
	run := func(step pipeline.Step) int {
		out, err := pipeline.New().
			Use(message.NewRequest(http.MethodGet, "/")).
			Send(message.NewResponse(200)).
			Through(step, step).
			ThenReturn()
		require.NoError(t, err)
		return out.(bridge.Response).StatusCode()
	}

	direct := run(pipeline.Fn(func(s any, next pipeline.Next, _ ...any) (any, error) {
		res := s.(bridge.Response)
		return next(res.WithStatus(res.StatusCode() + 1))
	}))
	bridged := run(pipeline.Of(b.MiddlewareToPipe(
		func(r bridge.Request, h bridge.Handler) (bridge.Response, error) {
			res, err := h.Handle(r)
			if err != nil {
				return nil, err
			}
			return res.WithStatus(res.StatusCode() + 1), nil
		},
	)))

	assert.Equal(t, 202, direct)
	assert.Equal(t, direct, bridged)
}

func TestMiddlewarePipeFailures(t *testing.T) {
	b := newBridge()

	t.Run("invalid middleware", func(t *testing.T) {
		_, err := pipeline.New().
			Use(message.NewRequest(http.MethodGet, "/")).
			Send(message.NewResponse(100)).
			Pipe(pipeline.Of(b.MiddlewareToPipe(true))).
			ThenReturn()

		require.ErrorIs(t, err, pipeline.ErrInvalidPipeline)
		require.ErrorIs(t, err, bridge.ErrInvalidMiddleware)
	})

	t.Run("sealed", func(t *testing.T) {
		out, err := pipeline.New().
			Use(message.NewRequest(http.MethodGet, "/")).
			Send(message.NewResponse(100)).
			SealWith(func(error, ...any) (any, error) {
				return message.NewResponse(http.StatusInternalServerError), nil
			}).
			Pipe(pipeline.Of(b.MiddlewareToPipe("not-middleware"))).
			ThenReturn()

		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, out.(bridge.Response).StatusCode())
	})

	t.Run("missing request", func(t *testing.T) {
		_, err := pipeline.New().
			Send(message.NewResponse(100)).
			Pipe(pipeline.Of(b.MiddlewareToPipe(shift{}))).
			ThenReturn()

		require.ErrorIs(t, err, pipeline.ErrInvalidPipeline)
		assert.Contains(t, err.Error(), "missing request")
	})

	t.Run("subject is not a response", func(t *testing.T) {
		_, err := pipeline.New().
			Use(message.NewRequest(http.MethodGet, "/")).
			Send("plain").
			Pipe(pipeline.Of(b.MiddlewareToPipe(shift{}))).
			ThenReturn()

		require.ErrorIs(t, err, pipeline.ErrInvalidPipeline)
		assert.Contains(t, err.Error(), "not a Response")
	})

	t.Run("no contract", func(t *testing.T) {
		nb := bridge.New(bridge.WithStandard(nil))
		_, err := pipeline.New().
			Use(message.NewRequest(http.MethodGet, "/")).
			Send(message.NewResponse(100)).
			Pipe(pipeline.Of(nb.MiddlewareToPipe(shift{}))).
			ThenReturn()

		require.ErrorIs(t, err, bridge.ErrMiddlewareNotFound)
	})
}

func TestHandlerFactory(t *testing.T) {
	b := newBridge()
	factory := bridge.HandlerFactory(func(res bridge.Response) bridge.Handler {
		return bridge.HandlerFunc(func(bridge.Request) (bridge.Response, error) {
			return res.WithStatus(res.StatusCode() + 1000), nil
		})
	})

	out, err := pipeline.New().
		Use(message.NewRequest(http.MethodGet, "/"), factory).
		Send(message.NewResponse(1)).
		Pipe(pipeline.Of(b.MiddlewareToPipe(shift{delta: 1}))).
		ThenReturn()

	require.NoError(t, err)
	assert.Equal(t, 1002, out.(bridge.Response).StatusCode())
}

func TestContainer(t *testing.T) {
	in := di.NewInjector()
	di.Bind(in, "audit", func(*di.Injector) (any, error) {
		return shift{delta: 7}, nil
	}, di.Singleton())

	b := bridge.New()
	b.SetContainer(in)

	v, err := b.Make("audit")
	require.NoError(t, err)
	assert.Equal(t, shift{delta: 7}, v)

	out, err := pipeline.New().
		Use(message.NewRequest(http.MethodGet, "/")).
		Send(message.NewResponse(100)).
		Pipe(pipeline.Of(b.MiddlewareToPipe("audit"))).
		ThenReturn()

	require.NoError(t, err)
	assert.Equal(t, 107, out.(bridge.Response).StatusCode())
}

func TestResponseHandler(t *testing.T) {
	res := message.NewResponse(http.StatusTeapot)
	h := bridge.NewResponseHandler(res)

	out, err := h.Handle(message.NewRequest(http.MethodGet, "/"))
	require.NoError(t, err)
	assert.Same(t, res, out)
}
