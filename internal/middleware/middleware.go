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

// Package middleware provides request/response middleware that operates on
// the message types and runs inside a pipeline through the bridge.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/deep-rent/pipeline"
	"github.com/deep-rent/pipeline/bridge"
	"github.com/deep-rent/pipeline/internal/message"
)

// Lift returns middleware that delegates to the handler and then runs the
// body of the resulting response through step. Responses other than
// *message.Response are handed back unchanged.
func Lift(step pipeline.Step, opts ...pipeline.Option) bridge.Middleware {
	return bridge.MiddlewareFunc(
		func(req bridge.Request, h bridge.Handler) (bridge.Response, error) {
			res, err := h.Handle(req)
			if err != nil {
				return nil, err
			}
			msg, ok := res.(*message.Response)
			if !ok {
				return res, nil
			}
			out, err := pipeline.New(opts...).
				Send(msg.Body()).
				Pipe(step).
				ThenReturn()
			if err != nil {
				return nil, err
			}
			body, ok := out.(string)
			if !ok {
				return nil, fmt.Errorf("%s produced a body of type %T", step, out)
			}
			return msg.WithBody(body), nil
		},
	)
}

// Allow returns middleware that answers 405 Method Not Allowed to requests
// whose method is not listed.
func Allow(methods ...string) bridge.Middleware {
	return bridge.MiddlewareFunc(
		func(req bridge.Request, h bridge.Handler) (bridge.Response, error) {
			res, err := h.Handle(req)
			if err != nil {
				return nil, err
			}
			msg, ok := req.(*message.Request)
			if ok && !slices.Contains(methods, msg.Method()) {
				return res.WithStatus(http.StatusMethodNotAllowed), nil
			}
			return res, nil
		},
	)
}

// Trace logs the request line and the status of the response produced so
// far.
type Trace struct {
	Logger *slog.Logger
}

// Process implements the bridge.Middleware interface.
func (t *Trace) Process(req bridge.Request, h bridge.Handler) (bridge.Response, error) {
	res, err := h.Handle(req)
	if err != nil {
		return nil, err
	}
	attrs := []any{slog.Int("status", res.StatusCode())}
	if msg, ok := req.(*message.Request); ok {
		attrs = append(attrs,
			slog.String("method", msg.Method()),
			slog.String("path", msg.Path()),
		)
	}
	t.Logger.Info("Request handled", attrs...)
	return res, nil
}

var _ bridge.Middleware = (*Trace)(nil)
