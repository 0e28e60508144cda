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

package bridge

// MiddlewareResponse is the request attribute under which the response
// produced so far by the pipe chain is handed to a middleware.
const MiddlewareResponse = "middlewareResponse"

// Request is an immutable server request carrying named attributes.
type Request interface {
	// WithAttribute returns a copy of the request with the attribute set.
	WithAttribute(name string, value any) Request
	// Attribute returns the named attribute, or nil if it is not set.
	Attribute(name string) any
}

// Response is an immutable response carrying a status code.
type Response interface {
	// WithStatus returns a copy of the response with the status code set.
	WithStatus(code int) Response
	// StatusCode returns the status code.
	StatusCode() int
}

// Handler produces a response for a request.
type Handler interface {
	Handle(req Request) (Response, error)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(req Request) (Response, error)

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(req Request) (Response, error) { return f(req) }

// Middleware processes a request, optionally delegating to handler.
type Middleware interface {
	Process(req Request, handler Handler) (Response, error)
}

// MiddlewareFunc adapts an ordinary function to the Middleware interface.
type MiddlewareFunc func(req Request, handler Handler) (Response, error)

// Process implements the Middleware interface.
func (f MiddlewareFunc) Process(req Request, handler Handler) (Response, error) {
	return f(req, handler)
}

// HandlerFactory builds the handler a middleware delegates to when it runs
// as a pipe. It receives the response produced so far.
type HandlerFactory func(res Response) Handler

// ResponseHandler is a Handler that always yields the same response. It is
// the default handler given to middleware that runs as a pipe.
type ResponseHandler struct {
	res Response
}

// NewResponseHandler returns a handler yielding res.
func NewResponseHandler(res Response) *ResponseHandler {
	return &ResponseHandler{res: res}
}

// Handle implements the Handler interface.
func (h *ResponseHandler) Handle(Request) (Response, error) {
	return h.res, nil
}

var (
	_ Handler    = HandlerFunc(nil)
	_ Handler    = (*ResponseHandler)(nil)
	_ Middleware = MiddlewareFunc(nil)
)
