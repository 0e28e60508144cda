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

// Package message provides immutable implementations of the request and
// response contracts of the bridge package.
package message

import (
	"maps"

	"github.com/deep-rent/pipeline/bridge"
)

// Request is an immutable server request.
type Request struct {
	method string
	path   string
	attrs  map[string]any
}

// NewRequest creates a request without attributes.
func NewRequest(method, path string) *Request {
	return &Request{method: method, path: path}
}

// Method returns the request method.
func (r *Request) Method() string { return r.method }

// Path returns the request path.
func (r *Request) Path() string { return r.path }

// WithAttribute implements the bridge.Request interface.
func (r *Request) WithAttribute(name string, value any) bridge.Request {
	c := *r
	c.attrs = make(map[string]any, len(r.attrs)+1)
	maps.Copy(c.attrs, r.attrs)
	c.attrs[name] = value
	return &c
}

// Attribute implements the bridge.Request interface.
func (r *Request) Attribute(name string) any {
	return r.attrs[name]
}

// Response is an immutable response.
type Response struct {
	status int
	body   string
}

// NewResponse creates a response with the given status code.
func NewResponse(status int) *Response {
	return &Response{status: status}
}

// WithStatus implements the bridge.Response interface.
func (r *Response) WithStatus(code int) bridge.Response {
	c := *r
	c.status = code
	return &c
}

// StatusCode implements the bridge.Response interface.
func (r *Response) StatusCode() int { return r.status }

// WithBody returns a copy of the response with the body set.
func (r *Response) WithBody(body string) *Response {
	c := *r
	c.body = body
	return &c
}

// Body returns the response body.
func (r *Response) Body() string { return r.body }

var (
	_ bridge.Request  = (*Request)(nil)
	_ bridge.Response = (*Response)(nil)
)
