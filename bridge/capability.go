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

// Capability identifies a middleware contract. Hosts that ship their own
// middleware interface describe it with a Capability and register it
// through Bridge.SetMiddlewareAdapter.
type Capability struct {
	// Name identifies the contract in error messages.
	Name string
	// Bind extracts the process function from a value that satisfies the
	// contract. It reports false for any other value.
	Bind func(v any) (MiddlewareFunc, bool)
}

// valid reports whether the capability can be used to bind values.
func (c *Capability) valid() bool {
	return c != nil && c.Bind != nil
}

// Standard is the capability of the Middleware interface declared by this
// package.
var Standard = Capability{
	Name: "bridge.Middleware",
	Bind: func(v any) (MiddlewareFunc, bool) {
		mw, ok := v.(Middleware)
		if !ok {
			return nil, false
		}
		return mw.Process, true
	},
}

// AdapterFactory wraps a normalized process function into the middleware
// type a host expects.
type AdapterFactory func(fn MiddlewareFunc) Middleware

// adapter is the built-in middleware produced when no AdapterFactory is
// registered.
type adapter struct {
	fn MiddlewareFunc
}

// Process implements the Middleware interface.
func (a *adapter) Process(req Request, handler Handler) (Response, error) {
	return a.fn(req, handler)
}
