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

import (
	"errors"
	"fmt"
)

var (
	// ErrMiddlewareNotFound is returned when no middleware contract is
	// available: no custom capability was registered and the bridge was
	// created without the standard one.
	ErrMiddlewareNotFound = errors.New("cannot find a middleware contract")
	// ErrInvalidMiddleware matches every InvalidMiddlewareError via errors.Is.
	ErrInvalidMiddleware = errors.New("invalid middleware")
)

// InvalidMiddlewareError reports a middleware descriptor that could not be
// converted: an unknown name, a value of the wrong type, or a name whose
// instance does not satisfy the middleware contract.
type InvalidMiddlewareError struct {
	// Middleware is the offending descriptor.
	Middleware any
	// Capability names the contract the descriptor had to satisfy.
	Capability string
}

func (e *InvalidMiddlewareError) Error() string {
	if name, ok := e.Middleware.(string); ok {
		return fmt.Sprintf(
			"the given middleware name %q must resolve to an instance of %q",
			name, e.Capability,
		)
	}
	return fmt.Sprintf(
		"invalid middleware type %T: middleware must be a function, "+
			"an instance of %q or the name of one",
		e.Middleware, e.Capability,
	)
}

// Is reports whether target is ErrInvalidMiddleware.
func (e *InvalidMiddlewareError) Is(target error) bool {
	return target == ErrInvalidMiddleware
}
