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
	"fmt"
	"runtime/debug"
)

var (
	// ErrInvalidPipe matches every InvalidPipeError via errors.Is.
	ErrInvalidPipe = errors.New("invalid pipe")
	// ErrInvalidPipeline matches every InvalidPipelineError via errors.Is.
	ErrInvalidPipeline = errors.New("invalid pipeline")
)

// InvalidPipeError reports a step that could not be classified as any of the
// known pipe shapes, such as a name that is unknown to the Registry. It
// signals a configuration defect and is never sealed by a fallback.
type InvalidPipeError struct {
	// Pipe is the offending descriptor.
	Pipe any
}

func (e *InvalidPipeError) Error() string {
	if name, ok := e.Pipe.(string); ok {
		return fmt.Sprintf("invalid pipe name given: %q", name)
	}
	return fmt.Sprintf("invalid pipe of type %T", e.Pipe)
}

// Is reports whether target is ErrInvalidPipe.
func (e *InvalidPipeError) Is(target error) bool {
	return target == ErrInvalidPipe
}

// InvalidPipelineError reports an unexpected failure raised while resolving
// or running a step. It wraps the original cause and, when the failure
// happened inside the chain, the subject that was being processed.
type InvalidPipelineError struct {
	cause      error
	subject    any
	hasSubject bool
}

// NewInvalidPipelineError wraps cause without an in-flight subject.
func NewInvalidPipelineError(cause error) *InvalidPipelineError {
	return &InvalidPipelineError{cause: cause}
}

func (e *InvalidPipelineError) Error() string {
	if e.cause == nil {
		return ErrInvalidPipeline.Error()
	}
	return e.cause.Error()
}

// Unwrap returns the original cause.
func (e *InvalidPipelineError) Unwrap() error { return e.cause }

// Is reports whether target is ErrInvalidPipeline.
func (e *InvalidPipelineError) Is(target error) bool {
	return target == ErrInvalidPipeline
}

// HasSubject reports whether the subject in flight was captured.
func (e *InvalidPipelineError) HasSubject() bool { return e.hasSubject }

// Subject returns the subject that was in flight when the failure occurred,
// or nil if none was captured.
func (e *InvalidPipelineError) Subject() any { return e.subject }

// PanicError carries the value of a recovered panic together with the stack
// trace at the point where it was raised.
type PanicError struct {
	Value any
	Stack string
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: string(debug.Stack())}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value if it was an error itself.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// reclassify converts err into one of the two pipeline error kinds. Invalid
// pipes stay as they are. An existing InvalidPipelineError is kept, gaining
// the subject if it did not carry one yet; anything else is wrapped.
func reclassify(err error, subject any) error {
	var pipe *InvalidPipeError
	if errors.As(err, &pipe) {
		return err
	}
	var line *InvalidPipelineError
	if errors.As(err, &line) {
		if line.hasSubject {
			return err
		}
		return &InvalidPipelineError{
			cause:      line.cause,
			subject:    subject,
			hasSubject: true,
		}
	}
	return &InvalidPipelineError{
		cause:      err,
		subject:    subject,
		hasSubject: true,
	}
}
