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

// Package pipeline threads a subject through an ordered list of pipes,
// following the Chain of Responsibility pattern.
//
// Every pipe receives the current subject, a continuation that runs the
// remainder of the chain, and the extra arguments registered with
// Pipeline.Use. A pipe decides whether and when to call the continuation;
// returning without calling it short-circuits the chain.
//
//	reg := pipeline.NewRegistry(nil)
//	reg.Register("upper", func() (any, error) {
//		return pipeline.Func(func(s any, next pipeline.Next, _ ...any) (any, error) {
//			return next(strings.ToUpper(s.(string)))
//		}), nil
//	})
//
//	out, err := pipeline.New(pipeline.WithRegistry(reg)).
//		Send(" hello ").
//		Through(
//			pipeline.Fn(func(s any, next pipeline.Next, _ ...any) (any, error) {
//				return next(strings.TrimSpace(s.(string)))
//			}),
//			pipeline.Named("upper"),
//		).
//		ThenReturn() // "HELLO"
//
// Pipes come in three shapes, captured by the Step type: a name resolved
// through a Registry, a Func, or a value implementing Pipe. Names are
// resolved lazily, when the chain is composed, so a step may refer to a
// name that is registered after the step was added.
//
// Failures are reclassified at the boundary where they are detected. A step
// that cannot be classified yields an InvalidPipeError; that is a
// configuration defect and always reaches the caller, even when a fallback
// was registered with Pipeline.SealWith. Any other failure, including a
// panicking step, surfaces as an InvalidPipelineError that carries the
// original cause and the subject that was in flight.
package pipeline
