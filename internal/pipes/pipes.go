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

// Package pipes provides a catalogue of string pipes that can be bound to a
// di.Injector and referenced by name in a pipeline.
package pipes

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/deep-rent/pipeline"
)

// text asserts that subject is a string.
func text(name string, subject any) (string, error) {
	s, ok := subject.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string subject, got %T", name, subject)
	}
	return s, nil
}

// Map lifts a string transformation into a pipe that hands the transformed
// subject on. It fails if the subject is not a string.
func Map(name string, fn func(string) string) pipeline.Func {
	return func(subject any, next pipeline.Next, _ ...any) (any, error) {
		s, err := text(name, subject)
		if err != nil {
			return nil, err
		}
		return next(fn(s))
	}
}

// Trim removes leading and trailing white space.
var Trim = Map("trim", strings.TrimSpace)

// Upper maps all letters to upper case.
var Upper = Map("upper", strings.ToUpper)

// Lower maps all letters to lower case.
var Lower = Map("lower", strings.ToLower)

// Reverse reverses the subject rune by rune.
var Reverse = Map("reverse", func(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
})

// Affix surrounds the subject with a fixed prefix and suffix.
type Affix struct {
	Prefix string
	Suffix string
}

// Handle implements the pipeline.Pipe interface.
func (a Affix) Handle(subject any, next pipeline.Next, _ ...any) (any, error) {
	s, err := text("affix", subject)
	if err != nil {
		return nil, err
	}
	return next(a.Prefix + s + a.Suffix)
}

// Tap logs the subject as it passes and hands it on unchanged. It accepts
// subjects of any type.
type Tap struct {
	Logger *slog.Logger
	Label  string
}

// Handle implements the pipeline.Pipe interface.
func (t *Tap) Handle(subject any, next pipeline.Next, extra ...any) (any, error) {
	t.Logger.Info("Subject passed",
		slog.String("label", t.Label),
		slog.Any("subject", subject),
		slog.Int("extra", len(extra)),
	)
	return next(subject)
}

var (
	_ pipeline.Pipe = Affix{}
	_ pipeline.Pipe = (*Tap)(nil)
)
