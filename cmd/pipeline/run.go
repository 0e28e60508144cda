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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/deep-rent/pipeline"
	"github.com/deep-rent/pipeline/bridge"
	"github.com/deep-rent/pipeline/internal/config"
	"github.com/deep-rent/pipeline/internal/di"
	"github.com/deep-rent/pipeline/internal/logger"
	"github.com/deep-rent/pipeline/internal/message"
	"github.com/deep-rent/pipeline/internal/middleware"
	"github.com/deep-rent/pipeline/internal/pipes"
)

// run sends the configured subject through the configured pipes and writes
// the result to out.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in := di.NewInjector()
	logger.Bind(in, log)
	middleware.Bind(in)
	pipes.Bind(in, pipes.Options{
		Prefix: cfg.Prefix,
		Suffix: cfg.Suffix,
	})
	reg := pipeline.NewRegistry(in)

	p := pipeline.New(
		pipeline.WithRegistry(reg),
		pipeline.WithLogger(log),
	)

	var initial any
	if cfg.Respond {
		initial = message.NewResponse(cfg.Status).WithBody(cfg.Subject)
		b := bridge.New(bridge.WithRegistry(reg), bridge.WithLogger(log))
		p.Use(message.NewRequest(cfg.Method, cfg.Path)).
			Send(initial).
			Through(responseSteps(b, reg, cfg.StepNames())...)
	} else {
		initial = cfg.Subject
		p.Send(initial).Through(stringSteps(cfg.StepNames())...)
	}

	if cfg.Seal {
		p.SealWith(func(err error, _ ...any) (any, error) {
			log.Warn("Step failed, keeping subject", "error", err)
			return initial, nil
		})
	}

	res, err := p.ThenReturn()
	if err != nil {
		var invalid *pipeline.InvalidPipeError
		if errors.As(err, &invalid) {
			avail := slices.DeleteFunc(in.Names(), func(name string) bool {
				return name == logger.Name || name == middleware.TraceName
			})
			return fmt.Errorf("%w (available: %s)", err, strings.Join(avail, ", "))
		}
		return err
	}

	if msg, ok := res.(*message.Response); ok {
		_, err = fmt.Fprintf(out, "%d %s\n", msg.StatusCode(), msg.Body())
		return err
	}
	_, err = fmt.Fprintln(out, res)
	return err
}

// stringSteps resolves every name as a pipe over the subject.
func stringSteps(names []string) []pipeline.Step {
	steps := make([]pipeline.Step, 0, len(names))
	for _, name := range names {
		steps = append(steps, pipeline.Named(name))
	}
	return steps
}

// responseSteps runs every named pipe over the response body, framed by
// method filtering and request tracing.
func responseSteps(b *bridge.Bridge, reg *pipeline.Registry, names []string) []pipeline.Step {
	steps := make([]pipeline.Step, 0, len(names)+2)
	steps = append(steps, pipeline.Of(b.MiddlewareToPipe(
		middleware.Allow(http.MethodGet, http.MethodHead, http.MethodPost),
	)))
	for _, name := range names {
		lift := middleware.Lift(pipeline.Named(name), pipeline.WithRegistry(reg))
		steps = append(steps, pipeline.Of(b.MiddlewareToPipe(lift)))
	}
	return append(steps, pipeline.Of(b.MiddlewareToPipe(middleware.TraceName)))
}
