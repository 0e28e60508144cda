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
	"os"

	"github.com/deep-rent/nexus/app"
	"github.com/deep-rent/nexus/log"
	"github.com/joho/godotenv"

	"github.com/deep-rent/pipeline/internal/config"
	"github.com/deep-rent/pipeline/internal/logger"
)

func main() {
	_ = godotenv.Load()

	// Failures are reported on stderr whatever the configured level.
	fatal := log.New(
		log.WithLevel("error"),
		log.WithFormat("text"),
		log.WithWriter(os.Stderr),
	)

	cfg, err := config.Load()
	if err != nil {
		fatal.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	lg := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	runnable := func(ctx context.Context) error {
		return run(ctx, cfg, lg, os.Stdout)
	}

	if err := app.Run(runnable, app.WithLogger(lg)); err != nil {
		fatal.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
