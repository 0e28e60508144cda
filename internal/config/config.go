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

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Prefix is the prefix shared by all environment variables read by Load.
const Prefix = "PIPELINE_"

// File names the environment variable pointing to an optional YAML file.
const File = Prefix + "CONFIG"

// Config holds the settings of the command line runner.
type Config struct {
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	// Subject is the string sent through the pipeline.
	Subject string `koanf:"subject"`
	// Steps lists the names of the pipes to run, separated by commas.
	Steps  string `koanf:"steps"`
	Prefix string `koanf:"prefix"`
	Suffix string `koanf:"suffix"`
	// Seal hands the unchanged subject back if a step fails. Unknown step
	// names are reported regardless.
	Seal bool `koanf:"seal"`
	// Respond sends the subject as the body of a response through the steps
	// instead of as a plain string. Each step then runs as middleware.
	Respond bool   `koanf:"respond"`
	Method  string `koanf:"method"`
	Path    string `koanf:"path"`
	Status  int    `koanf:"status"`
}

// StepNames splits Steps into trimmed, non-empty names.
func (c *Config) StepNames() []string {
	var names []string
	for name := range strings.SplitSeq(c.Steps, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

var defaults = map[string]any{
	"log_level":  "info",
	"log_format": "text",
	"steps":      "trim",
	"method":     "GET",
	"path":       "/",
	"status":     200,
}

// Load reads the configuration. Values from the YAML file named by the
// PIPELINE_CONFIG variable are overridden by PIPELINE_* variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(File); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(Prefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, Prefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, value); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
