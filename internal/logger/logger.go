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

package logger

import (
	"io"
	"log/slog"
	"strings"

	"github.com/deep-rent/nexus/log"
)

// Silent is the level name that discards all records.
const Silent = "silent"

// New returns a logger writing to w at the given level and format. The
// level "silent" yields a logger that discards everything.
func New(w io.Writer, level, format string) *slog.Logger {
	if strings.EqualFold(strings.TrimSpace(level), Silent) {
		return log.Silent()
	}
	return log.New(
		log.WithLevel(level),
		log.WithFormat(format),
		log.WithWriter(w),
	)
}
