// Copyright 2025 walteh LLC
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

package opts

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/litpatch/pkg/document"
	"github.com/walteh/litpatch/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Debug bool
	Store document.Store
}

// Level returns the zerolog level selected by the global flags.
func (o *RootOpts) Level() zerolog.Level {
	if o.Debug {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}

// NewLogger creates the console logger for one command run. Events are only
// mirrored to zerolog with --debug.
func (o *RootOpts) NewLogger(console io.Writer) *log.Logger {
	level := zerolog.Disabled
	if o.Debug {
		level = zerolog.DebugLevel
	}
	return log.New(console, level)
}
