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

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/litpatch/pkg/log"
	"github.com/walteh/litpatch/pkg/patch"
)

// Exit codes
const (
	exitOK      = 0
	exitNoMatch = 1 // search block missing or ambiguous
	exitFailure = 2 // I/O, configuration or usage error
)

func main() {
	os.Exit(run(context.Background(), NewRootCmd()))
}

// run executes root, reports a failure on the console and returns the exit status
func run(ctx context.Context, root *cobra.Command) int {
	// Flag and argument errors happen before setupLogging; they go to stderr
	ctx = log.NewContext(ctx, log.New(root.ErrOrStderr(), zerolog.Disabled))

	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		log.FromContext(cmd.Context()).Errorf("%s: %v", cmd.Name(), err)
	}

	return exitCode(err)
}

// exitCode maps a command error onto the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case patch.IsNotFound(err), patch.IsAmbiguous(err):
		return exitNoMatch
	default:
		return exitFailure
	}
}
