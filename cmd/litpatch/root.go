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
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/litpatch/cmd/litpatch/commands"
	"github.com/walteh/litpatch/cmd/litpatch/opts"
	"github.com/walteh/litpatch/pkg/document"
	"github.com/walteh/litpatch/pkg/log"
)

// NewRootCmd creates the litpatch command tree
func NewRootCmd() *cobra.Command {
	o := &opts.RootOpts{
		Store: document.NewFileStore(),
	}

	rootCmd := &cobra.Command{
		Use:   "litpatch",
		Short: "Exact-match literal text patcher",
		Long: `litpatch replaces literal blocks of text in files. A search block must
appear in the file byte for byte; there is no fuzzy matching, no regex and no
whitespace normalization. Writes are atomic, and a missing block leaves the
file untouched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd, o)
		},
	}

	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewApplyCmd(o),
		commands.NewCheckCmd(o),
		commands.NewRevertCmd(o),
		newVersionCmd(),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging puts a zerolog logger for the selected level, and the console
// logger for the command's output, into the command context
func setupLogging(cmd *cobra.Command, o *opts.RootOpts) {
	out := cmd.ErrOrStderr()
	if out == os.Stderr {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
		})
	}
	logger := zerolog.New(out).Level(o.Level()).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())
	ctx = log.NewContext(ctx, o.NewLogger(cmd.OutOrStdout()))
	cmd.SetContext(ctx)
}
