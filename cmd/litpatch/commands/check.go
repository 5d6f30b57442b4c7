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

package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/litpatch/cmd/litpatch/opts"
	"github.com/walteh/litpatch/pkg/log"
	"github.com/walteh/litpatch/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates the check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	var plan planFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that every search block matches, without writing",
		Long: `Check runs the same matching as apply, in order, but never writes the
target. Each patch sees the in-memory result of the ones before it.
It exits 1 at the first search block that is missing or ambiguous.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "check").Logger().WithContext(cmd.Context())

			target, ops, err := plan.resolve(ctx)
			if err != nil {
				return err
			}

			logger := log.FromContext(ctx)
			p, err := operation.New(operation.Options{
				Store:     o.Store,
				Logger:    logger,
				CheckOnly: true,
			})
			if err != nil {
				return errors.Errorf("creating patcher: %w", err)
			}

			logger.Header(fmt.Sprintf("checking %d patch(es) against %s", len(ops), target))

			reports, err := operation.NewRunner(p).Run(ctx, target, ops)
			logger.LogNewline()
			if err != nil {
				return err
			}

			logger.Successf("all %d patch(es) match %s", len(reports), target)
			return nil
		},
	}

	plan.register(cmd)

	return cmd
}
