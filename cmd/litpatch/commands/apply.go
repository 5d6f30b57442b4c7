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

// NewApplyCmd creates the apply command
func NewApplyCmd(o *opts.RootOpts) *cobra.Command {
	var (
		plan   planFlags
		dryRun bool
		backup bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Replace literal blocks in a file",
		Long: `Apply finds each search block in the target file, byte for byte, and
replaces it. Patches run in order, each exactly once.

It will:
1. Load the target file
2. Locate the search block (first, unique or all occurrences)
3. Write the patched file atomically, or show a diff with --dry-run
4. Stop at the first patch that does not match, with an excerpt of the file

HCL patch sets normalize non-ASCII strings to Unicode NFC. Use search_file and
replace_file (or --search-file/--replace-file) when such text must stay byte
exact; YAML and JSON values are kept as written.`,
		Example: `  litpatch apply -f state.go --search 'x = 1' --replace 'x = 2'
  litpatch apply -p patches.yaml --only 'ui/*' --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "apply").Logger().WithContext(cmd.Context())

			target, ops, err := plan.resolve(ctx)
			if err != nil {
				return err
			}

			logger := log.FromContext(ctx)
			p, err := operation.New(operation.Options{
				Store:  o.Store,
				Logger: logger,
				DryRun: dryRun,
				Backup: backup,
			})
			if err != nil {
				return errors.Errorf("creating patcher: %w", err)
			}

			verb := "applying"
			if dryRun {
				verb = "previewing"
			}
			logger.Header(fmt.Sprintf("%s %d patch(es) to %s", verb, len(ops), target))

			reports, err := operation.NewRunner(p).Run(ctx, target, ops)
			logger.LogNewline()
			if err != nil {
				return err
			}

			if dryRun {
				logger.Infof("dry run: %d patch(es) would apply, nothing written", len(reports))
				return nil
			}
			logger.Successf("%d patch(es) applied to %s", len(reports), target)
			if backup {
				logger.Infof("backup saved; undo with: litpatch revert -f %s", target)
			}
			return nil
		},
	}

	plan.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the diff without writing")
	cmd.Flags().BoolVar(&backup, "backup", false, "save the original as FILE.bak before the first write")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "backup")

	return cmd
}
