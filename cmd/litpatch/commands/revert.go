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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/litpatch/cmd/litpatch/opts"
	"github.com/walteh/litpatch/pkg/log"
	"github.com/walteh/litpatch/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// NewRevertCmd creates the revert command
func NewRevertCmd(o *opts.RootOpts) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "revert",
		Short: "Restore a file from the backup taken by apply --backup",
		Long: `Revert replaces FILE with FILE.bak, written by apply --backup, and then
removes the backup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "revert").Logger().WithContext(cmd.Context())

			logger := log.FromContext(ctx)
			if err := o.Store.Restore(ctx, file); err != nil {
				return errors.Errorf("reverting %s: %w", file, err)
			}

			logger.Successf("restored %s from %s", file, document.BackupPath(file))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file to restore")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
