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
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/litpatch/pkg/config"
	"github.com/walteh/litpatch/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// planFlags select the target file and the operations to run on it
type planFlags struct {
	patchFile   string
	file        string
	only        string
	mode        string
	name        string
	search      string
	searchFile  string
	replace     string
	replaceFile string
	anchor      string
}

func (f *planFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.patchFile, "patch", "p", "", "patch set file (.yaml, .yml, .hcl or .json)")
	flags.StringVarP(&f.file, "file", "f", "", "target file; overrides the patch set's target")
	flags.StringVar(&f.only, "only", "", "only run patch set entries whose name matches this glob")
	flags.StringVar(&f.mode, "mode", string(patch.ModeFirst), "match mode for patches that do not set one: first, unique or all")
	flags.StringVar(&f.name, "name", "", "label for an inline patch")
	flags.StringVar(&f.search, "search", "", "literal block to find")
	flags.StringVar(&f.searchFile, "search-file", "", "read the search block from this file")
	flags.StringVar(&f.replace, "replace", "", "literal replacement")
	flags.StringVar(&f.replaceFile, "replace-file", "", "read the replacement from this file")
	flags.StringVar(&f.anchor, "anchor", "", "text to center the excerpt on when the search block is missing")

	cmd.MarkFlagsMutuallyExclusive("search", "search-file")
	cmd.MarkFlagsMutuallyExclusive("replace", "replace-file")
	cmd.MarkFlagsMutuallyExclusive("patch", "search")
	cmd.MarkFlagsMutuallyExclusive("patch", "search-file")
}

func (f *planFlags) inline() bool {
	return f.search != "" || f.searchFile != "" || f.replace != "" || f.replaceFile != "" || f.anchor != "" || f.name != ""
}

// resolve returns the target path and the operations to run on it
func (f *planFlags) resolve(ctx context.Context) (string, []patch.Operation, error) {
	mode, err := patch.ParseMode(f.mode)
	if err != nil {
		return "", nil, errors.Errorf("--mode: %w", err)
	}

	if f.patchFile != "" {
		if f.inline() {
			return "", nil, errors.Errorf("--patch cannot be combined with inline patch flags")
		}
		return f.fromPatchSet(ctx, mode)
	}

	if f.only != "" {
		return "", nil, errors.Errorf("--only requires --patch")
	}
	return f.fromFlags(ctx, mode)
}

func (f *planFlags) fromPatchSet(ctx context.Context, mode patch.Mode) (string, []patch.Operation, error) {
	ps, err := config.Load(ctx, f.patchFile)
	if err != nil {
		return "", nil, errors.Errorf("loading %s: %w", f.patchFile, err)
	}

	ps, err = ps.Filter(f.only)
	if err != nil {
		return "", nil, errors.Errorf("filtering %s: %w", f.patchFile, err)
	}

	target := ps.Target
	if f.file != "" {
		target = f.file
	}
	if target == "" {
		return "", nil, errors.Errorf("no target: set target in %s or pass -f", f.patchFile)
	}

	ops, err := ps.Operations(mode)
	if err != nil {
		return "", nil, errors.Errorf("building operations: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("patch_set", f.patchFile).Str("target", target).Int("operations", len(ops)).Msg("resolved patch set")
	return target, ops, nil
}

func (f *planFlags) fromFlags(ctx context.Context, mode patch.Mode) (string, []patch.Operation, error) {
	if f.file == "" {
		return "", nil, errors.Errorf("-f is required")
	}

	op := patch.Operation{
		Name:    f.name,
		Search:  f.search,
		Replace: f.replace,
		Anchor:  f.anchor,
		Mode:    mode,
	}

	if f.searchFile != "" {
		data, err := os.ReadFile(f.searchFile)
		if err != nil {
			return "", nil, errors.Errorf("reading --search-file: %w", err)
		}
		op.Search = string(data)
	}
	if f.replaceFile != "" {
		data, err := os.ReadFile(f.replaceFile)
		if err != nil {
			return "", nil, errors.Errorf("reading --replace-file: %w", err)
		}
		op.Replace = string(data)
	}

	if op.Search == "" {
		return "", nil, errors.Errorf("--search, --search-file or --patch is required: %w", patch.ErrEmptySearch)
	}
	if err := op.Validate(); err != nil {
		return "", nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("target", f.file).Str("patch", op.Label()).Msg("resolved inline patch")
	return f.file, []patch.Operation{op}, nil
}
