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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/litpatch/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// 🏃 Runner executes an ordered list of operations against one file
type Runner struct {
	patcher *Patcher
}

// 🏗️ NewRunner creates a new runner
func NewRunner(p *Patcher) *Runner {
	return &Runner{patcher: p}
}

// 🏃 Run executes ops in order and stops at the first failure. Operations
// committed before the failure stay committed.
func (r *Runner) Run(ctx context.Context, path string, ops []patch.Operation) ([]*Report, error) {
	logger := zerolog.Ctx(ctx)
	reports := make([]*Report, 0, len(ops))

	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return reports, errors.Errorf("stopped before patch %d of %d: %w", i+1, len(ops), err)
		}

		report, err := r.patcher.Run(ctx, path, op)
		reports = append(reports, report)
		if err != nil {
			logger.Debug().Int("index", i).Int("remaining", len(ops)-i-1).Msg("stopping after failed patch")
			return reports, err
		}
	}

	return reports, nil
}
