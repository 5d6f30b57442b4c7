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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/litpatch/pkg/patch"
)

func TestRunner_Run(t *testing.T) {
	quiet(t)

	t.Run("applies_in_order", func(t *testing.T) {
		path := writeTarget(t, "x = 1\n")
		p, _ := newPatcher(t, Options{})

		reports, err := NewRunner(p).Run(testContext(), path, []patch.Operation{
			{Name: "one", Search: "x = 1", Replace: "x = 2"},
			{Name: "two", Search: "x = 2", Replace: "x = 3"},
		})
		require.NoError(t, err, "Run should succeed")
		require.Len(t, reports, 2)
		assert.Equal(t, StateCommitted, reports[0].State)
		assert.Equal(t, StateCommitted, reports[1].State)
		assert.Equal(t, "x = 3\n", readTarget(t, path), "later patches should see earlier ones")
	})

	t.Run("stops_at_first_failure", func(t *testing.T) {
		path := writeTarget(t, "a b c\n")
		p, _ := newPatcher(t, Options{})

		reports, err := NewRunner(p).Run(testContext(), path, []patch.Operation{
			{Name: "a", Search: "a", Replace: "A"},
			{Name: "missing", Search: "z", Replace: "Z"},
			{Name: "c", Search: "c", Replace: "C"},
		})
		require.Error(t, err)
		assert.True(t, patch.IsNotFound(err))
		require.Len(t, reports, 2, "no report past the failure")
		assert.Equal(t, StateUnmatched, reports[1].State)
		assert.Equal(t, "A b c\n", readTarget(t, path), "earlier commits should stay, later patches should not run")
	})

	t.Run("dry_run_chains_in_memory", func(t *testing.T) {
		path := writeTarget(t, "x = 1\n")
		p, _ := newPatcher(t, Options{DryRun: true})

		reports, err := NewRunner(p).Run(testContext(), path, []patch.Operation{
			{Search: "x = 1", Replace: "x = 2"},
			{Search: "x = 2", Replace: "x = 3"},
		})
		require.NoError(t, err, "second patch should see the first in memory")
		require.Len(t, reports, 2)
		assert.Equal(t, "x = 1\n", readTarget(t, path), "nothing should be written")
	})

	t.Run("cancelled_context", func(t *testing.T) {
		path := writeTarget(t, "x = 1\n")
		p, _ := newPatcher(t, Options{})

		ctx, cancel := context.WithCancel(testContext())
		cancel()

		reports, err := NewRunner(p).Run(ctx, path, []patch.Operation{{Search: "x", Replace: "y"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, reports)
		assert.Equal(t, "x = 1\n", readTarget(t, path))
	})
}
