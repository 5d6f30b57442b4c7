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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/litpatch/pkg/document"
	"github.com/walteh/litpatch/pkg/log"
	"github.com/walteh/litpatch/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// 🔧 MockStore is a mock implementation of the document.Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context, path string) (*document.Document, error) {
	args := m.Called(ctx, path)
	doc, _ := args.Get(0).(*document.Document)
	return doc, args.Error(1)
}

func (m *MockStore) Commit(ctx context.Context, doc *document.Document, content string) error {
	return m.Called(ctx, doc, content).Error(0)
}

func (m *MockStore) Backup(ctx context.Context, doc *document.Document) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Restore(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func quiet(t *testing.T) {
	t.Helper()
	color.NoColor = true
	pterm.DisableColor()
	t.Cleanup(func() {
		color.NoColor = false
		pterm.EnableColor()
	})
}

func writeTarget(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "writing target should succeed")
	return path
}

func readTarget(t *testing.T, path string) string {
	t.Helper()
	got, err := os.ReadFile(path)
	require.NoError(t, err, "reading target should succeed")
	return string(got)
}

func newPatcher(t *testing.T, opts Options) (*Patcher, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	if opts.Store == nil {
		opts.Store = document.NewFileStore()
	}
	opts.Logger = log.New(buf, zerolog.Disabled)
	p, err := New(opts)
	require.NoError(t, err, "New should succeed")
	return p, buf
}

func TestPatcher_Run(t *testing.T) {
	quiet(t)

	tests := []struct {
		name        string
		content     string
		op          patch.Operation
		want        string
		wantState   State
		wantReplace int
		wantErr     func(error) bool
		wantOutput  []string
	}{
		{
			name:        "single_line_replacement",
			content:     "x = 1\n",
			op:          patch.Operation{Name: "bump", Search: "x = 1", Replace: "x = 2"},
			want:        "x = 2\n",
			wantState:   StateCommitted,
			wantReplace: 1,
			wantOutput:  []string{"✓ bump", "applied (1 replacement)"},
		},
		{
			name:       "absent_block_not_found",
			content:    "hello world",
			op:         patch.Operation{Name: "bye", Search: "goodbye", Replace: "farewell"},
			want:       "hello world",
			wantState:  StateUnmatched,
			wantErr:    patch.IsNotFound,
			wantOutput: []string{"✗ bye", "search block not found", "hello world"},
		},
		{
			name:        "first_of_repeated",
			content:     "aaa",
			op:          patch.Operation{Name: "first-a", Search: "a", Replace: "b"},
			want:        "baa",
			wantState:   StateCommitted,
			wantReplace: 1,
			wantOutput:  []string{"occurs 3 times, only the first (line 1) is replaced", "applied (1 replacement)"},
		},
		{
			name:        "uppercase_first_still_warns",
			content:     "aaa",
			op:          patch.Operation{Name: "upper", Search: "a", Replace: "b", Mode: "FIRST"},
			want:        "baa",
			wantState:   StateCommitted,
			wantReplace: 1,
			wantOutput:  []string{"only the first (line 1) is replaced"},
		},
		{
			name:        "padded_first_still_warns",
			content:     "aaa",
			op:          patch.Operation{Name: "padded", Search: "a", Replace: "b", Mode: " first "},
			want:        "baa",
			wantState:   StateCommitted,
			wantReplace: 1,
			wantOutput:  []string{"only the first (line 1) is replaced"},
		},
		{
			name:       "unique_rejects_ambiguous",
			content:    "aaa",
			op:         patch.Operation{Name: "only-a", Search: "a", Replace: "b", Mode: patch.ModeUnique},
			want:       "aaa",
			wantState:  StateUnmatched,
			wantErr:    patch.IsAmbiguous,
			wantOutput: []string{"ambiguous (3 matches)"},
		},
		{
			name:        "all_replaces_every_occurrence",
			content:     "aaa",
			op:          patch.Operation{Name: "every-a", Search: "a", Replace: "b", Mode: patch.ModeAll},
			want:        "bbb",
			wantState:   StateCommitted,
			wantReplace: 3,
			wantOutput:  []string{"applied (3 replacements)"},
		},
		{
			name:        "multiline_block_with_tabs",
			content:     "func f() {\n\treturn 1\n}\n",
			op:          patch.Operation{Search: "\treturn 1\n", Replace: "\treturn 2\n"},
			want:        "func f() {\n\treturn 2\n}\n",
			wantState:   StateCommitted,
			wantReplace: 1,
			wantOutput:  []string{"✓ return 1"},
		},
		{
			name:        "deletion",
			content:     "keep\ndrop\nkeep\n",
			op:          patch.Operation{Name: "drop", Search: "drop\n"},
			want:        "keep\nkeep\n",
			wantState:   StateCommitted,
			wantReplace: 1,
		},
		{
			name:      "empty_search_is_invalid",
			content:   "abc",
			op:        patch.Operation{Name: "empty"},
			want:      "abc",
			wantState: StateFailed,
			wantErr:   func(err error) bool { return errors.Is(err, patch.ErrEmptySearch) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTarget(t, tt.content)
			p, buf := newPatcher(t, Options{})

			report, err := p.Run(testContext(), path, tt.op)
			if tt.wantErr != nil {
				require.Error(t, err, "Run should fail")
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				assert.Equal(t, err, report.Err, "report should carry the error")
			} else {
				require.NoError(t, err, "Run should succeed")
			}

			assert.Equal(t, tt.wantState, report.State, "state should match")
			assert.True(t, report.State.Terminal(), "state should be terminal")
			assert.Equal(t, tt.wantReplace, report.Replacements, "replacement count should match")
			assert.Equal(t, tt.want, readTarget(t, path), "file content should match")

			for _, want := range tt.wantOutput {
				assert.Contains(t, buf.String(), want, "console output should mention %q", want)
			}
		})
	}
}

func TestPatcher_NotFoundExcerpt(t *testing.T) {
	quiet(t)

	path := writeTarget(t, "package chat\n\nfunc render() {\n\tcontent := strings.ReplaceAll(s, \"\\\\n\", \"\\n\")\n}\n")
	p, buf := newPatcher(t, Options{})

	report, err := p.Run(testContext(), path, patch.Operation{
		Name:    "fix",
		Search:  "content := strings.ReplaceAll(s, \"\\\\\\\\n\", \"\\n\")",
		Replace: "content := s",
		Anchor:  "content :=",
	})
	require.Error(t, err)
	require.NotNil(t, report.Excerpt, "excerpt should be attached")
	assert.Equal(t, patch.AnchorExplicit, report.Excerpt.Source, "anchor should locate the excerpt")
	assert.Equal(t, 4, report.Excerpt.Line, "excerpt should start on the anchor's line")
	assert.Contains(t, buf.String(), `near "content :=", line 4`, "box title should name anchor and line")
}

func TestPatcher_RunTwiceFails(t *testing.T) {
	quiet(t)

	path := writeTarget(t, "x = 1\n")
	p, _ := newPatcher(t, Options{})
	op := patch.Operation{Search: "x = 1\n", Replace: "x = 2\n"}

	_, err := p.Run(testContext(), path, op)
	require.NoError(t, err, "first run should succeed")

	report, err := p.Run(testContext(), path, op)
	require.Error(t, err, "second run should fail")
	assert.True(t, patch.IsNotFound(err), "second run should not find the search block")
	assert.Equal(t, StateUnmatched, report.State)
	assert.Equal(t, "x = 2\n", readTarget(t, path), "file should keep the first result")
}

func TestPatcher_DryRun(t *testing.T) {
	quiet(t)

	path := writeTarget(t, "a\nx = 1\nb\n")
	p, buf := newPatcher(t, Options{DryRun: true})

	report, err := p.Run(testContext(), path, patch.Operation{Name: "bump", Search: "x = 1", Replace: "x = 2"})
	require.NoError(t, err, "dry run should succeed")

	assert.Equal(t, StateMatched, report.State, "dry run should stop at matched")
	assert.Equal(t, "a\nx = 1\nb\n", readTarget(t, path), "dry run should not write")
	require.NotEmpty(t, report.Diff, "dry run should render a diff")
	assert.Contains(t, buf.String(), "⟳ bump")
	assert.Contains(t, buf.String(), "-x = 1")
	assert.Contains(t, buf.String(), "+x = 2")
}

func TestPatcher_CheckOnly(t *testing.T) {
	quiet(t)

	path := writeTarget(t, "aaa")
	p, buf := newPatcher(t, Options{CheckOnly: true})

	report, err := p.Run(testContext(), path, patch.Operation{Name: "a", Search: "a", Replace: "b", Mode: patch.ModeAll})
	require.NoError(t, err)
	assert.Equal(t, StateMatched, report.State)
	assert.Equal(t, 3, report.Occurrences)
	assert.Nil(t, report.Diff, "check should not render a diff")
	assert.Equal(t, "aaa", readTarget(t, path), "check should not write")
	assert.Contains(t, buf.String(), "found (3 occurrences)")
}

func TestPatcher_Backup(t *testing.T) {
	quiet(t)

	path := writeTarget(t, "one two\n")
	p, _ := newPatcher(t, Options{Backup: true})

	first, err := p.Run(testContext(), path, patch.Operation{Search: "one", Replace: "1"})
	require.NoError(t, err)
	assert.Equal(t, document.BackupPath(path), first.Backup, "first commit should take a backup")

	second, err := p.Run(testContext(), path, patch.Operation{Search: "two", Replace: "2"})
	require.NoError(t, err)
	assert.Empty(t, second.Backup, "backup should be taken once per file")

	assert.Equal(t, "1 2\n", readTarget(t, path))
	assert.Equal(t, "one two\n", readTarget(t, document.BackupPath(path)), "backup should hold the original")
}

func TestPatcher_StoreFailures(t *testing.T) {
	quiet(t)
	ctx := testContext()
	doc := &document.Document{Path: "state.go", Content: "x = 1\n"}
	ioErr := &document.IOError{Op: "write", Path: "state.go", Err: os.ErrPermission}

	t.Run("load_failure", func(t *testing.T) {
		store := &MockStore{}
		store.On("Load", mock.Anything, "state.go").Return(nil, ioErr)
		p, _ := newPatcher(t, Options{Store: store})

		report, err := p.Run(ctx, "state.go", patch.Operation{Search: "x", Replace: "y"})
		require.Error(t, err)
		assert.Equal(t, StateFailed, report.State)

		var got *document.IOError
		assert.True(t, errors.As(err, &got), "error should be an IOError")
		store.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("commit_failure", func(t *testing.T) {
		store := &MockStore{}
		store.On("Load", mock.Anything, "state.go").Return(doc, nil)
		store.On("Commit", mock.Anything, doc, "x = 2\n").Return(ioErr)
		p, buf := newPatcher(t, Options{Store: store})

		report, err := p.Run(ctx, "state.go", patch.Operation{Name: "bump", Search: "x = 1", Replace: "x = 2"})
		require.Error(t, err)
		assert.Equal(t, StateFailed, report.State, "commit failure should end in failed")
		assert.Equal(t, 1, report.Replacements, "the match should still be reported")

		var got *document.IOError
		assert.True(t, errors.As(err, &got), "error should be an IOError")
		assert.Contains(t, buf.String(), "✗ bump")
		store.AssertExpectations(t)
	})

	t.Run("concurrent_modification", func(t *testing.T) {
		store := &MockStore{}
		store.On("Load", mock.Anything, "state.go").Return(doc, nil)
		store.On("Commit", mock.Anything, doc, mock.Anything).Return(errors.Errorf("committing state.go: %w", document.ErrConcurrentModification))
		p, _ := newPatcher(t, Options{Store: store})

		_, err := p.Run(ctx, "state.go", patch.Operation{Search: "x = 1", Replace: "x = 2"})
		assert.True(t, errors.Is(err, document.ErrConcurrentModification))
	})

	t.Run("backup_failure_skips_commit", func(t *testing.T) {
		store := &MockStore{}
		store.On("Load", mock.Anything, "state.go").Return(doc, nil)
		store.On("Backup", mock.Anything, doc).Return("", ioErr)
		p, _ := newPatcher(t, Options{Store: store, Backup: true})

		report, err := p.Run(ctx, "state.go", patch.Operation{Search: "x = 1", Replace: "x = 2"})
		require.Error(t, err)
		assert.Equal(t, StateFailed, report.State)
		store.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid_operation_skips_load", func(t *testing.T) {
		store := &MockStore{}
		p, _ := newPatcher(t, Options{Store: store})

		_, err := p.Run(ctx, "state.go", patch.Operation{Search: "x", Mode: "sometimes"})
		assert.True(t, errors.Is(err, patch.ErrInvalidMode))
		store.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
	})
}

func TestNew(t *testing.T) {
	logger := log.New(&bytes.Buffer{}, zerolog.Disabled)

	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{name: "valid", opts: Options{Store: document.NewFileStore(), Logger: logger}},
		{name: "missing_store", opts: Options{Logger: logger}, wantErr: "store is required"},
		{name: "missing_logger", opts: Options{Store: document.NewFileStore()}, wantErr: "logger is required"},
		{name: "backup_with_dry_run", opts: Options{Store: document.NewFileStore(), Logger: logger, DryRun: true, Backup: true}, wantErr: "dry run"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "matched", StateMatched.String())
	assert.Equal(t, "unmatched", StateUnmatched.String())
	assert.Equal(t, "committed", StateCommitted.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.False(t, StateMatched.Terminal())
}
