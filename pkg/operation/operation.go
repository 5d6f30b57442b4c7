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
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/litpatch/pkg/document"
	"github.com/walteh/litpatch/pkg/log"
	"github.com/walteh/litpatch/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// 🚦 State is where a patch operation ended up
type State int

const (
	StateLoaded    State = iota // document read, nothing decided yet
	StateMatched                // search block located; dry run and check stop here
	StateUnmatched              // search block absent or ambiguous
	StateCommitted              // patched document written
	StateFailed                 // invalid operation or storage failure
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateMatched:
		return "matched"
	case StateUnmatched:
		return "unmatched"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateUnmatched || s == StateCommitted || s == StateFailed
}

// 📋 Report describes what happened to one operation
type Report struct {
	Name         string
	Path         string
	State        State
	Replacements int
	Occurrences  int
	Excerpt      *patch.Excerpt // set when the search block was not found
	Diff         patch.Diff     // set on dry run
	Backup       string         // backup path, when one was taken
	Err          error
}

// 🔧 Options contains configuration for the patcher
type Options struct {
	// Store loads and commits target documents
	Store document.Store
	// Logger reports outcomes on the console
	Logger *log.Logger
	// DryRun applies in memory and renders a diff without writing
	DryRun bool
	// CheckOnly stops after matching
	CheckOnly bool
	// Backup saves the original next to the target before the first commit
	Backup bool
}

// 🩹 Patcher runs single patch operations against files
type Patcher struct {
	store     document.Store
	logger    *log.Logger
	dryRun    bool
	checkOnly bool
	backup    bool

	// pending holds in-memory results per path when nothing is written, so
	// later operations see earlier ones
	pending  map[string]string
	backedUp map[string]bool
}

// 🏭 New creates a new patcher with the given options
func New(opts Options) (*Patcher, error) {
	if opts.Store == nil {
		return nil, errors.Errorf("store is required")
	}
	if opts.Logger == nil {
		return nil, errors.Errorf("logger is required")
	}
	if opts.DryRun && opts.Backup {
		return nil, errors.Errorf("backup has no effect on a dry run")
	}
	return &Patcher{
		store:     opts.Store,
		logger:    opts.Logger,
		dryRun:    opts.DryRun,
		checkOnly: opts.CheckOnly,
		backup:    opts.Backup,
		pending:   make(map[string]string),
		backedUp:  make(map[string]bool),
	}, nil
}

func (p *Patcher) writes() bool {
	return !p.dryRun && !p.checkOnly
}

// 🎯 Run applies op to the file at path, once
func (p *Patcher) Run(ctx context.Context, path string, op patch.Operation) (*Report, error) {
	report := &Report{Name: op.Label(), Path: path, State: StateLoaded}
	logger := zerolog.Ctx(ctx).With().Str("patch", report.Name).Str("path", path).Logger()

	if err := op.Validate(); err != nil {
		return p.fail(ctx, report, err)
	}

	doc, err := p.store.Load(ctx, path)
	if err != nil {
		return p.fail(ctx, report, err)
	}
	if content, ok := p.pending[path]; ok {
		doc.Content = content
	}
	logger.Debug().Int("bytes", len(doc.Content)).Msg("document loaded")

	before := doc.Content
	res, err := op.Apply(before)
	if err != nil {
		return p.unmatched(ctx, report, before, op, err)
	}

	report.State = StateMatched
	report.Occurrences = res.Occurrences
	report.Replacements = res.Replacements()
	logger.Debug().Ints("positions", res.Positions).Int("occurrences", res.Occurrences).Msg("search block matched")

	if res.Mode == patch.ModeFirst && res.Occurrences > 1 {
		p.logger.Warningf("%s: search block occurs %d times, only the first (line %d) is replaced",
			report.Name, res.Occurrences, patch.LineAt(before, res.Positions[0]))
	}

	if p.checkOnly {
		p.pending[path] = res.Document
		p.logger.LogPatch(ctx, p.entry(report, log.PatchMatched, "found ("+plural(res.Occurrences, "occurrence")+")"))
		return report, nil
	}

	if p.dryRun {
		p.pending[path] = res.Document
		report.Diff = patch.RenderDiff(before, res.Document)
		p.logger.LogPatch(ctx, p.entry(report, log.PatchPreview, "would apply ("+plural(report.Replacements, "replacement")+")"))
		p.logger.Diff(report.Diff)
		return report, nil
	}

	if p.backup && !p.backedUp[path] {
		backup, err := p.store.Backup(ctx, doc)
		if err != nil {
			return p.fail(ctx, report, errors.Errorf("backing up %s: %w", path, err))
		}
		p.backedUp[path] = true
		report.Backup = backup
	}

	if err := p.store.Commit(ctx, doc, res.Document); err != nil {
		return p.fail(ctx, report, errors.Errorf("committing %s: %w", path, err))
	}

	report.State = StateCommitted
	p.logger.LogPatch(ctx, p.entry(report, log.PatchApplied, "applied ("+plural(report.Replacements, "replacement")+")"))
	return report, nil
}

// unmatched records a search block that was absent or ambiguous
func (p *Patcher) unmatched(ctx context.Context, report *Report, content string, op patch.Operation, err error) (*Report, error) {
	switch {
	case patch.IsNotFound(err):
		ex := patch.FindExcerpt(content, op)
		report.State = StateUnmatched
		report.Excerpt = &ex
		report.Err = err
		p.logger.LogPatch(ctx, p.entry(report, log.PatchFailed, "search block not found"))
		p.logger.Excerpt(ex)
		return report, err
	case patch.IsAmbiguous(err):
		var amb *patch.AmbiguousError
		errors.As(err, &amb)
		report.State = StateUnmatched
		report.Occurrences = amb.Count
		report.Err = err
		p.logger.LogPatch(ctx, p.entry(report, log.PatchFailed, fmt.Sprintf("ambiguous (%d matches)", amb.Count)))
		return report, err
	default:
		return p.fail(ctx, report, err)
	}
}

func (p *Patcher) fail(ctx context.Context, report *Report, err error) (*Report, error) {
	report.State = StateFailed
	report.Err = err
	p.logger.LogPatch(ctx, p.entry(report, log.PatchFailed, err.Error()))
	return report, err
}

func (p *Patcher) entry(report *Report, status log.PatchStatus, detail string) log.PatchEntry {
	return log.PatchEntry{
		Name:         report.Name,
		Path:         report.Path,
		Status:       status,
		Detail:       detail,
		Replacements: report.Replacements,
		Occurrences:  report.Occurrences,
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
