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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/litpatch/pkg/patch"
)

// 🎨 Display configuration
const (
	entryIndent = 4  // spaces to indent patch entries
	nameWidth   = 30 // width for the patch name
	pathWidth   = 30 // width for the target path
	tabWidth    = 4  // spaces per tab inside excerpt boxes
)

// 🎯 PatchStatus is the console category of a patch outcome
type PatchStatus int

const (
	PatchApplied PatchStatus = iota // committed to disk
	PatchPreview                    // dry run, nothing written
	PatchMatched                    // check only, search block present
	PatchFailed                     // not found, ambiguous or I/O failure
)

// 🎯 PatchEntry represents a patch outcome for logging
type PatchEntry struct {
	Name         string      // Patch label
	Path         string      // Target file
	Status       PatchStatus // Outcome category
	Detail       string      // Short status text
	Replacements int         // Number of replacements made
	Occurrences  int         // Occurrences of the search block
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatPatchEntry formats a patch outcome for display
func (l *Logger) formatPatchEntry(e PatchEntry) string {
	var symbol rune
	var symbolColor color.Attribute
	switch e.Status {
	case PatchApplied:
		symbol = '✓'
		symbolColor = color.FgGreen
	case PatchPreview:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case PatchMatched:
		symbol = '•'
		symbolColor = color.FgCyan
	default:
		symbol = '✗'
		symbolColor = color.FgRed
	}

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", entryIndent),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, e.Name),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", pathWidth, e.Path)),
		e.Detail)
}

// 📝 LogPatch logs a patch outcome
func (l *Logger) LogPatch(ctx context.Context, e PatchEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatPatchEntry(e))

	ev := l.zlog.Info()
	if e.Status == PatchFailed {
		ev = l.zlog.Error()
	}
	ev.Str("patch", e.Name).
		Str("path", e.Path).
		Str("detail", e.Detail).
		Int("replacements", e.Replacements).
		Int("occurrences", e.Occurrences).
		Msg("patch operation")
}

// 📦 Excerpt prints a boxed view of document text near a failed match
func (l *Logger) Excerpt(ex patch.Excerpt) {
	l.mu.Lock()
	defer l.mu.Unlock()

	title := fmt.Sprintf("line %d", ex.Line)
	switch ex.Source {
	case patch.AnchorExplicit, patch.AnchorSearch:
		title = fmt.Sprintf("near %q, line %d", ex.Anchor, ex.Line)
	case patch.AnchorSimilar:
		title = fmt.Sprintf("closest line (%.0f%% similar), line %d", ex.Similarity*100, ex.Line)
	case patch.AnchorStart:
		title = "start of file"
	}

	text := strings.ReplaceAll(ex.Text, "\t", strings.Repeat(" ", tabWidth))
	text = strings.TrimRight(text, "\n")
	if text == "" {
		text = "(empty)"
	}

	box := pterm.DefaultBox.WithTitle(title).Sprint(text)
	fmt.Fprintln(l.console, box)

	l.zlog.Debug().
		Str("source", string(ex.Source)).
		Str("anchor", ex.Anchor).
		Int("line", ex.Line).
		Int("offset", ex.Offset).
		Msg("excerpt")
}

// 📝 Diff prints a rendered diff with coloured lines
func (l *Logger) Diff(d patch.Diff) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range d {
		switch line.Kind {
		case patch.KindHunk:
			fmt.Fprintln(l.console, color.New(color.FgCyan).Sprint(line.Text))
		case patch.KindDelete:
			fmt.Fprintln(l.console, color.New(color.FgRed).Sprint("-"+line.Text))
		case patch.KindInsert:
			fmt.Fprintln(l.console, color.New(color.FgGreen).Sprint("+"+line.Text))
		default:
			fmt.Fprintln(l.console, " "+line.Text)
		}
	}
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("litpatch")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
