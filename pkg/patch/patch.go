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

package patch

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// NotFound is returned by Locate when the search block is absent.
const NotFound = -1

// 🎯 Mode selects what happens when the search block occurs more than once
type Mode string

const (
	ModeFirst  Mode = "first"  // replace the earliest occurrence only
	ModeUnique Mode = "unique" // refuse to patch when more than one occurrence exists
	ModeAll    Mode = "all"    // replace every non-overlapping occurrence
)

// Modes lists the accepted match modes in the order they are documented.
var Modes = []Mode{ModeFirst, ModeUnique, ModeAll}

// 🔍 ParseMode converts a user supplied mode, treating "" as ModeFirst
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeFirst, nil
	case ModeFirst, ModeUnique, ModeAll:
		return m, nil
	default:
		return "", errors.Errorf("%w: %q (want one of first, unique, all)", ErrInvalidMode, s)
	}
}

// 🔄 Operation is a single literal patch: find Search, put Replace in its place
type Operation struct {
	// Name labels the operation in reports
	Name string

	// Search is the exact block to find; line breaks and indentation are significant
	Search string

	// Replace is substituted for Search; empty deletes the block
	Replace string

	// Anchor is an optional literal used only to position the not-found excerpt
	Anchor string

	// Mode is the match policy; empty means ModeFirst
	Mode Mode
}

// 📦 Result is the outcome of applying an Operation to a document
type Result struct {
	// Document is the patched content
	Document string

	// Positions are the offsets, in the original document, of the replaced occurrences
	Positions []int

	// Occurrences is how many times Search appeared in the original document
	Occurrences int

	// Mode is the normalized match policy that was applied
	Mode Mode
}

// Replacements returns the number of occurrences that were substituted.
func (r *Result) Replacements() int {
	return len(r.Positions)
}

// Label returns the operation's name, or a short form of its search block.
func (o Operation) Label() string {
	if o.Name != "" {
		return o.Name
	}
	line, _, _ := strings.Cut(strings.TrimSpace(o.Search), "\n")
	if r := []rune(line); len(r) > 40 {
		line = string(r[:40]) + "…"
	}
	return line
}

// 🔍 Validate checks the operation can be applied
func (o Operation) Validate() error {
	if o.Search == "" {
		return errors.Errorf("operation %q: %w", o.Name, ErrEmptySearch)
	}
	if _, err := ParseMode(string(o.Mode)); err != nil {
		return errors.Errorf("operation %q: %w", o.Name, err)
	}
	return nil
}

// 🎯 Locate returns the offset of the first literal occurrence of search, or NotFound
func Locate(document, search string) int {
	if search == "" {
		return NotFound
	}
	return strings.Index(document, search)
}

// 🗺️ LocateAll returns the offsets of every non-overlapping occurrence, in document order
func LocateAll(document, search string) []int {
	if search == "" {
		return nil
	}

	var positions []int
	for pos := 0; pos <= len(document); {
		idx := strings.Index(document[pos:], search)
		if idx == -1 {
			break
		}
		positions = append(positions, pos+idx)
		pos += idx + len(search)
	}
	return positions
}

// 🔄 Apply replaces the first occurrence of search in document with replacement
func Apply(document, search, replacement string) (string, error) {
	if search == "" {
		return "", errors.WithStack(ErrEmptySearch)
	}
	pos := Locate(document, search)
	if pos == NotFound {
		return "", &NotFoundError{Search: search}
	}
	return splice(document, pos, len(search), replacement), nil
}

// 🔄 Apply runs the operation against document according to its Mode
func (o Operation) Apply(document string) (*Result, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	mode, _ := ParseMode(string(o.Mode))

	positions := LocateAll(document, o.Search)
	if len(positions) == 0 {
		return nil, &NotFoundError{Name: o.Name, Search: o.Search}
	}

	result := &Result{Occurrences: len(positions), Mode: mode}

	switch mode {
	case ModeUnique:
		if len(positions) > 1 {
			return nil, &AmbiguousError{
				Name:  o.Name,
				Count: len(positions),
				Lines: lineNumbers(document, positions),
			}
		}
		fallthrough
	case ModeFirst:
		result.Positions = positions[:1]
		result.Document = splice(document, positions[0], len(o.Search), o.Replace)
	case ModeAll:
		result.Positions = positions
		result.Document = strings.ReplaceAll(document, o.Search, o.Replace)
	}

	return result, nil
}

// splice replaces document[pos:pos+n] with replacement
func splice(document string, pos, n int, replacement string) string {
	var b strings.Builder
	b.Grow(len(document) - n + len(replacement))
	b.WriteString(document[:pos])
	b.WriteString(replacement)
	b.WriteString(document[pos+n:])
	return b.String()
}

// LineAt returns the 1-based line number containing offset.
func LineAt(document string, offset int) int {
	if offset > len(document) {
		offset = len(document)
	}
	return strings.Count(document[:offset], "\n") + 1
}

func lineNumbers(document string, positions []int) []int {
	lines := make([]int, len(positions))
	for i, pos := range positions {
		lines[i] = LineAt(document, pos)
	}
	return lines
}
