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
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffContext is the number of unchanged lines kept around each change.
const DiffContext = 3

// LineKind marks a line of a rendered diff
type LineKind rune

const (
	KindContext LineKind = ' '
	KindDelete  LineKind = '-'
	KindInsert  LineKind = '+'
	KindHunk    LineKind = '@'
)

// DiffLine is one line of a rendered diff, without its trailing newline
type DiffLine struct {
	Kind LineKind
	Text string
}

// Diff is a line-oriented preview of a patch
type Diff []DiffLine

// 📝 RenderDiff computes a line diff of before and after, keeping DiffContext
// unchanged lines around each change. Identical inputs give an empty Diff.
func RenderDiff(before, after string) Diff {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	type entry struct {
		kind     LineKind
		text     string
		old, new int
	}

	var all []entry
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				all = append(all, entry{KindContext, line, oldLine, newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				all = append(all, entry{KindDelete, line, oldLine, newLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				all = append(all, entry{KindInsert, line, oldLine, newLine})
				newLine++
			}
		}
	}

	keep := make([]bool, len(all))
	for i, e := range all {
		if e.kind == KindContext {
			continue
		}
		for j := max(0, i-DiffContext); j <= min(len(all)-1, i+DiffContext); j++ {
			keep[j] = true
		}
	}

	var out Diff
	inHunk := false
	for i, e := range all {
		if !keep[i] {
			inHunk = false
			continue
		}
		if !inHunk {
			out = append(out, DiffLine{Kind: KindHunk, Text: fmt.Sprintf("@@ -%d +%d @@", e.old, e.new)})
			inHunk = true
		}
		out = append(out, DiffLine{Kind: e.kind, Text: e.text})
	}
	return out
}

// String renders the diff as plain text.
func (d Diff) String() string {
	var b strings.Builder
	for _, l := range d {
		if l.Kind == KindHunk {
			b.WriteString(l.Text)
		} else {
			b.WriteRune(rune(l.Kind))
			b.WriteString(l.Text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\n")
	}
	return lines
}
