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
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

const (
	// ExcerptLimit bounds the excerpt text in bytes
	ExcerptLimit = 240

	// similar lines below this score are not worth pointing at
	similarityThreshold = 0.4
)

// 🧭 AnchorSource says how an excerpt was positioned
type AnchorSource string

const (
	AnchorExplicit AnchorSource = "anchor"  // the operation's Anchor was found
	AnchorSearch   AnchorSource = "search"  // a line of the search block was found
	AnchorSimilar  AnchorSource = "similar" // the most similar document line
	AnchorStart    AnchorSource = "start"   // nothing matched, start of document
)

// 📄 Excerpt is a bounded view of the document near where a search block was expected
type Excerpt struct {
	Source     AnchorSource
	Anchor     string
	Offset     int // byte offset of the first excerpt byte
	Line       int // 1-based line of Offset
	Text       string
	Similarity float64 // only set for AnchorSimilar
}

// 🔍 FindExcerpt picks the best-effort location of a missing search block.
//
// Candidates, in order: the operation's Anchor, each non-blank line of the
// search block, the document line most similar to the first search line.
// When none of these apply the excerpt starts at the top of the document.
func FindExcerpt(document string, op Operation) Excerpt {
	if op.Anchor != "" {
		if idx := strings.Index(document, op.Anchor); idx >= 0 {
			return newExcerpt(document, idx, AnchorExplicit, op.Anchor)
		}
	}

	var first string
	for _, line := range strings.Split(op.Search, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		if idx := strings.Index(document, line); idx >= 0 {
			return newExcerpt(document, idx, AnchorSearch, line)
		}
	}

	if first != "" {
		if idx, score := mostSimilarLine(document, first); idx >= 0 {
			ex := newExcerpt(document, idx, AnchorSimilar, first)
			ex.Similarity = score
			return ex
		}
	}

	return newExcerpt(document, 0, AnchorStart, "")
}

// mostSimilarLine returns the offset of the line closest to target, or -1
func mostSimilarLine(document, target string) (int, float64) {
	best, bestScore := -1, 0.0
	offset := 0
	for _, line := range strings.SplitAfter(document, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			if score := levenshtein.Similarity(trimmed, target, nil); score > bestScore {
				best, bestScore = offset, score
			}
		}
		offset += len(line)
	}
	if bestScore < similarityThreshold {
		return -1, bestScore
	}
	return best, bestScore
}

func newExcerpt(document string, idx int, source AnchorSource, anchor string) Excerpt {
	start := strings.LastIndexByte(document[:idx], '\n') + 1
	text := document[start:]
	if len(text) > ExcerptLimit {
		n := ExcerptLimit
		for n > 0 && !utf8.RuneStart(text[n]) {
			n--
		}
		text = text[:n]
	}
	return Excerpt{
		Source: source,
		Anchor: anchor,
		Offset: start,
		Line:   LineAt(document, start),
		Text:   text,
	}
}
