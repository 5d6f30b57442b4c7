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

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrEmptySearch is returned for operations without a search block.
	ErrEmptySearch = errors.Base("search block is empty")

	// ErrInvalidMode is returned for an unknown match mode.
	ErrInvalidMode = errors.Base("invalid match mode")
)

// ❌ NotFoundError reports that the search block is absent from the document
type NotFoundError struct {
	Name   string
	Search string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("patch %q: search block not found", e.Name)
	}
	return "search block not found"
}

// ❌ AmbiguousError reports a search block that occurs more than once under ModeUnique
type AmbiguousError struct {
	Name  string
	Count int
	Lines []int
}

func (e *AmbiguousError) Error() string {
	lines := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = fmt.Sprint(l)
	}
	msg := fmt.Sprintf("search block matches %d locations (lines %s)", e.Count, strings.Join(lines, ", "))
	if e.Name != "" {
		return fmt.Sprintf("patch %q: %s", e.Name, msg)
	}
	return msg
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAmbiguous reports whether err is, or wraps, an *AmbiguousError.
func IsAmbiguous(err error) bool {
	var ae *AmbiguousError
	return errors.As(err, &ae)
}
