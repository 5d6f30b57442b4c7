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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDiff(t *testing.T) {
	numbered := func(n int, changed map[int]string) string {
		var b strings.Builder
		for i := 1; i <= n; i++ {
			if s, ok := changed[i]; ok {
				b.WriteString(s + "\n")
				continue
			}
			fmt.Fprintf(&b, "l%d\n", i)
		}
		return b.String()
	}

	tests := []struct {
		name   string
		before string
		after  string
		want   string
	}{
		{
			name:   "single_line_change",
			before: "x = 1\n",
			after:  "x = 2\n",
			want:   "@@ -1 +1 @@\n-x = 1\n+x = 2\n",
		},
		{
			name:   "identical",
			before: "same\n",
			after:  "same\n",
			want:   "",
		},
		{
			name:   "context_is_trimmed",
			before: numbered(10, nil),
			after:  numbered(10, map[int]string{5: "L5"}),
			want:   "@@ -2 +2 @@\n l2\n l3\n l4\n-l5\n+L5\n l6\n l7\n l8\n",
		},
		{
			name:   "separate_hunks",
			before: numbered(12, nil),
			after:  numbered(12, map[int]string{1: "L1", 12: "L12"}),
			want:   "@@ -1 +1 @@\n-l1\n+L1\n l2\n l3\n l4\n@@ -9 +9 @@\n l9\n l10\n l11\n-l12\n+L12\n",
		},
		{
			name:   "insertion",
			before: "a\nc\n",
			after:  "a\nb\nc\n",
			want:   "@@ -1 +1 @@\n a\n+b\n c\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderDiff(tt.before, tt.after)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
