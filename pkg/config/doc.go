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

/*
Package config loads patch set files for litpatch.

	            +-------------+
	            |  PatchSet   |
	            |  (target +  |
	            |   patches)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   HCL    | |   JSON   |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Reads an ordered list of literal patches for one target file
- Picks a parser by file extension
- Resolves search_file and replace_file against the patch file's directory

🔄 Flow:
1. Load reads the file and asks GetParser for a parser
2. The parser decodes strictly; unknown keys are errors
3. Validate names unnamed patches patch-N and rejects conflicting fields
4. File references are read in, so every PatchDef carries literal text
5. Filter narrows by name glob, Operations converts to patch.Operation

📝 Example (YAML):

	target: internal/ui/chat/state.go
	patches:
	  - name: fix-newline
	    search_file: broken.txt
	    replace: |
	      content := strings.ReplaceAll(s, "\\n", "\n")
	    anchor: content :=

Relative target paths are left alone here; callers resolve them against the
working directory.
*/
package config
