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
Package operation drives patch operations from load to commit.

	             +---------+
	             | Loaded  |
	             +----+----+
	                  |
	      +-----------+-----------+
	      |           |           |
	+-----+----+ +----+-----+ +---+----+
	| Matched  | | Unmatched| | Failed |
	+-----+----+ +----------+ +--------+
	      |
	+-----+-----+
	|           |
	+-----------+ +--------+
	| Committed | | Failed |
	+-----------+ +--------+

🎯 Purpose:
- Loads the target through a document.Store
- Matches and applies one patch.Operation in memory
- Commits atomically, or stops at Matched for dry runs and checks
- Reports each outcome through pkg/log

🔄 Flow:
1. Patcher.Run validates the operation and loads the document
2. A missing search block ends in Unmatched with an excerpt of the file
3. A match is committed (after an optional .bak backup) or previewed
4. Runner.Run repeats this for an ordered list and stops at the first error

Each operation runs exactly once. A failed operation never touches the file;
operations committed before it are left in place.

🔍 Example:

	p, err := operation.New(operation.Options{
		Store:  document.NewFileStore(),
		Logger: log.New(os.Stdout, zerolog.InfoLevel),
	})
	reports, err := operation.NewRunner(p).Run(ctx, "state.go", ops)
*/
package operation
