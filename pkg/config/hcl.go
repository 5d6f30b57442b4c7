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

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses a patch set from HCL
//
// Patches are labelled blocks:
//
//	target = "internal/ui/chat/state.go"
//
//	patch "fix-newline" {
//	  search  = file("broken.txt")
//	  replace = <<EOT
//	content := strings.ReplaceAll(s, "\\n", "\n")
//	EOT
//	}
//
// Expressions see patch_dir (the directory holding the file) and file(path),
// which reads path relative to patch_dir. HCL string values, file() results
// included, are NFC-normalized; a warning is logged for non-ASCII search or
// replace text, and search_file/replace_file keep bytes exact.
func (p *HCLParser) Parse(ctx context.Context, filename string, data []byte) (*PatchSet, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	dir := filepath.Dir(filename)

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"patch_dir": cty.StringVal(dir),
		},
		Functions: map[string]function.Function{
			"file": fileFunc(dir),
		},
	}

	// Define HCL schema
	type hclPatch struct {
		Name        string `hcl:"name,label"`
		Search      string `hcl:"search,optional"`
		Replace     string `hcl:"replace,optional"`
		SearchFile  string `hcl:"search_file,optional"`
		ReplaceFile string `hcl:"replace_file,optional"`
		Anchor      string `hcl:"anchor,optional"`
		Mode        string `hcl:"mode,optional"`
	}
	type hclPatchSet struct {
		Target  string     `hcl:"target,optional"`
		Patches []hclPatch `hcl:"patch,block"`
	}

	// Decode HCL
	var hclSet hclPatchSet
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclSet)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	logger := zerolog.Ctx(ctx)
	ps := &PatchSet{Target: hclSet.Target}
	for _, hp := range hclSet.Patches {
		for _, f := range [...]struct{ field, value string }{{"search", hp.Search}, {"replace", hp.Replace}} {
			if hasNonASCII(f.value) {
				logger.Warn().Str("patch", hp.Name).Str("field", f.field).
					Msgf("HCL normalizes non-ASCII text to NFC, so %s may not be byte-exact; use %s_file instead", f.field, f.field)
			}
		}

		ps.Patches = append(ps.Patches, PatchDef{
			Name:        hp.Name,
			Search:      hp.Search,
			Replace:     hp.Replace,
			SearchFile:  hp.SearchFile,
			ReplaceFile: hp.ReplaceFile,
			Anchor:      hp.Anchor,
			Mode:        hp.Mode,
		})
	}

	return ps, nil
}

func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

// fileFunc returns an HCL function reading a file relative to baseDir
func fileFunc(baseDir string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "path", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			path := args[0].AsString()
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return cty.NilVal, errors.Errorf("reading %s: %w", path, err)
			}
			return cty.StringVal(string(data)), nil
		},
	})
}
