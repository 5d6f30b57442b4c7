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
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/litpatch/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for patch set parsers
type Parser interface {
	// 📝 Parse parses a patch set; filename is used for diagnostics and relative paths
	Parse(ctx context.Context, filename string, data []byte) (*PatchSet, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 PatchDef is one patch as written in a patch set file.
//
// In HCL files, inline search and replace strings (and file() results) are
// NFC-normalized by the HCL runtime. Non-ASCII blocks that must match byte for
// byte belong in search_file and replace_file, which are read verbatim.
type PatchDef struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`                 // Label, defaults to patch-N
	Search      string `json:"search,omitempty" yaml:"search,omitempty"`             // Literal block to find
	Replace     string `json:"replace,omitempty" yaml:"replace,omitempty"`           // Literal replacement
	SearchFile  string `json:"search_file,omitempty" yaml:"search_file,omitempty"`   // Read Search from this file
	ReplaceFile string `json:"replace_file,omitempty" yaml:"replace_file,omitempty"` // Read Replace from this file
	Anchor      string `json:"anchor,omitempty" yaml:"anchor,omitempty"`             // Excerpt hint on failure
	Mode        string `json:"mode,omitempty" yaml:"mode,omitempty"`                 // first, unique or all
}

// 📚 PatchSet is an ordered list of patches for one target file
type PatchSet struct {
	Target  string     `json:"target,omitempty" yaml:"target,omitempty"`
	Patches []PatchDef `json:"patches" yaml:"patches"`

	location string
}

// 🎯 Load reads, validates and resolves a patch set file
func Load(ctx context.Context, path string) (*PatchSet, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading patch set")

	// Read patch set file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading patch set: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse patch set
	ps, err := p.Parse(ctx, path, data)
	if err != nil {
		return nil, errors.Errorf("parsing patch set: %w", err)
	}
	ps.location = path

	// Validate
	if err := ps.Validate(); err != nil {
		return nil, errors.Errorf("validating patch set: %w", err)
	}

	// Pull in search_file / replace_file contents
	if err := ps.resolveFiles(); err != nil {
		return nil, errors.Errorf("resolving patch files: %w", err)
	}

	logger.Debug().Str("path", path).Str("target", ps.Target).Int("patches", len(ps.Patches)).Msg("loaded patch set")
	return ps, nil
}

// 🔍 Validate checks the patch set is usable and fills in default names
func (ps *PatchSet) Validate() error {
	if len(ps.Patches) == 0 {
		return errors.Errorf("at least one patch is required")
	}

	seen := make(map[string]bool, len(ps.Patches))
	for i := range ps.Patches {
		p := &ps.Patches[i]

		if p.Name == "" {
			p.Name = fmt.Sprintf("patch-%d", i+1)
		}
		if seen[p.Name] {
			return errors.Errorf("patch %d: duplicate name %q", i+1, p.Name)
		}
		seen[p.Name] = true

		if p.Search != "" && p.SearchFile != "" {
			return errors.Errorf("patch %q: search and search_file are mutually exclusive", p.Name)
		}
		if p.Search == "" && p.SearchFile == "" {
			return errors.Errorf("patch %q: search or search_file is required", p.Name)
		}
		if p.Replace != "" && p.ReplaceFile != "" {
			return errors.Errorf("patch %q: replace and replace_file are mutually exclusive", p.Name)
		}
		if _, err := patch.ParseMode(p.Mode); err != nil {
			return errors.Errorf("patch %q: %w", p.Name, err)
		}
	}

	return nil
}

// Dir returns the directory relative paths in the patch set resolve against.
func (ps *PatchSet) Dir() string {
	if ps.location == "" {
		return "."
	}
	return filepath.Dir(ps.location)
}

func (ps *PatchSet) resolveFiles() error {
	read := func(name string) (string, error) {
		if !filepath.IsAbs(name) {
			name = filepath.Join(ps.Dir(), name)
		}
		data, err := os.ReadFile(name)
		if err != nil {
			return "", errors.Errorf("reading %s: %w", name, err)
		}
		return string(data), nil
	}

	for i := range ps.Patches {
		p := &ps.Patches[i]
		if p.SearchFile != "" {
			s, err := read(p.SearchFile)
			if err != nil {
				return errors.Errorf("patch %q: %w", p.Name, err)
			}
			if s == "" {
				return errors.Errorf("patch %q: search_file %s is empty", p.Name, p.SearchFile)
			}
			p.Search, p.SearchFile = s, ""
		}
		if p.ReplaceFile != "" {
			r, err := read(p.ReplaceFile)
			if err != nil {
				return errors.Errorf("patch %q: %w", p.Name, err)
			}
			p.Replace, p.ReplaceFile = r, ""
		}
	}
	return nil
}

// 🎯 Filter keeps only the patches whose name matches a doublestar pattern
func (ps *PatchSet) Filter(pattern string) (*PatchSet, error) {
	if pattern == "" {
		return ps, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid pattern %q", pattern)
	}

	out := &PatchSet{Target: ps.Target, location: ps.location}
	for _, p := range ps.Patches {
		matched, err := doublestar.Match(pattern, p.Name)
		if err != nil {
			return nil, errors.Errorf("matching %q: %w", pattern, err)
		}
		if matched {
			out.Patches = append(out.Patches, p)
		}
	}
	if len(out.Patches) == 0 {
		return nil, errors.Errorf("no patches match %q", pattern)
	}
	return out, nil
}

// 🔄 Operations converts the patch set into patch operations; entries without
// a mode get defaultMode
func (ps *PatchSet) Operations(defaultMode patch.Mode) ([]patch.Operation, error) {
	ops := make([]patch.Operation, 0, len(ps.Patches))
	for _, p := range ps.Patches {
		mode := defaultMode
		if p.Mode != "" {
			m, err := patch.ParseMode(p.Mode)
			if err != nil {
				return nil, errors.Errorf("patch %q: %w", p.Name, err)
			}
			mode = m
		}

		op := patch.Operation{
			Name:    p.Name,
			Search:  p.Search,
			Replace: p.Replace,
			Anchor:  p.Anchor,
			Mode:    mode,
		}
		if err := op.Validate(); err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// 📝 String returns a string representation of the patch set
func (ps *PatchSet) String() string {
	return fmt.Sprintf("%d patch(es) -> %s", len(ps.Patches), ps.Target)
}
