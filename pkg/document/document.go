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

package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// BackupSuffix is appended to a target path to name its backup.
const BackupSuffix = ".bak"

var (
	// ErrConcurrentModification means the file changed between Load and Commit.
	ErrConcurrentModification = errors.Base("file changed since it was loaded")

	// ErrVerifyFailed means the committed file did not read back as written.
	ErrVerifyFailed = errors.Base("written content did not verify")

	// ErrNoBackup means Restore found nothing to restore from.
	ErrNoBackup = errors.Base("no backup found")
)

// ❌ IOError wraps a filesystem failure with the operation and path involved
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// 📄 Document is the full content of a target file, held for one operation
type Document struct {
	Path     string      // path as given by the caller
	Content  string      // full text as loaded
	Checksum string      // sha256 of the loaded bytes
	Mode     os.FileMode // permission bits to carry onto the rewritten file

	resolved string // symlink-free path that is actually rewritten
}

// 💾 Store loads and persists target documents
type Store interface {
	// Load reads the whole file at path
	Load(ctx context.Context, path string) (*Document, error)

	// Commit replaces the file behind doc with content, atomically
	Commit(ctx context.Context, doc *Document, content string) error

	// Backup saves doc's loaded content next to the file and returns the backup path
	Backup(ctx context.Context, doc *Document) (string, error)

	// Restore puts the backup of path back in place and removes the backup
	Restore(ctx context.Context, path string) error
}

// 🔧 FileStore is a Store on the local filesystem
type FileStore struct{}

// filesystem hooks, replaced in tests
var (
	createTemp   = os.CreateTemp
	beforeVerify = func(path string) error { return nil }
)

var _ Store = (*FileStore)(nil)

// 🏭 NewFileStore creates a new FileStore
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Checksum returns the hex sha256 of content.
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// BackupPath returns where the backup of path lives.
func BackupPath(path string) string {
	return path + BackupSuffix
}

func (s *FileStore) Load(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("loading %s: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, &IOError{Op: "resolve", Path: path, Err: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &IOError{Op: "read", Path: path, Err: errors.New("is a directory")}
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	doc := &Document{
		Path:     path,
		Content:  string(content),
		Checksum: Checksum(content),
		Mode:     info.Mode().Perm(),
		resolved: resolved,
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Str("resolved", resolved).
		Int("bytes", len(content)).
		Str("checksum", doc.Checksum).
		Msg("loaded document")

	return doc, nil
}

func (s *FileStore) Commit(ctx context.Context, doc *Document, content string) error {
	logger := zerolog.Ctx(ctx)
	target := doc.target()

	// Refuse to overwrite changes made by someone else since Load
	current, err := os.ReadFile(target)
	if err != nil {
		return &IOError{Op: "read", Path: doc.Path, Err: err}
	}
	if Checksum(current) != doc.Checksum {
		return errors.Errorf("committing %s: %w", doc.Path, ErrConcurrentModification)
	}

	if err := writeFileAtomic(target, []byte(content), doc.Mode); err != nil {
		return &IOError{Op: "write", Path: doc.Path, Err: err}
	}

	if err := beforeVerify(target); err != nil {
		return errors.Errorf("before verify hook: %w", err)
	}

	// Read back what landed on disk
	written, err := os.ReadFile(target)
	if err == nil && Checksum(written) == Checksum([]byte(content)) {
		logger.Debug().Str("path", doc.Path).Int("bytes", len(content)).Msg("committed document")
		return nil
	}

	logger.Warn().Str("path", doc.Path).AnErr("read_err", err).Msg("commit did not verify, reverting")
	if rerr := writeFileAtomic(target, []byte(doc.Content), doc.Mode); rerr != nil {
		return &IOError{Op: "revert", Path: doc.Path, Err: rerr}
	}
	return errors.Errorf("committing %s: %w", doc.Path, ErrVerifyFailed)
}

func (s *FileStore) Backup(ctx context.Context, doc *Document) (string, error) {
	backup := BackupPath(doc.target())
	if err := writeFileAtomic(backup, []byte(doc.Content), doc.Mode); err != nil {
		return "", &IOError{Op: "backup", Path: doc.Path, Err: err}
	}

	zerolog.Ctx(ctx).Debug().Str("path", doc.Path).Str("backup", backup).Msg("backed up document")
	return backup, nil
}

func (s *FileStore) Restore(ctx context.Context, path string) error {
	target := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		target = resolved
	}
	backup := BackupPath(target)

	info, err := os.Stat(backup)
	if os.IsNotExist(err) {
		return errors.Errorf("restoring %s: %w", path, ErrNoBackup)
	} else if err != nil {
		return &IOError{Op: "stat", Path: backup, Err: err}
	}

	content, err := os.ReadFile(backup)
	if err != nil {
		return &IOError{Op: "read", Path: backup, Err: err}
	}

	if err := writeFileAtomic(target, content, info.Mode().Perm()); err != nil {
		return &IOError{Op: "restore", Path: path, Err: err}
	}

	if err := os.Remove(backup); err != nil {
		return &IOError{Op: "remove", Path: backup, Err: err}
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("backup", backup).Msg("restored document")
	return nil
}

func (d *Document) target() string {
	if d.resolved != "" {
		return d.resolved
	}
	return d.Path
}

// 🔒 writeFileAtomic writes content to a sibling temp file and renames it over path
func writeFileAtomic(path string, content []byte, mode os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := createTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		tmp.Close()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, mode); err != nil {
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}
