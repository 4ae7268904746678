package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Operation is a file system change that can be validated and executed.
//
// Validate checks the operation would succeed without executing it. Execute
// performs it. Description is a one-line summary for output.
type Operation interface {
	Validate(ctx context.Context) error
	Execute(ctx context.Context) error
	Description() string
}

// Reverter is an executed operation that can undo itself.
type Reverter interface {
	Revert() error
}

// snapshot is the state of a path before an operation wrote it.
type snapshot struct {
	taken   bool
	existed bool
	content []byte
	mode    fs.FileMode
}

func takeSnapshot(path string) (snapshot, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return snapshot{taken: true}, nil
	}
	if err != nil {
		return snapshot{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{taken: true, existed: true, content: data, mode: info.Mode().Perm()}, nil
}

func (s snapshot) restore(path string) error {
	if !s.taken {
		return nil
	}
	if !s.existed {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return os.WriteFile(path, s.content, s.mode)
}

// WriteFileOp writes a file, creating parent directories as needed.
//
// A file that already exists is a conflict unless Overwrite is set.
// Nil content is rejected; empty content is fine.
type WriteFileOp struct {
	Path      string
	Content   []byte
	Mode      fs.FileMode
	Overwrite bool

	before snapshot
}

// Validate rejects nil content and, without Overwrite, an existing file.
func (op *WriteFileOp) Validate(ctx context.Context) error {
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}
	if !op.Overwrite {
		if _, err := os.Stat(op.Path); err == nil {
			return fmt.Errorf("file already exists: %s", op.Path)
		}
	}
	return nil
}

// Execute snapshots the current file, then writes Content with Mode,
// defaulting to 0644.
func (op *WriteFileOp) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	before, err := takeSnapshot(op.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", op.Path, err)
	}
	op.before = before

	if err := os.MkdirAll(filepath.Dir(op.Path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", op.Path, err)
	}
	mode := op.Mode
	if mode == 0 {
		mode = 0644
	}
	if err := os.WriteFile(op.Path, op.Content, mode); err != nil {
		return fmt.Errorf("writing %s: %w", op.Path, err)
	}
	return nil
}

// Revert restores the file as it was before Execute.
func (op *WriteFileOp) Revert() error {
	return op.before.restore(op.Path)
}

// Description reports whether the write creates or updates the file.
func (op *WriteFileOp) Description() string {
	existed := op.before.existed
	if !op.before.taken {
		existed = fileExists(op.Path)
	}
	verb := "Create"
	if existed {
		verb = "Update"
	}
	return fmt.Sprintf("%s %s (%d bytes)", verb, op.Path, len(op.Content))
}

// CopyFileOp copies Src to Dst, keeping Src's permissions.
type CopyFileOp struct {
	Src       string
	Dst       string
	Overwrite bool

	write *WriteFileOp
}

// Validate checks that Src is a regular file and, without Overwrite, that
// Dst does not exist yet.
func (op *CopyFileOp) Validate(ctx context.Context) error {
	info, err := os.Stat(op.Src)
	if err != nil {
		return fmt.Errorf("source file %s: %w", op.Src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source file %s is a directory", op.Src)
	}
	if !op.Overwrite {
		if _, err := os.Stat(op.Dst); err == nil {
			return fmt.Errorf("file already exists: %s", op.Dst)
		}
	}
	return nil
}

// Execute reads Src and writes it to Dst through a WriteFileOp, so the copy
// can be reverted.
func (op *CopyFileOp) Execute(ctx context.Context) error {
	info, err := os.Stat(op.Src)
	if err != nil {
		return fmt.Errorf("source file %s: %w", op.Src, err)
	}
	data, err := os.ReadFile(op.Src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", op.Src, err)
	}
	op.write = &WriteFileOp{Path: op.Dst, Content: data, Mode: info.Mode().Perm(), Overwrite: true}
	return op.write.Execute(ctx)
}

// Revert restores Dst as it was before Execute.
func (op *CopyFileOp) Revert() error {
	if op.write == nil {
		return nil
	}
	return op.write.Revert()
}

// Description names the source and destination.
func (op *CopyFileOp) Description() string {
	return fmt.Sprintf("Copy %s -> %s", op.Src, op.Dst)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
