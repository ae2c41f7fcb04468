package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"BlockScribe/internal/fault"
	"BlockScribe/internal/logger"
)

// Materializer resolves file inputs inside a sandbox root. Reads
// outside the root and reads through symbolic links are refused.
// Resolutions share no mutable state, so a single Materializer is
// safe for concurrent use.
type Materializer struct {
	root string // root is the canonical absolute sandbox directory
}

// NewMaterializer creates a materializer rooted at dir. An empty dir
// sandboxes to the process working directory.
func NewMaterializer(dir string) (*Materializer, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory:\n%w", err)
		}
		dir = wd
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root %s:\n%w", dir, err)
	}

	return &Materializer{root: filepath.Clean(root)}, nil
}

// Root returns the canonical sandbox root.
func (m *Materializer) Root() string {
	return m.root
}

// Resolve materializes a single file input. Content naming no
// existing filesystem entry passes through as literal payload.
// Existence alone never grants a read: the path must not be a
// symlink and must resolve inside the sandbox root.
func (m *Materializer) Resolve(f FileInput) (ResolvedFile, error) {
	info, err := os.Lstat(f.Content)
	if err != nil {
		// No entry at that string: literal content.
		return ResolvedFile{Name: f.Name, Content: f.Content}, nil
	}

	if info.Mode()&os.ModeSymlink != 0 {
		logger.Warn("rejected symlink file input", "name", f.Name, "path", f.Content)
		return ResolvedFile{}, fault.New(fault.SymlinkNotAllowed,
			"file %q: %s is a symbolic link", f.Name, f.Content)
	}

	resolved, err := filepath.Abs(f.Content)
	if err != nil {
		return ResolvedFile{}, fmt.Errorf("file %q: resolve path %s:\n%w", f.Name, f.Content, err)
	}
	resolved = filepath.Clean(resolved)

	if !m.contains(resolved) {
		logger.Warn("rejected file input outside sandbox", "name", f.Name, "path", resolved, "root", m.root)
		return ResolvedFile{}, fault.New(fault.PathTraversal,
			"file %q: %s is outside the allowed root %s", f.Name, resolved, m.root)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return ResolvedFile{}, fmt.Errorf("file %q: read %s:\n%w", f.Name, resolved, err)
	}

	return ResolvedFile{Name: f.Name, Content: string(data)}, nil
}

// ResolveAll materializes every input; any single failure aborts the
// whole set.
func (m *Materializer) ResolveAll(files []FileInput) ([]ResolvedFile, error) {
	if len(files) == 0 {
		return nil, nil
	}

	resolved := make([]ResolvedFile, len(files))

	for i, f := range files {
		rf, err := m.Resolve(f)
		if err != nil {
			return nil, err
		}
		resolved[i] = rf
	}

	return resolved, nil
}

// contains reports whether path is the root itself or below it.
// The check compares canonical absolute paths component-wise, so
// "..", "." and sibling-prefix names ("/sandbox-evil" vs "/sandbox")
// cannot escape.
func (m *Materializer) contains(path string) bool {
	if path == m.root {
		return true
	}
	return strings.HasPrefix(path, m.root+string(filepath.Separator))
}
