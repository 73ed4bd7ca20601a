package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/denormal/go-gitignore"
	"go.uber.org/zap"
)

// IgnoreChecker decides which work-tree paths write-tree leaves out. The
// metadata directory is always excluded, at any depth. Other rules come
// from an optional gitignore-style file at the repository root.
type IgnoreChecker struct {
	matcher gitignore.GitIgnore
}

// NewIgnoreChecker creates an IgnoreChecker for repoRoot. ignoreFile is
// relative to repoRoot; an empty name or a missing file leaves only the
// metadata rule in force.
func NewIgnoreChecker(repoRoot, ignoreFile string, logger *zap.Logger) (*IgnoreChecker, error) {
	ic := &IgnoreChecker{}
	if ignoreFile == "" {
		return ic, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(filepath.Join(repoRoot, ignoreFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ic, nil
		}
		return nil, fmt.Errorf("ignore rules: %w", err)
	}
	defer f.Close()

	ic.matcher = gitignore.New(f, repoRoot, func(e gitignore.Error) bool {
		logger.Warn("skipping bad ignore pattern",
			zap.String("file", ignoreFile),
			zap.Error(e),
		)
		return true
	})
	return ic, nil
}

// IsMetaDir reports whether name is the repository metadata directory.
func IsMetaDir(name string) bool {
	return name == MetaDirName
}

// IsIgnored checks whether a slash-separated path relative to the
// repository root should be left out of a tree.
func (ic *IgnoreChecker) IsIgnored(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	if IsMetaDir(path.Base(rel)) {
		return true
	}
	if ic == nil || ic.matcher == nil {
		return false
	}
	m := ic.matcher.Relative(rel, isDir)
	return m != nil && m.Ignore()
}
