package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/tinygit/pkg/object"
)

// TreeBuilder turns a directory snapshot into tree objects, one per
// directory, writing every blob and subtree to Store.
type TreeBuilder struct {
	Store *object.Store
	// Exclude, when set, is asked about every child with its slash-separated
	// path relative to the build root. The metadata directory is excluded
	// regardless.
	Exclude func(rel string, isDir bool) bool
	Logger  *zap.Logger
}

// pendingDir is one directory on the build stack. Its entries fill up as
// children are written; the tree itself is written once all children are.
type pendingDir struct {
	name     string // entry name inside the parent, empty for the root
	abs      string
	rel      string
	children []dirChild
	next     int
	entries  []object.TreeEntry
}

type dirChild struct {
	name string
	mode object.TreeMode
}

// Build writes the tree for dir and everything below it and returns the
// root tree hash. Directories are processed with an explicit stack, so
// nesting depth does not grow the goroutine stack.
func (b *TreeBuilder) Build(dir string) (object.Hash, error) {
	root, err := b.openDir("", dir, "")
	if err != nil {
		return object.ZeroHash, err
	}

	stack := []*pendingDir{root}
	for {
		top := stack[len(stack)-1]
		if top.next == len(top.children) {
			h, err := b.Store.WriteTree(&object.TreeObj{Entries: top.entries})
			if err != nil {
				return object.ZeroHash, fmt.Errorf("build tree %q: %w", displayRel(top.rel), err)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return h, nil
			}
			parent := stack[len(stack)-1]
			parent.entries = append(parent.entries, object.TreeEntry{Mode: object.ModeDir, Name: top.name, Hash: h})
			continue
		}

		child := top.children[top.next]
		top.next++
		childAbs := filepath.Join(top.abs, child.name)
		childRel := path.Join(top.rel, child.name)

		if child.mode == object.ModeDir {
			sub, err := b.openDir(child.name, childAbs, childRel)
			if err != nil {
				return object.ZeroHash, err
			}
			stack = append(stack, sub)
			continue
		}

		h, err := b.writeBlob(childAbs, child.mode)
		if err != nil {
			return object.ZeroHash, fmt.Errorf("build tree %q: %w", childRel, err)
		}
		top.entries = append(top.entries, object.TreeEntry{Mode: child.mode, Name: child.name, Hash: h})
	}
}

// openDir lists dir, drops excluded and unsupported children, and sorts the
// rest by name byte-wise. Filesystem listing order is never relied on.
func (b *TreeBuilder) openDir(name, abs, rel string) (*pendingDir, error) {
	ents, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("build tree %q: %w: %w", displayRel(rel), object.ErrIO, err)
	}

	d := &pendingDir{name: name, abs: abs, rel: rel}
	for _, e := range ents {
		childRel := path.Join(rel, e.Name())
		if IsMetaDir(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("build tree %q: %w: %w", childRel, object.ErrIO, err)
		}
		mode, ok := modeFromFileInfo(info)
		if !ok {
			b.log().Debug("skipping special file", zap.String("path", childRel), zap.Stringer("mode", info.Mode()))
			continue
		}
		if b.Exclude != nil && b.Exclude(childRel, mode == object.ModeDir) {
			b.log().Debug("ignoring path", zap.String("path", childRel))
			continue
		}
		d.children = append(d.children, dirChild{name: e.Name(), mode: mode})
	}
	sort.Slice(d.children, func(i, j int) bool {
		return d.children[i].name < d.children[j].name
	})
	return d, nil
}

func (b *TreeBuilder) log() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

// writeBlob stores a regular file's content, or a symlink's target text.
func (b *TreeBuilder) writeBlob(abs string, mode object.TreeMode) (object.Hash, error) {
	var data []byte
	if mode == object.ModeSymlink {
		target, err := os.Readlink(abs)
		if err != nil {
			return object.ZeroHash, fmt.Errorf("%w: %w", object.ErrIO, err)
		}
		data = []byte(target)
	} else {
		content, err := os.ReadFile(abs)
		if err != nil {
			return object.ZeroHash, fmt.Errorf("%w: %w", object.ErrIO, err)
		}
		data = content
	}
	return b.Store.WriteBlob(&object.Blob{Data: data})
}

func displayRel(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}

// WriteTree builds a tree from dir (the work-tree root when dir is empty),
// honoring the configured ignore file, and returns the root tree hash.
func (r *Repo) WriteTree(dir string) (object.Hash, error) {
	if dir == "" {
		dir = r.RootDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("write tree: abs path: %w", err)
	}
	prefix, err := filepath.Rel(r.RootDir, abs)
	if err != nil || prefix == ".." || strings.HasPrefix(prefix, ".."+string(filepath.Separator)) {
		return object.ZeroHash, fmt.Errorf("write tree: %w: %s is outside the work tree %s", object.ErrValidation, abs, r.RootDir)
	}
	prefix = filepath.ToSlash(prefix)
	if prefix == "." {
		prefix = ""
	}

	ic, err := NewIgnoreChecker(r.RootDir, r.Config.Core.IgnoreFile, r.logger)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("write tree: %w", err)
	}
	b := &TreeBuilder{
		Store: r.Store,
		Exclude: func(rel string, isDir bool) bool {
			return ic.IsIgnored(path.Join(prefix, rel), isDir)
		},
		Logger: r.logger.Named("tree"),
	}
	return b.Build(abs)
}

// LsTree returns the entries of a single tree object, sorted by name.
func (r *Repo) LsTree(h object.Hash) ([]object.TreeEntry, error) {
	tr, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("ls-tree %s: %w", h, err)
	}
	return tr.Entries, nil
}

// TreeFileEntry represents a single non-directory entry in a flattened tree.
type TreeFileEntry struct {
	Path string
	Mode object.TreeMode
	Hash object.Hash
}

// FlattenTree walks a tree object depth-first, returning all blob entries
// with their full slash-separated paths in tree order.
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	type item struct {
		path  string
		entry object.TreeEntry
	}
	var (
		result []TreeFileEntry
		stack  []item
	)
	push := func(tree object.Hash, prefix string) error {
		treeObj, err := r.Store.ReadTree(tree)
		if err != nil {
			return fmt.Errorf("flatten tree: read %s: %w", tree, err)
		}
		for i := len(treeObj.Entries) - 1; i >= 0; i-- {
			e := treeObj.Entries[i]
			stack = append(stack, item{path: path.Join(prefix, e.Name), entry: e})
		}
		return nil
	}

	if err := push(h, ""); err != nil {
		return nil, err
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.entry.Mode.IsDir() {
			if err := push(it.entry.Hash, it.path); err != nil {
				return nil, err
			}
			continue
		}
		result = append(result, TreeFileEntry{Path: it.path, Mode: it.entry.Mode, Hash: it.entry.Hash})
	}
	return result, nil
}
