package repo

import (
	"io/fs"

	"github.com/odvcencio/tinygit/pkg/object"
)

// modeFromFileInfo maps an lstat result to a tree mode. ok is false for
// entries a tree cannot hold (devices, sockets, pipes).
func modeFromFileInfo(info fs.FileInfo) (mode object.TreeMode, ok bool) {
	m := info.Mode()
	switch {
	case m&fs.ModeSymlink != 0:
		return object.ModeSymlink, true
	case m.IsDir():
		return object.ModeDir, true
	case m.IsRegular():
		if m&0o111 != 0 {
			return object.ModeExecutable, true
		}
		return object.ModeFile, true
	default:
		return 0, false
	}
}
