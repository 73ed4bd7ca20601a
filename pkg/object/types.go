package object

import (
	"fmt"
	"strconv"
	"time"
)

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// ParseObjectType maps a header kind string to an ObjectType.
func ParseObjectType(s string) (ObjectType, error) {
	switch t := ObjectType(s); t {
	case TypeBlob, TypeTree, TypeCommit:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown object type %q", ErrParse, s)
	}
}

// TreeMode is the mode of a tree entry. Only the four git modes below are
// representable; anything else is rejected when a tree is parsed.
type TreeMode uint32

const (
	ModeDir        TreeMode = 0o40000
	ModeFile       TreeMode = 0o100644
	ModeExecutable TreeMode = 0o100755
	ModeSymlink    TreeMode = 0o120000
)

// String returns the canonical octal text, e.g. "100644" or "40000".
func (m TreeMode) String() string {
	return strconv.FormatUint(uint64(m), 8)
}

// Valid reports whether m is one of the known modes.
func (m TreeMode) Valid() bool {
	switch m {
	case ModeDir, ModeFile, ModeExecutable, ModeSymlink:
		return true
	}
	return false
}

// IsDir reports whether the entry points at a subtree.
func (m TreeMode) IsDir() bool { return m == ModeDir }

// ObjectType returns the kind of object an entry with this mode references.
func (m TreeMode) ObjectType() ObjectType {
	if m == ModeDir {
		return TypeTree
	}
	return TypeBlob
}

// ParseTreeMode parses the octal mode text of a tree entry.
func ParseTreeMode(s string) (TreeMode, error) {
	switch s {
	case "40000":
		return ModeDir, nil
	case "100644":
		return ModeFile, nil
	case "100755":
		return ModeExecutable, nil
	case "120000":
		return ModeSymlink, nil
	default:
		return 0, fmt.Errorf("%w: unknown tree mode %q", ErrParse, s)
	}
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode TreeMode
	Name string
	Hash Hash
}

// TreeObj holds a list of tree entries sorted by Name.
type TreeObj struct {
	Entries []TreeEntry
}

// Ident is an author or committer line: a free-form person string
// (conventionally "Name <email>"), unix seconds and a "+hhmm" offset.
type Ident struct {
	Person string
	When   int64
	TZ     string
}

// NewIdent stamps person with t, keeping t's zone offset.
func NewIdent(person string, t time.Time) Ident {
	return Ident{
		Person: person,
		When:   t.Unix(),
		TZ:     t.Format("-0700"),
	}
}

func (id Ident) String() string {
	return id.Person + " " + strconv.FormatInt(id.When, 10) + " " + id.TZ
}

// CommitObj represents a commit pointing to a tree with metadata. A commit
// with no parents is a root commit.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    Ident
	Committer Ident
	Signature string // armored signature, stored as the gpgsig header
	Message   string
}
