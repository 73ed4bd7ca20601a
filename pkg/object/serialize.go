package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj in git's binary layout. Entries are sorted
// by Name (byte-wise) first, and each is written as
//
//	<octal mode> SP <name> NUL <20 raw digest bytes>
//
// with nothing between entries. Duplicate or unrepresentable names and
// unknown modes are rejected with ErrValidation.
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sortEntries(sorted)

	var buf bytes.Buffer
	for i, e := range sorted {
		if err := validateEntryName(e.Name); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i-1].Name == e.Name {
			return nil, fmt.Errorf("%w: duplicate tree entry %q", ErrValidation, e.Name)
		}
		if !e.Mode.Valid() {
			return nil, fmt.Errorf("%w: entry %q: unknown mode %o", ErrValidation, e.Name, uint32(e.Mode))
		}
		buf.WriteString(e.Mode.String())
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.Hash[:])
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a tree payload. The returned entries are sorted by
// Name regardless of their on-disk order.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	c := &cursor{buf: data}
	seen := make(map[string]struct{})
	for !c.done() {
		modeText, err := c.until(' ', "tree entry mode")
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		mode, err := ParseTreeMode(string(modeText))
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		name, err := c.until(0, "tree entry name")
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		if len(name) == 0 {
			return nil, fmt.Errorf("unmarshal tree: %w: empty entry name", ErrParse)
		}
		raw, err := c.take(HashSize, "tree entry digest")
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		if _, dup := seen[string(name)]; dup {
			return nil, fmt.Errorf("unmarshal tree: %w: duplicate entry %q", ErrParse, name)
		}
		seen[string(name)] = struct{}{}

		entry := TreeEntry{Mode: mode, Name: string(name)}
		copy(entry.Hash[:], raw)
		tr.Entries = append(tr.Entries, entry)
	}
	sortEntries(tr.Entries)
	return tr, nil
}

func sortEntries(entries []TreeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}

func validateEntryName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty tree entry name", ErrValidation)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("%w: tree entry name %q contains '/' or NUL", ErrValidation, name)
	}
	return nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj in git's commit text layout:
//
//	tree H
//	parent H     (zero or more)
//	author A <unix> <tz>
//	committer C <unix> <tz>
//	gpgsig S     (optional, continuation lines indented by one space)
//
//	message
//
// Author and committer are written for every commit, root commits included.
// The message is always followed by one newline.
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.TreeHash)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	if sig := strings.TrimRight(c.Signature, "\n"); sig != "" {
		buf.WriteString("gpgsig ")
		buf.WriteString(strings.ReplaceAll(sig, "\n", "\n "))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// CommitSigningPayload returns the canonical bytes that are signed for a
// commit: the serialized commit without its gpgsig header.
func CommitSigningPayload(c *CommitObj) []byte {
	if c == nil {
		return nil
	}
	copyCommit := *c
	copyCommit.Signature = ""
	return MarshalCommit(&copyCommit)
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: %w: missing header/message separator", ErrParse)
	}
	header := string(data[:idx])
	message := strings.TrimSuffix(string(data[idx+2:]), "\n")

	c := &CommitObj{Message: message}
	var (
		haveTree bool
		lastKey  string
		sigLines []string
	)
	for _, line := range strings.Split(header, "\n") {
		if strings.HasPrefix(line, " ") {
			if lastKey != "gpgsig" {
				return nil, fmt.Errorf("unmarshal commit: %w: unexpected continuation line %q", ErrParse, line)
			}
			sigLines = append(sigLines, line[1:])
			continue
		}
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: %w: malformed header line %q", ErrParse, line)
		}
		lastKey = key
		switch key {
		case "tree":
			h, err := ParseHash(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w: tree: %v", ErrParse, err)
			}
			c.TreeHash = h
			haveTree = true
		case "parent":
			h, err := ParseHash(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w: parent: %v", ErrParse, err)
			}
			c.Parents = append(c.Parents, h)
		case "author":
			id, err := parseIdent(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: author: %w", err)
			}
			c.Author = id
		case "committer":
			id, err := parseIdent(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: committer: %w", err)
			}
			c.Committer = id
		case "gpgsig":
			sigLines = append(sigLines, val)
		default:
			return nil, fmt.Errorf("unmarshal commit: %w: unknown header key %q", ErrParse, key)
		}
	}
	if !haveTree {
		return nil, fmt.Errorf("unmarshal commit: %w: missing tree header", ErrParse)
	}
	if len(sigLines) > 0 {
		c.Signature = strings.Join(sigLines, "\n")
	}
	return c, nil
}

// parseIdent splits "person <unix> <tz>" from the right, so the person part
// may itself contain spaces.
func parseIdent(s string) (Ident, error) {
	tzIdx := strings.LastIndexByte(s, ' ')
	if tzIdx < 0 {
		return Ident{}, fmt.Errorf("%w: identity %q: missing timezone", ErrParse, s)
	}
	whenIdx := strings.LastIndexByte(s[:tzIdx], ' ')
	if whenIdx < 0 {
		return Ident{}, fmt.Errorf("%w: identity %q: missing timestamp", ErrParse, s)
	}
	when, err := strconv.ParseInt(s[whenIdx+1:tzIdx], 10, 64)
	if err != nil {
		return Ident{}, fmt.Errorf("%w: identity %q: bad timestamp: %v", ErrParse, s, err)
	}
	return Ident{
		Person: s[:whenIdx],
		When:   when,
		TZ:     s[tzIdx+1:],
	}, nil
}
