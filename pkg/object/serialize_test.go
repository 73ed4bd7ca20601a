package object

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarshalUnmarshalBlob(t *testing.T) {
	orig := &Blob{Data: []byte("hello world\nline two")}
	data := MarshalBlob(orig)
	got, err := UnmarshalBlob(data)
	if err != nil {
		t.Fatalf("UnmarshalBlob: %v", err)
	}
	if !bytes.Equal(got.Data, orig.Data) {
		t.Errorf("Blob round-trip mismatch: got %q, want %q", got.Data, orig.Data)
	}
}

func testHash(s string) Hash {
	return HashObject(TypeBlob, []byte(s))
}

func TestMarshalTreeLayout(t *testing.T) {
	h := testHash("a")
	tr := &TreeObj{Entries: []TreeEntry{{Mode: ModeFile, Name: "a.txt", Hash: h}}}
	data, err := MarshalTree(tr)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	want := append([]byte("100644 a.txt\x00"), h[:]...)
	if !bytes.Equal(data, want) {
		t.Errorf("MarshalTree = %q, want %q", data, want)
	}
}

func TestMarshalTreeModes(t *testing.T) {
	tr := &TreeObj{Entries: []TreeEntry{
		{Mode: ModeDir, Name: "d", Hash: testHash("d")},
		{Mode: ModeExecutable, Name: "x", Hash: testHash("x")},
		{Mode: ModeSymlink, Name: "l", Hash: testHash("l")},
		{Mode: ModeFile, Name: "f", Hash: testHash("f")},
	}}
	data, err := MarshalTree(tr)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	for _, prefix := range []string{"40000 d\x00", "100755 x\x00", "120000 l\x00", "100644 f\x00"} {
		if !bytes.Contains(data, []byte(prefix)) {
			t.Errorf("serialized tree missing %q", prefix)
		}
	}
	if bytes.Contains(data, []byte("040000")) {
		t.Error("directory mode must be written without a leading zero")
	}
}

func TestMarshalTreeSortsByteWise(t *testing.T) {
	tr := &TreeObj{Entries: []TreeEntry{
		{Mode: ModeFile, Name: "b", Hash: testHash("b")},
		{Mode: ModeFile, Name: "a", Hash: testHash("a")},
		{Mode: ModeFile, Name: "c", Hash: testHash("c")},
		{Mode: ModeFile, Name: "B", Hash: testHash("B")},
		{Mode: ModeFile, Name: "é", Hash: testHash("é")},
	}}
	data, err := MarshalTree(tr)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	got, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	var names []string
	for _, e := range got.Entries {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"B", "a", "b", "c", "é"}, names); diff != "" {
		t.Errorf("entry order (-want +got):\n%s", diff)
	}
}

func TestUnmarshalTreeSortsOnRead(t *testing.T) {
	// Entries deliberately laid out out of order.
	var raw []byte
	for _, name := range []string{"b", "a", "c"} {
		h := testHash(name)
		raw = append(raw, []byte("100644 "+name+"\x00")...)
		raw = append(raw, h[:]...)
	}
	got, err := UnmarshalTree(raw)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	want := []TreeEntry{
		{Mode: ModeFile, Name: "a", Hash: testHash("a")},
		{Mode: ModeFile, Name: "b", Hash: testHash("b")},
		{Mode: ModeFile, Name: "c", Hash: testHash("c")},
	}
	if diff := cmp.Diff(want, got.Entries); diff != "" {
		t.Errorf("entries (-want +got):\n%s", diff)
	}
}

func TestUnmarshalTreeEmpty(t *testing.T) {
	got, err := UnmarshalTree(nil)
	if err != nil {
		t.Fatalf("UnmarshalTree(empty): %v", err)
	}
	if len(got.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(got.Entries))
	}
}

func TestUnmarshalTreeMalformed(t *testing.T) {
	h := testHash("x")
	tests := []struct {
		name string
		data []byte
	}{
		{"missing space", []byte("100644")},
		{"unknown mode", append([]byte("100664 a\x00"), h[:]...)},
		{"gitlink mode", append([]byte("160000 sub\x00"), h[:]...)},
		{"missing nul", []byte("100644 name-without-terminator")},
		{"short digest", append([]byte("100644 a\x00"), h[:10]...)},
		{"empty name", append([]byte("100644 \x00"), h[:]...)},
		{"trailing garbage", append(append([]byte("100644 a\x00"), h[:]...), 'x')},
		{"duplicate name", append(append(append([]byte("100644 a\x00"), h[:]...), []byte("40000 a\x00")...), h[:]...)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UnmarshalTree(tc.data)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("UnmarshalTree err = %v, want ErrParse", err)
			}
		})
	}
}

func TestMarshalTreeValidation(t *testing.T) {
	h := testHash("x")
	tests := []struct {
		name    string
		entries []TreeEntry
	}{
		{"duplicate", []TreeEntry{{Mode: ModeFile, Name: "a", Hash: h}, {Mode: ModeDir, Name: "a", Hash: h}}},
		{"empty name", []TreeEntry{{Mode: ModeFile, Name: "", Hash: h}}},
		{"slash", []TreeEntry{{Mode: ModeFile, Name: "a/b", Hash: h}}},
		{"nul", []TreeEntry{{Mode: ModeFile, Name: "a\x00b", Hash: h}}},
		{"bad mode", []TreeEntry{{Mode: TreeMode(0o100600), Name: "a", Hash: h}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MarshalTree(&TreeObj{Entries: tc.entries})
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("MarshalTree err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestMarshalTreeDoesNotReorderInput(t *testing.T) {
	tr := &TreeObj{Entries: []TreeEntry{
		{Mode: ModeFile, Name: "z", Hash: testHash("z")},
		{Mode: ModeFile, Name: "a", Hash: testHash("a")},
	}}
	if _, err := MarshalTree(tr); err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	if tr.Entries[0].Name != "z" {
		t.Error("MarshalTree mutated its input")
	}
}

func TestMarshalCommitRoot(t *testing.T) {
	c := &CommitObj{
		TreeHash:  HashObject(TypeTree, nil),
		Author:    Ident{Person: "A U Thor <author@example.com>", When: 1700000000, TZ: "+0000"},
		Committer: Ident{Person: "C O Mitter <committer@example.com>", When: 1700000000, TZ: "+0000"},
		Message:   "init",
	}
	want := "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
		"author A U Thor <author@example.com> 1700000000 +0000\n" +
		"committer C O Mitter <committer@example.com> 1700000000 +0000\n" +
		"\n" +
		"init\n"
	if got := string(MarshalCommit(c)); got != want {
		t.Errorf("MarshalCommit:\n got %q\nwant %q", got, want)
	}
}

func TestMarshalCommitParents(t *testing.T) {
	p1, p2 := testHash("p1"), testHash("p2")
	c := &CommitObj{
		TreeHash:  HashObject(TypeTree, nil),
		Parents:   []Hash{p1, p2},
		Author:    Ident{Person: "a <a>", When: 1, TZ: "+0200"},
		Committer: Ident{Person: "a <a>", When: 1, TZ: "+0200"},
		Message:   "merge",
	}
	text := string(MarshalCommit(c))
	wantPrefix := "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\nparent " + p1.String() + "\nparent " + p2.String() + "\nauthor "
	if !strings.HasPrefix(text, wantPrefix) {
		t.Errorf("commit text %q does not start with %q", text, wantPrefix)
	}
}

func TestCommitRoundTrip(t *testing.T) {
	orig := &CommitObj{
		TreeHash:  testHash("tree"),
		Parents:   []Hash{testHash("parent")},
		Author:    Ident{Person: "Jane Doe <jane@example.com>", When: 1700000000, TZ: "-0700"},
		Committer: Ident{Person: "Jane Doe <jane@example.com>", When: 1700000500, TZ: "-0700"},
		Signature: "-----BEGIN SSH SIGNATURE-----\nU1NIU0lH\n\n-----END SSH SIGNATURE-----",
		Message:   "subject\n\nbody line\n",
	}
	data := MarshalCommit(orig)
	if !bytes.Contains(data, []byte("gpgsig -----BEGIN SSH SIGNATURE-----\n U1NIU0lH\n \n -----END SSH SIGNATURE-----\n\n")) {
		t.Errorf("gpgsig header not encoded with continuation lines:\n%s", data)
	}
	got, err := UnmarshalCommit(data)
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if diff := cmp.Diff(orig, got); diff != "" {
		t.Errorf("commit round-trip (-want +got):\n%s", diff)
	}
}

func TestCommitSigningPayloadExcludesSignature(t *testing.T) {
	c := &CommitObj{
		TreeHash:  testHash("tree"),
		Author:    Ident{Person: "a <a>", When: 1, TZ: "+0000"},
		Committer: Ident{Person: "a <a>", When: 1, TZ: "+0000"},
		Signature: "sig",
		Message:   "m",
	}
	payload := CommitSigningPayload(c)
	if bytes.Contains(payload, []byte("gpgsig")) {
		t.Errorf("signing payload contains signature: %q", payload)
	}
	if c.Signature != "sig" {
		t.Error("CommitSigningPayload mutated its input")
	}
	if CommitSigningPayload(nil) != nil {
		t.Error("CommitSigningPayload(nil) should be nil")
	}
}

func TestUnmarshalCommitMalformed(t *testing.T) {
	tree := "tree " + testHash("t").String() + "\n"
	ident := "author a <a> 1 +0000\ncommitter a <a> 1 +0000\n"
	tests := []struct {
		name string
		data string
	}{
		{"no separator", tree + ident},
		{"missing tree", ident + "\nmsg\n"},
		{"bad tree hash", "tree nothex\n" + ident + "\nmsg\n"},
		{"unknown header", tree + ident + "frobnicate yes\n\nmsg\n"},
		{"bad timestamp", tree + "author a <a> soon +0000\n\nmsg\n"},
		{"stray continuation", tree + " orphan\n" + ident + "\nmsg\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := UnmarshalCommit([]byte(tc.data)); !errors.Is(err, ErrParse) {
				t.Fatalf("UnmarshalCommit err = %v, want ErrParse", err)
			}
		})
	}
}

func TestParseIdentKeepsSpacesInPerson(t *testing.T) {
	id, err := parseIdent("Ada King, Countess of Lovelace <ada@example.com> 1700000000 +0100")
	if err != nil {
		t.Fatalf("parseIdent: %v", err)
	}
	want := Ident{Person: "Ada King, Countess of Lovelace <ada@example.com>", When: 1700000000, TZ: "+0100"}
	if id != want {
		t.Errorf("parseIdent = %+v, want %+v", id, want)
	}
	if id.String() != "Ada King, Countess of Lovelace <ada@example.com> 1700000000 +0100" {
		t.Errorf("Ident.String = %q", id.String())
	}
}
