package object

import (
	"bytes"
	"errors"
	"testing"
)

func TestFrame(t *testing.T) {
	got := Frame(TypeBlob, []byte("hi\n"))
	if want := "blob 3\x00hi\n"; string(got) != want {
		t.Errorf("Frame = %q, want %q", got, want)
	}
	if got := Frame(TypeTree, nil); string(got) != "tree 0\x00" {
		t.Errorf("Frame(empty tree) = %q", got)
	}
}

func TestUnframeRoundTrip(t *testing.T) {
	for _, objType := range []ObjectType{TypeBlob, TypeTree, TypeCommit} {
		payload := []byte("payload with \x00 inside")
		gotType, gotPayload, err := Unframe(Frame(objType, payload))
		if err != nil {
			t.Fatalf("Unframe(%s): %v", objType, err)
		}
		if gotType != objType || !bytes.Equal(gotPayload, payload) {
			t.Errorf("Unframe(%s) = (%q, %q)", objType, gotType, gotPayload)
		}
	}
}

func TestUnframeErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"no nul", "blob 3hi\n", ErrParse},
		{"no space", "blob3\x00abc", ErrParse},
		{"unknown type", "tag 3\x00abc", ErrParse},
		{"empty length", "blob \x00", ErrParse},
		{"non decimal length", "blob 0x3\x00abc", ErrParse},
		{"plus sign", "blob +3\x00abc", ErrParse},
		{"inner space", "blob 3 \x00abc", ErrParse},
		{"too short", "blob 4\x00abc", ErrParse},
		{"too long", "blob 2\x00abc", ErrParse},
		{"negative length", "blob -3\x00abc", ErrValidation},
		{"overflowing length", "blob 99999999999999999999999999\x00abc", ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Unframe([]byte(tc.raw))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Unframe(%q) err = %v, want %v", tc.raw, err, tc.wantErr)
			}
		})
	}
}
