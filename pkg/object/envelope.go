package object

import (
	"bytes"
	"fmt"
	"strconv"
)

// Frame prepends the "type len\0" header to payload. The result is what gets
// hashed and stored.
func Frame(objType ObjectType, payload []byte) []byte {
	out := make([]byte, 0, len(objType)+24+len(payload))
	out = appendHeader(out, objType, len(payload))
	return append(out, payload...)
}

// Unframe splits framed bytes into kind and payload. The declared length
// must match the number of bytes after the NUL exactly.
func Unframe(raw []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("%w: header has no NUL terminator", ErrParse)
	}
	header := raw[:nulIdx]
	payload := raw[nulIdx+1:]

	sp := bytes.IndexByte(header, ' ')
	if sp < 0 {
		return "", nil, fmt.Errorf("%w: invalid header %q", ErrParse, header)
	}
	objType, err := ParseObjectType(string(header[:sp]))
	if err != nil {
		return "", nil, err
	}
	length, err := parseLength(header[sp+1:])
	if err != nil {
		return "", nil, err
	}
	if length != len(payload) {
		return "", nil, fmt.Errorf("%w: length mismatch (header=%d, actual=%d)", ErrParse, length, len(payload))
	}
	return objType, payload, nil
}

func parseLength(field []byte) (int, error) {
	if len(field) == 0 {
		return 0, fmt.Errorf("%w: empty length field", ErrParse)
	}
	if field[0] == '-' {
		return 0, fmt.Errorf("%w: negative length %q", ErrValidation, field)
	}
	for _, c := range field {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: invalid length %q", ErrParse, field)
		}
	}
	n, err := strconv.Atoi(string(field))
	if err != nil {
		// Only digits remain, so the sole failure is overflow.
		return 0, fmt.Errorf("%w: length %q overflows", ErrValidation, field)
	}
	return n, nil
}
