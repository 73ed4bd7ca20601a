package object

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/pjbgf/sha1cd"
)

// HashSize is the length in bytes of a raw object digest.
const HashSize = 20

// Hash is the SHA-1 digest of an object's framed encoding. It renders as 40
// lowercase hex characters and is embedded as 20 raw bytes inside trees.
type Hash [HashSize]byte

// ZeroHash is the all-zero digest. No stored object has it.
var ZeroHash Hash

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zero digest.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// ParseHash decodes a 40-character hex digest. Upper-case hex is accepted and
// normalized.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != 2*HashSize {
		return h, fmt.Errorf("%w: hash %q: want %d hex characters, got %d", ErrValidation, s, 2*HashSize, len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return ZeroHash, fmt.Errorf("%w: hash %q: %v", ErrValidation, s, err)
	}
	return h, nil
}

// HashFramed computes the digest of already framed bytes
// ("type len\0payload"). This is the object's identity and storage key.
func HashFramed(framed []byte) Hash {
	d := sha1cd.New()
	d.Write(framed)
	var h Hash
	copy(h[:], d.Sum(nil))
	return h
}

// HashObject computes the digest of payload framed as objType without
// materializing the framed buffer.
func HashObject(objType ObjectType, payload []byte) Hash {
	d := sha1cd.New()
	d.Write(appendHeader(nil, objType, len(payload)))
	d.Write(payload)
	var h Hash
	copy(h[:], d.Sum(nil))
	return h
}

func appendHeader(dst []byte, objType ObjectType, n int) []byte {
	dst = append(dst, objType...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, 0)
}
