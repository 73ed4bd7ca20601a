package repo

import (
	"fmt"
	"os"

	"github.com/odvcencio/tinygit/pkg/object"
)

// HashObject hashes the file at path as a blob. The blob is stored only
// when write is true.
func (r *Repo) HashObject(path string, write bool) (object.Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("hash-object: %w: %w", object.ErrIO, err)
	}
	return r.HashObjectBytes(data, write)
}

// HashObjectBytes is HashObject for in-memory content.
func (r *Repo) HashObjectBytes(data []byte, write bool) (object.Hash, error) {
	if !write {
		return object.HashObject(object.TypeBlob, data), nil
	}
	h, err := r.Store.WriteBlob(&object.Blob{Data: data})
	if err != nil {
		return object.ZeroHash, fmt.Errorf("hash-object: %w", err)
	}
	return h, nil
}

// CatObject returns the kind and payload of one stored object.
func (r *Repo) CatObject(h object.Hash) (object.ObjectType, []byte, error) {
	objType, payload, err := r.Store.Read(h)
	if err != nil {
		return "", nil, fmt.Errorf("cat-file: %w", err)
	}
	return objType, payload, nil
}
