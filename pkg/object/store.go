package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// StoreConfig locates and tunes an object store.
type StoreConfig struct {
	// Root is the repository metadata directory; objects live in
	// Root/objects.
	Root string
	// CompressionLevel is the zlib level, passed through unchanged:
	// zlib.DefaultCompression (-1), zlib.NoCompression (0) or 1-9.
	CompressionLevel int
}

// DefaultStoreConfig returns a config for root using zlib's default level.
func DefaultStoreConfig(root string) StoreConfig {
	return StoreConfig{Root: root, CompressionLevel: zlib.DefaultCompression}
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithLogger makes the store log object writes at debug level.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is a content-addressed loose object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each file holds the
// zlib-compressed framed object. Objects are never modified or deleted.
type Store struct {
	root   string
	level  int
	logger *zap.Logger
}

// NewStore creates a Store for cfg. The objects/ subdirectory is created
// lazily on first write.
func NewStore(cfg StoreConfig, opts ...StoreOption) *Store {
	s := &Store{
		root:   cfg.Root,
		level:  cfg.CompressionLevel,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	hex := h.String()
	return filepath.Join(s.root, "objects", hex[:2], hex[2:])
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Put stores framed bytes and returns their digest. Storing an object that
// already exists is a no-op. Data is compressed into a temp file in the
// fan-out directory and renamed into place, so readers never see a partial
// object and concurrent writers of the same digest cannot corrupt it.
func (s *Store) Put(framed []byte) (Hash, error) {
	h := HashFramed(framed)

	// Fast path: already exists.
	if s.Has(h) {
		s.logger.Debug("object already present", zap.Stringer("hash", h))
		return h, nil
	}

	dest := s.objectPath(h)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ZeroHash, ioError("object write mkdir", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-obj-*")
	if err != nil {
		return ZeroHash, ioError("object write tmpfile", err)
	}
	tmpName := tmp.Name()

	if err := s.compressTo(tmp, framed); err != nil {
		err = multierr.Append(err, tmp.Close())
		os.Remove(tmpName)
		return ZeroHash, ioError("object write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ZeroHash, ioError("object write close", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		// A concurrent writer may have placed the identical object first.
		if s.Has(h) {
			return h, nil
		}
		return ZeroHash, ioError("object write rename", err)
	}

	s.logger.Debug("object written", zap.Stringer("hash", h), zap.Int("size", len(framed)))
	return h, nil
}

func (s *Store) compressTo(f *os.File, framed []byte) error {
	zw, err := zlib.NewWriterLevel(f, s.level)
	if err != nil {
		return err
	}
	if _, err := zw.Write(framed); err != nil {
		return multierr.Append(err, zw.Close())
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Chmod(0o444)
}

// Get returns the framed bytes stored under h.
func (s *Store) Get(h Hash) ([]byte, error) {
	f, err := os.Open(s.objectPath(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("object %s: %w", h, ErrNotFound)
		}
		return nil, ioError(fmt.Sprintf("object read %s", h), err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w: %v", h, ErrDecode, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		zr.Close()
		return nil, fmt.Errorf("object %s: %w: %v", h, ErrDecode, err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("object %s: %w: %v", h, ErrDecode, err)
	}
	return buf.Bytes(), nil
}

// Write frames data as objType, stores it, and returns its content hash.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	if _, err := ParseObjectType(string(objType)); err != nil {
		return ZeroHash, fmt.Errorf("object write: %w", err)
	}
	return s.Put(Frame(objType, data))
}

// Read retrieves an object by hash, returning its type and payload.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	raw, err := s.Get(h)
	if err != nil {
		return "", nil, err
	}
	objType, payload, err := Unframe(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return objType, payload, nil
}

// Verify re-reads h and checks that it decompresses, hashes back to h, and
// parses as its declared kind.
func (s *Store) Verify(h Hash) (ObjectType, error) {
	raw, err := s.Get(h)
	if err != nil {
		return "", err
	}
	if got := HashFramed(raw); got != h {
		return "", fmt.Errorf("object %s: %w: content hashes to %s", h, ErrDecode, got)
	}
	objType, payload, err := Unframe(raw)
	if err != nil {
		return "", fmt.Errorf("object verify %s: %w", h, err)
	}
	switch objType {
	case TypeTree:
		_, err = UnmarshalTree(payload)
	case TypeCommit:
		_, err = UnmarshalCommit(payload)
	}
	if err != nil {
		return "", fmt.Errorf("object verify %s: %w", h, err)
	}
	return objType, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

func (s *Store) readTyped(h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("object %s: %w: got %q, want %q", h, ErrTypeMismatch, objType, want)
	}
	return data, nil
}

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.readTyped(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	data, err := MarshalTree(tr)
	if err != nil {
		return ZeroHash, fmt.Errorf("write tree: %w", err)
	}
	return s.Write(TypeTree, data)
}

// ReadTree reads and parses a TreeObj. Entries come back sorted by name.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	data, err := s.readTyped(h, TypeTree)
	if err != nil {
		return nil, err
	}
	tr, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return tr, nil
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.readTyped(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return c, nil
}
