package dcfhdupes

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
)

// FileRef identifies a file by its path as produced by traversal
type FileRef string

// Path returns the path string
func (r FileRef) Path() string {
	return string(r)
}

// Dir returns the parent directory, "." when the path has none
func (r FileRef) Dir() string {
	d := filepath.Dir(string(r))
	if d == "" {
		return "."
	}
	return d
}

// Key is the comparable value a key function produces for one file.
// Keys compare bytewise: equal bytes mean candidate duplicates.
type Key []byte

// Equal reports whether two keys are identical
func (k Key) Equal(other Key) bool {
	return bytes.Equal(k, other)
}

// Compare orders keys bytewise
func (k Key) Compare(other Key) int {
	return bytes.Compare(k, other)
}

// SizeKey encodes a byte length so that bytewise order equals numeric order
func SizeKey(size int64) Key {
	k := make(Key, 8)
	binary.BigEndian.PutUint64(k, uint64(size))
	return k
}

// KeyFunc computes the key of one file. A non-nil error means the file could
// not be keyed; the member is dropped from its cluster and recorded as a
// failure.
type KeyFunc func(ref FileRef) (Key, error)

// KeyFailure records a member that a key function could not key
type KeyFailure struct {
	Ref FileRef
	Err error
}

// Excluded reports whether the failure is a policy exclusion rather than a read error
func (f KeyFailure) Excluded() bool {
	return errors.Is(f.Err, ErrExcluded)
}

// ErrExcluded is returned by key functions for files a policy removes from
// consideration (for example empty files when skip_empty is set)
var ErrExcluded = errors.New("excluded by policy")

// ErrNoInput is returned when a run is started without any input paths
var ErrNoInput = errors.New("no input paths")
