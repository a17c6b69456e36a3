package dcfhdupes

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// SizeKeyFunc keys files by byte length. With skipEmpty, empty files are
// reported as ErrExcluded instead of forming their own cluster.
func SizeKeyFunc(skipEmpty bool) KeyFunc {
	return func(ref FileRef) (Key, error) {
		info, err := os.Stat(ref.Path())
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", ref, err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("not a regular file: %s", ref)
		}
		if skipEmpty && info.Size() == 0 {
			return nil, fmt.Errorf("empty file %s: %w", ref, ErrExcluded)
		}
		return SizeKey(info.Size()), nil
	}
}

// PrefixKeyFunc keys files by their first n bytes. Shorter files yield the
// whole content.
func PrefixKeyFunc(n int) KeyFunc {
	return func(ref FileRef) (Key, error) {
		file, err := os.Open(ref.Path())
		if err != nil {
			return nil, fmt.Errorf("failed to open file %s: %w", ref, err)
		}
		defer file.Close()

		buf := make([]byte, n)
		read, err := io.ReadFull(file, buf)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("failed to read prefix of %s: %w", ref, err)
		}
		return Key(buf[:read]), nil
	}
}

// HashKeyFunc keys files by a digest of their full content, read through a
// buffer of bufferSize bytes
func HashKeyFunc(algorithm *HashAlgorithm, bufferSize int) KeyFunc {
	return func(ref FileRef) (Key, error) {
		sum, err := HashFileBuffered(ref.Path(), algorithm, bufferSize)
		if err != nil {
			return nil, err
		}
		return Key(sum), nil
	}
}

// FileSize returns the size of a file, or -1 when it cannot be stat'ed.
// Used for listings only.
func FileSize(ref FileRef) int64 {
	info, err := os.Stat(ref.Path())
	if err != nil {
		return -1
	}
	return info.Size()
}
