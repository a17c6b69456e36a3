package dcfhdupes

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// HashAlgorithm represents a hash algorithm configuration
type HashAlgorithm struct {
	Name    string
	Size    int
	NewFunc func() hash.Hash
}

// GetHashAlgorithm returns the hash algorithm configuration for the given name
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	switch strings.ToLower(name) {
	case "md5":
		return &HashAlgorithm{
			Name:    "md5",
			Size:    HashSizeMD5,
			NewFunc: func() hash.Hash { return md5.New() },
		}, nil
	case "sha1":
		return &HashAlgorithm{
			Name:    "sha1",
			Size:    HashSizeSHA1,
			NewFunc: func() hash.Hash { return sha1.New() },
		}, nil
	case "sha256":
		return &HashAlgorithm{
			Name:    "sha256",
			Size:    HashSizeSHA256,
			NewFunc: func() hash.Hash { return sha256.New() },
		}, nil
	case "sha512":
		return &HashAlgorithm{
			Name:    "sha512",
			Size:    HashSizeSHA512,
			NewFunc: func() hash.Hash { return sha512.New() },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", name)
	}
}

// HashFileBuffered hashes a file through a buffer of bufferSize bytes, so
// memory use does not depend on the file size
func HashFileBuffered(filePath string, algorithm *HashAlgorithm, bufferSize int) ([]byte, error) {
	if bufferSize <= 0 {
		return nil, fmt.Errorf("invalid hash buffer size: %d", bufferSize)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	adviseSequential(file)

	hasher := algorithm.NewFunc()
	buffer := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(hasherOnly{hasher}, readerOnly{file}, buffer); err != nil {
		return nil, fmt.Errorf("failed to hash file %s: %w", filePath, err)
	}

	return hasher.Sum(nil), nil
}

// adviseSequential hints the kernel that the whole file will be read once.
// Failure only loses the hint.
func adviseSequential(file *os.File) {
	if err := unix.Fadvise(int(file.Fd()), 0, 0, unix.FADV_SEQUENTIAL); err != nil && IsDebugEnabled("hash") {
		VerboseLog(3, "fadvise %s: %v", file.Name(), err)
	}
}

// io.CopyBuffer bypasses the buffer when src implements WriterTo or dst
// implements ReaderFrom; these wrappers keep reads bounded by the buffer.
type hasherOnly struct{ io.Writer }
type readerOnly struct{ io.Reader }
