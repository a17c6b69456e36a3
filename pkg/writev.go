package dcfhdupes

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"unsafe"

	"github.com/google/vectorio"
)

// writeLines writes the buffers in order. Files get one writev per IOV_MAX
// buffers; any other writer gets plain sequential writes.
func writeLines(w io.Writer, lines [][]byte) error {
	file, ok := w.(*os.File)
	if !ok {
		for _, line := range lines {
			if _, err := w.Write(line); err != nil {
				return err
			}
		}
		return nil
	}
	return writevFile(file, lines)
}

// writevFile writes lines to file with vectorio, chunked to respect IOV_MAX
func writevFile(file *os.File, lines [][]byte) error {
	iovecs := make([]syscall.Iovec, 0, len(lines))
	expected := 0
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		iovecs = append(iovecs, syscall.Iovec{
			Base: (*byte)(unsafe.Pointer(&line[0])),
			Len:  uint64(len(line)),
		})
		expected += len(line)
	}

	maxIovecs := iovMax
	totalWritten := 0
	for offset := 0; offset < len(iovecs); offset += maxIovecs {
		end := offset + maxIovecs
		if end > len(iovecs) {
			end = len(iovecs)
		}

		chunk := iovecs[offset:end]
		chunkSize := 0
		for _, iov := range chunk {
			chunkSize += int(iov.Len)
		}

		nw, err := vectorio.WritevRaw(uintptr(file.Fd()), chunk)
		if err != nil {
			return fmt.Errorf("failed to write report with vectorio: %w", err)
		}
		if nw != chunkSize {
			// Short writev (pipes, signals): finish this chunk with plain writes
			if err := finishShortWrite(file, chunk, nw); err != nil {
				return err
			}
		}
		totalWritten += chunkSize
	}

	if totalWritten != expected {
		return fmt.Errorf("report write incomplete: wrote %d bytes, expected %d", totalWritten, expected)
	}
	return nil
}

// finishShortWrite writes whatever part of chunk lies beyond the first written bytes
func finishShortWrite(file *os.File, chunk []syscall.Iovec, written int) error {
	for _, iov := range chunk {
		n := int(iov.Len)
		buf := unsafe.Slice(iov.Base, n)
		if written >= n {
			written -= n
			continue
		}
		if _, err := file.Write(buf[written:]); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		written = 0
	}
	return nil
}

// iovMax is UIO_MAXIOV, the writev buffer limit on Linux
const iovMax = 1024
