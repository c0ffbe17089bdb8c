package scorefile

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// decompressed wraps a file with the decompressor its magic bytes call for.
// Plain text, gzip, and zstandard are supported.
type decompressed struct {
	file   *os.File
	gz     *gzip.Reader
	zst    *zstd.Decoder
	Reader *bufio.Reader
}

// openDecompressed sniffs the file's magic bytes and sets up the matching
// reader chain.
func openDecompressed(path string) (*decompressed, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	buf := make([]byte, 4)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read magic bytes: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}

	d := &decompressed{file: file}
	switch {
	case n >= 2 && buf[0] == 0x1f && buf[1] == 0x8b:
		d.gz, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		d.Reader = bufio.NewReader(d.gz)
	case n >= 4 && buf[0] == 0x28 && buf[1] == 0xb5 && buf[2] == 0x2f && buf[3] == 0xfd:
		d.zst, err = zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		d.Reader = bufio.NewReader(d.zst)
	default:
		d.Reader = bufio.NewReader(file)
	}

	return d, nil
}

// Close releases the decompressor and the underlying file.
func (d *decompressed) Close() error {
	if d.gz != nil {
		d.gz.Close()
	}
	if d.zst != nil {
		d.zst.Close()
	}
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
