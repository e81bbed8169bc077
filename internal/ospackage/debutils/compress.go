package debutils

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// DecompressReader wraps r with the decompressor matching the file name's
// extension. Debian repositories and package data members use gz, xz or zst;
// names without a recognized extension are passed through as-is.
func DecompressReader(name string, r io.Reader) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		return gzReader, nil
	case strings.HasSuffix(name, ".xz"):
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader for %s: %w", name, err)
		}
		return io.NopCloser(xzReader), nil
	case strings.HasSuffix(name, ".zst"):
		zstReader, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader for %s: %w", name, err)
		}
		return zstReader.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}
