package fsutil

import (
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// IsGzip reports whether the path names a gzip-compressed file.
func IsGzip(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// OpenReader opens the named file for reading, decompressing transparently
// when the path carries a .gz suffix.
func OpenReader(fsys FileSystem, path string) (io.ReadCloser, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	if !IsGzip(path) {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipReadCloser{zr: zr, file: f}, nil
}

// CreateWriter creates the named file for writing, compressing transparently
// when the path carries a .gz suffix.
func CreateWriter(fsys FileSystem, path string) (io.WriteCloser, error) {
	f, err := fsys.Create(path)
	if err != nil {
		return nil, err
	}
	if !IsGzip(path) {
		return f, nil
	}
	return &gzipWriteCloser{zw: gzip.NewWriter(f), file: f}, nil
}

type gzipReadCloser struct {
	zr   *gzip.Reader
	file io.Closer
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipReadCloser) Close() error {
	zerr := g.zr.Close()
	ferr := g.file.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

type gzipWriteCloser struct {
	zw   *gzip.Writer
	file io.Closer
}

func (g *gzipWriteCloser) Write(p []byte) (int, error) { return g.zw.Write(p) }

func (g *gzipWriteCloser) Close() error {
	zerr := g.zw.Close()
	ferr := g.file.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}
