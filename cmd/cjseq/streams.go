package main

import (
	"io"
	"os"

	"github.com/cityjson/cjseq/internal/fsutil"
)

// openInput opens path for reading, decompressing .gz transparently. An
// empty path means stdin.
func openInput(fsys fsutil.FileSystem, path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return fsutil.OpenReader(fsys, path)
}

// openOutput opens path for writing, compressing .gz transparently. An
// empty path means stdout, which stays open across Close.
func openOutput(fsys fsutil.FileSystem, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return fsutil.CreateWriter(fsys, path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
