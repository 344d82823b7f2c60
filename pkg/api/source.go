package api

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if err := rc.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// sourceReader tags read failures of the underlying stream so the parser can
// tell them from malformed XML.
type sourceReader struct {
	r    io.Reader
	file string
}

func (s *sourceReader) Read(b []byte) (int, error) {
	n, err := s.r.Read(b)
	if err != nil && err != io.EOF {
		err = &UnreadableSourceError{Source: s.file, Err: err}
	}
	return n, err
}

// OpenReport opens a report file, decompressing .gz and .xz files on the fly.
func OpenReport(file string) (io.ReadCloser, error) {
	fd, err := os.Open(file)
	if err != nil {
		return nil, &UnreadableSourceError{Source: file, Err: err}
	}
	rc := &readCloser{Reader: fd, closers: []io.Closer{fd}}

	switch {
	case strings.HasSuffix(file, ".gz"):
		gz, err := gzip.NewReader(fd)
		if err != nil {
			rc.Close()
			return nil, &UnreadableSourceError{Source: file, Err: err}
		}
		rc.Reader = gz
		rc.closers = append(rc.closers, gz)
	case strings.HasSuffix(file, ".xz"):
		xr, err := xz.NewReader(bufio.NewReader(fd))
		if err != nil {
			rc.Close()
			return nil, &UnreadableSourceError{Source: file, Err: err}
		}
		rc.Reader = xr
	}
	rc.Reader = &sourceReader{r: rc.Reader, file: file}
	return rc, nil
}
