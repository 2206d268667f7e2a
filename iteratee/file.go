package iteratee

import (
	"bufio"
	"io"
	"os"

	"github.com/kbukum/streamkit/errors"
)

// DefaultChunkSize is used when a chunked source is given a non-positive size.
const DefaultChunkSize = 32 * 1024

type readerSource struct {
	open  func() (io.ReadCloser, error)
	name  string
	chunk int
}

func (s *readerSource) Drive(sink Sink[[]byte]) {
	r, err := s.open()
	if err != nil {
		sink.Offer(Err[[]byte](errors.Source(s.name, err)))
		return
	}
	defer r.Close()

	buf := make([]byte, s.chunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if !sink.Offer(Elem(chunk)) {
				return
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			sink.Offer(Err[[]byte](errors.Source(s.name, err)))
			return
		}
	}
}

func (s *readerSource) sourceName() string { return s.name }

type lineSource struct {
	open func() (io.ReadCloser, error)
	name string
}

func (s *lineSource) Drive(sink Sink[string]) {
	r, err := s.open()
	if err != nil {
		sink.Offer(Err[string](errors.Source(s.name, err)))
		return
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if !sink.Offer(Elem(scanner.Text())) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		sink.Offer(Err[string](errors.Source(s.name, err)))
	}
}

func (s *lineSource) sourceName() string { return s.name }

func openFile(path string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return os.Open(path)
	}
}

func once(r io.Reader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	}
}

// FromFile enumerates the contents of path in chunks of at most chunkSize
// bytes. The file is opened on each attachment; open and read failures are
// delivered as SOURCE_FAILED error inputs.
func FromFile(path string, chunkSize int) Enumerator[[]byte] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &readerSource{open: openFile(path), name: "file", chunk: chunkSize}
}

// FromFileLines enumerates the lines of path without line terminators.
func FromFileLines(path string) Enumerator[string] {
	return &lineSource{open: openFile(path), name: "file"}
}

// FromReader enumerates r in chunks. r is consumed by the first attachment.
func FromReader(r io.Reader, chunkSize int) Enumerator[[]byte] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &readerSource{open: once(r), name: "reader", chunk: chunkSize}
}

// FromLines enumerates the lines of r. r is consumed by the first attachment.
func FromLines(r io.Reader) Enumerator[string] {
	return &lineSource{open: once(r), name: "reader"}
}
