package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

// ReaderSource streams lines from an io.Reader (stdin or a capture file).
// Lines are delivered strictly in order; the channel closes at EOF.
type ReaderSource struct {
	r      io.Reader
	closer io.Closer
}

// NewStdinSource reads the feed from standard input.
func NewStdinSource() *ReaderSource {
	return &ReaderSource{r: os.Stdin}
}

// NewFileSource reads the feed from a capture file.
func NewFileSource(path string) (*ReaderSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}
	return &ReaderSource{r: f, closer: f}, nil
}

// NewReaderSource wraps an arbitrary reader; used by tests.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

func (s *ReaderSource) Lines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string, 256)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)
		defer close(errs)

		sc := bufio.NewScanner(s.r)
		// raw records can exceed the default 64K token limit
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for sc.Scan() {
			line := sc.Text()
			if line == "" {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case lines <- line:
			}
		}
		if err := sc.Err(); err != nil {
			errs <- fmt.Errorf("feed read: %w", err)
		}
	}()

	return lines, errs
}

func (s *ReaderSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
