// Package input acquires the document to import and buffers it fully in
// memory before execution.
package input

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

// Loader reads the configured source (standard input or a named file) into
// a DocumentBuffer. It implements pgimportdoc.DocumentLoader.
type Loader struct {
	path   string // empty means standard input
	stdin  io.Reader
	logger pgimportdoc.Logger
	stat   func(*os.File) (os.FileInfo, error)
}

// NewLoader creates a loader for the given input path. An empty path or a
// literal "-" selects standard input.
func NewLoader(path string, logger pgimportdoc.Logger) *Loader {
	if path == "-" {
		path = ""
	}
	return &Loader{
		path:   path,
		stdin:  os.Stdin,
		logger: logger,
		stat:   (*os.File).Stat,
	}
}

// NewReaderLoader creates a loader reading from r instead of os.Stdin.
// Used by tests and by callers that already hold the input stream.
func NewReaderLoader(r io.Reader, logger pgimportdoc.Logger) *Loader {
	return &Loader{
		stdin:  r,
		logger: logger,
		stat:   (*os.File).Stat,
	}
}

// Load reads the whole source into memory.
//
// For a named file the path is canonicalized and a pre-flight size check
// rejects regular files of MaxDocumentSize or more before any bytes are
// read. The source is read in ReadChunkSize slices appended to a growable
// buffer until end-of-stream.
func (l *Loader) Load(ctx context.Context) (*pgimportdoc.DocumentBuffer, error) {
	src := l.stdin
	if l.path != "" {
		path, err := filepath.Abs(filepath.Clean(l.path))
		if err != nil {
			return nil, fmt.Errorf("unable to resolve %q: %v: %w", l.path, err, pgimportdoc.ErrInputFailed)
		}

		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("unable to open %q: %v: %w", l.path, err, pgimportdoc.ErrInputFailed)
		}
		defer f.Close()

		fi, err := l.stat(f)
		if err != nil {
			return nil, fmt.Errorf("unable to stat %q: %v: %w", l.path, err, pgimportdoc.ErrInputFailed)
		}
		if fi.Mode().IsRegular() && fi.Size() >= pgimportdoc.MaxDocumentSize {
			return nil, fmt.Errorf("%q is too big (1GB or more): %w", l.path, pgimportdoc.ErrInputTooLarge)
		}

		l.logger.Verbose("Reading document from %q", path)
		src = f
	} else {
		l.logger.Verbose("Reading document from standard input")
	}

	data, err := l.readAll(ctx, src)
	if err != nil {
		return nil, err
	}

	return &pgimportdoc.DocumentBuffer{Data: data}, nil
}

// readAll accumulates the stream in fixed-size chunks. A read error at any
// point is terminal; a failed buffer growth is reported as a distinct
// out-of-memory error rather than a generic I/O error.
func (l *Loader) readAll(ctx context.Context, src io.Reader) ([]byte, error) {
	// Non-nil even for an empty stream: a nil value would bind as SQL NULL
	// instead of a zero-length document.
	data := make([]byte, 0, pgimportdoc.ReadChunkSize)
	chunk := make([]byte, pgimportdoc.ReadChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("read interrupted: %v: %w", err, pgimportdoc.ErrInputFailed)
		}

		n, err := src.Read(chunk)
		if n > 0 {
			grown, growErr := grow(data, chunk[:n])
			if growErr != nil {
				return nil, growErr
			}
			data = grown
		}
		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read data from %s: %v: %w", l.sourceName(), err, pgimportdoc.ErrInputFailed)
		}
	}
}

// grow appends chunk to data, translating an allocation failure into the
// out-of-memory sentinel. Appending past the slice size limit panics, which
// is the only growth failure observable in-process.
func grow(data, chunk []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("cannot buffer document: %w", pgimportdoc.ErrOutOfMemory)
		}
	}()
	return append(data, chunk...), nil
}

func (l *Loader) sourceName() string {
	if l.path == "" {
		return "standard input"
	}
	return fmt.Sprintf("%q", l.path)
}
