package input

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vvka-141/pgimportdoc/internal/logging"
	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoad_FromFile(t *testing.T) {
	content := []byte("<doc><title>hello</title></doc>")
	path := writeTempFile(t, "doc.xml", content)

	loader := NewLoader(path, logging.NewNullLogger())
	buf, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !bytes.Equal(buf.Data, content) {
		t.Errorf("Load() = %q, want %q", buf.Data, content)
	}
	if buf.Len() != len(content) {
		t.Errorf("Len() = %d, want %d", buf.Len(), len(content))
	}
}

func TestLoad_FromFile_LargerThanOneChunk(t *testing.T) {
	// Spans many read chunks so the append loop actually iterates.
	content := bytes.Repeat([]byte("0123456789abcdef"), 1000)
	path := writeTempFile(t, "doc.bin", content)

	loader := NewLoader(path, logging.NewNullLogger())
	buf, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !bytes.Equal(buf.Data, content) {
		t.Errorf("Load() returned %d bytes, want %d", buf.Len(), len(content))
	}
}

func TestLoad_FromReader(t *testing.T) {
	content := "text document from a pipe"

	loader := NewReaderLoader(strings.NewReader(content), logging.NewNullLogger())
	buf, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if string(buf.Data) != content {
		t.Errorf("Load() = %q, want %q", buf.Data, content)
	}
}

func TestLoad_EmptyInput(t *testing.T) {
	loader := NewReaderLoader(strings.NewReader(""), logging.NewNullLogger())
	buf, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Len() = %d, want 0", buf.Len())
	}
	if buf.Data == nil {
		t.Error("empty input must produce an empty value, not nil")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.txt", nil)

	loader := NewLoader(path, logging.NewNullLogger())
	buf, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Len() = %d, want 0", buf.Len())
	}
	if buf.Data == nil {
		t.Error("empty file must produce an empty value, not nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent.xml"), logging.NewNullLogger())
	_, err := loader.Load(context.Background())
	if !errors.Is(err, pgimportdoc.ErrInputFailed) {
		t.Fatalf("Load() error = %v, want ErrInputFailed", err)
	}
}

func TestLoad_FileTooLarge(t *testing.T) {
	// A sparse file carries the size without the disk usage.
	path := filepath.Join(t.TempDir(), "huge.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create sparse file: %v", err)
	}
	if err := f.Truncate(pgimportdoc.MaxDocumentSize); err != nil {
		f.Close()
		t.Skipf("cannot create sparse file: %v", err)
	}
	f.Close()

	loader := NewLoader(path, logging.NewNullLogger())
	_, err = loader.Load(context.Background())
	if !errors.Is(err, pgimportdoc.ErrInputTooLarge) {
		t.Fatalf("Load() error = %v, want ErrInputTooLarge", err)
	}
	if !strings.Contains(err.Error(), "too big") {
		t.Errorf("Load() error = %v, want a size message", err)
	}
}

// sizedFileInfo reports a fabricated size over a real file's metadata, so
// the 1 GiB boundary is testable without creating a 1 GiB file.
type sizedFileInfo struct {
	os.FileInfo
	size int64
}

func (fi sizedFileInfo) Size() int64 { return fi.size }

func newSizedLoader(t *testing.T, path string, reportedSize int64) *Loader {
	t.Helper()
	loader := NewLoader(path, logging.NewNullLogger())
	loader.stat = func(f *os.File) (os.FileInfo, error) {
		real, err := f.Stat()
		if err != nil {
			return nil, err
		}
		return sizedFileInfo{FileInfo: real, size: reportedSize}, nil
	}
	return loader
}

func TestLoad_FileOneByteUnderLimit(t *testing.T) {
	content := []byte("fits")
	path := writeTempFile(t, "under.bin", content)

	loader := newSizedLoader(t, path, pgimportdoc.MaxDocumentSize-1)
	buf, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !bytes.Equal(buf.Data, content) {
		t.Errorf("Load() = %q, want %q", buf.Data, content)
	}
}

func TestLoad_FileExactlyAtLimit(t *testing.T) {
	path := writeTempFile(t, "at.bin", []byte("x"))

	loader := newSizedLoader(t, path, pgimportdoc.MaxDocumentSize)
	_, err := loader.Load(context.Background())
	if !errors.Is(err, pgimportdoc.ErrInputTooLarge) {
		t.Fatalf("Load() error = %v, want ErrInputTooLarge", err)
	}
}

func TestLoad_DashSelectsStdin(t *testing.T) {
	loader := NewLoader("-", logging.NewNullLogger())
	if loader.path != "" {
		t.Errorf("path = %q, want empty for '-'", loader.path)
	}
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) > 0 {
		n := copy(p, r.data)
		r.data = r.data[n:]
		return n, nil
	}
	return 0, r.err
}

func TestLoad_ReadError(t *testing.T) {
	src := &failingReader{data: []byte("partial"), err: errors.New("device gone")}

	loader := NewReaderLoader(src, logging.NewNullLogger())
	_, err := loader.Load(context.Background())
	if !errors.Is(err, pgimportdoc.ErrInputFailed) {
		t.Fatalf("Load() error = %v, want ErrInputFailed", err)
	}
	if !strings.Contains(err.Error(), "device gone") {
		t.Errorf("Load() error = %v, want to carry the cause", err)
	}
}

func TestLoad_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := NewReaderLoader(strings.NewReader("data"), logging.NewNullLogger())
	_, err := loader.Load(ctx)
	if !errors.Is(err, pgimportdoc.ErrInputFailed) {
		t.Fatalf("Load() error = %v, want ErrInputFailed", err)
	}
}
