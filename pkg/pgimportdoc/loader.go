package pgimportdoc

import "context"

// DocumentBuffer is the fully-read content of the input source.
type DocumentBuffer struct {
	// Data is the raw document bytes.
	Data []byte
}

// Len returns the buffered length in bytes.
func (b *DocumentBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// DocumentLoader produces a DocumentBuffer from the configured input
// source (standard input or a named file).
type DocumentLoader interface {
	// Load reads the whole source into memory. Oversized regular files are
	// rejected before reading (ErrInputTooLarge); open/read failures wrap
	// ErrInputFailed; buffer-growth failures wrap ErrOutOfMemory.
	Load(ctx context.Context) (*DocumentBuffer, error)
}
