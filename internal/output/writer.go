// Package output writes body file lines to a file or stdout, optionally
// zstd-compressed. A Writer is safe for concurrent use by collector workers.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/bamsammich/bodyfile/internal/bodyfile"
)

// ColumnHeader names the body file columns in order.
const ColumnHeader = "md5|name|inode|mode_as_string|UID|GID|size|atime|mtime|ctime|crtime"

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("output closed")

// Options controls how lines are written.
type Options struct {
	RunID    string // recorded in the header when set
	Compress bool   // zstd-compress the stream
	Header   bool   // begin with "# ..." comment lines
}

// Writer serializes body file lines in arrival order.
type Writer struct {
	mu      sync.Mutex
	buf     *bufio.Writer
	enc     *zstd.Encoder // nil when not compressing
	closer  io.Closer     // nil for stdout and caller-owned writers
	scratch []byte
	lines   int64
	closed  bool
}

// Open creates (or truncates) path and returns a Writer for it. A path of
// "-" or "" writes to stdout.
func Open(path string, opts Options) (*Writer, error) {
	if path == "" || path == "-" {
		return New(os.Stdout, opts)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	w, err := New(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// New wraps dst. Closing the Writer flushes it but does not close dst.
func New(dst io.Writer, opts Options) (*Writer, error) {
	w := &Writer{}

	if opts.Compress {
		enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		w.enc = enc
		dst = enc
	}
	w.buf = bufio.NewWriterSize(dst, 64*1024)

	if opts.Header {
		if opts.RunID != "" {
			if err := w.Comment("bodyfile run " + opts.RunID); err != nil {
				return nil, err
			}
		}
		if err := w.Comment(ColumnHeader); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Write appends one serialized line.
func (w *Writer) Write(l bodyfile.Line) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	w.scratch = l.AppendTo(w.scratch[:0])
	if _, err := w.buf.Write(w.scratch); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	w.lines++
	return nil
}

// Comment writes "# text\n". Readers of the format skip such lines.
func (w *Writer) Comment(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if _, err := fmt.Fprintf(w.buf, "# %s\n", text); err != nil {
		return fmt.Errorf("write comment: %w", err)
	}
	return nil
}

// Lines returns the number of body file lines written so far.
func (w *Writer) Lines() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

// Close flushes buffered output, finishes the zstd stream and closes the
// underlying file when the Writer opened it. Close is idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	err := w.buf.Flush()
	if w.enc != nil {
		if encErr := w.enc.Close(); encErr != nil && err == nil {
			err = encErr
		}
	}
	if w.closer != nil {
		if closeErr := w.closer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	if err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
