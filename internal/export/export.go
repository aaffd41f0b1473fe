// Package export writes trace records as zstd-compressed JSON Lines.
//
// One record per line, in the order they were written. The format is the
// archival and interchange form of a trace log; the SQLite store remains
// the working copy.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/roach88/gearbox/internal/trace"
)

// Extension is the conventional file suffix.
const Extension = ".jsonl.zst"

// ErrClosed is returned when writing to a closed Writer.
var ErrClosed = errors.New("export writer closed")

// Writer appends records to a compressed stream. It implements trace.Sink
// and is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	enc    *zstd.Encoder
	w      *bufio.Writer
	closer io.Closer // underlying file, if Writer opened it
	count  int
}

// NewWriter compresses into dst. Closing the Writer does not close dst.
func NewWriter(dst io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return &Writer{enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Create truncates or creates path and returns a Writer that owns it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	w, err := NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// Record writes one line.
func (w *Writer) Record(rec trace.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		return ErrClosed
	}
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes the stream and finishes the zstd frame.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		return nil
	}
	err := w.w.Flush()
	if cerr := w.enc.Close(); err == nil {
		err = cerr
	}
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	w.w, w.enc, w.closer = nil, nil, nil
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Each decodes records from a compressed stream and calls fn for each, in
// order. It stops at the first error fn returns.
func Each(src io.Reader, fn func(trace.Record) error) error {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		var rec trace.Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return fmt.Errorf("export: line %d: %w", line, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// ReadAll decodes every record in src.
func ReadAll(src io.Reader) ([]trace.Record, error) {
	var out []trace.Record
	err := Each(src, func(rec trace.Record) error {
		out = append(out, rec)
		return nil
	})
	return out, err
}

// ReadFile decodes every record in the file at path.
func ReadFile(path string) ([]trace.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	defer f.Close()
	return ReadAll(f)
}
