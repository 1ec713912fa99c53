package snapshot

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"quotecollector/internal/quote"

	"github.com/spf13/afero"
)

// Header is the fixed column order of a snapshot file.
var Header = []string{"name", "timestamp", "open", "close", "adjclose", "high", "low", "volume"}

var (
	ErrSerialization = errors.New("snapshot serialization failed")
	ErrFilesystem    = errors.New("snapshot write failed")
)

// WriteError reports why a snapshot could not be persisted.
type WriteError struct {
	Kind error // ErrSerialization or ErrFilesystem
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Writer persists a cycle batch as a CSV file, replacing the previous
// snapshot in full.
type Writer struct {
	fs afero.Fs
}

// NewWriter returns a Writer on fs, or on the OS filesystem when fs is nil.
func NewWriter(fs afero.Fs) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{fs: fs}
}

// Write serializes batch and swaps it into destination. The content goes to a
// temporary file in the same directory first, so destination either keeps the
// previous snapshot or holds the complete new one.
func (w *Writer) Write(batch []quote.Record, destination string) error {
	data, err := Encode(batch)
	if err != nil {
		return &WriteError{Kind: ErrSerialization, Path: destination, Err: err}
	}
	if err := w.replace(destination, data); err != nil {
		return &WriteError{Kind: ErrFilesystem, Path: destination, Err: err}
	}
	return nil
}

func (w *Writer) replace(destination string, data []byte) error {
	dir, base := filepath.Split(destination)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(w.fs, dir, "."+base+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = w.fs.Remove(tmpName)
		return cause
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = w.fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := w.fs.Chmod(tmpName, 0o644); err != nil {
		_ = w.fs.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := w.fs.Rename(tmpName, destination); err != nil {
		_ = w.fs.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// Encode renders batch as CSV with a header row. An empty batch yields the
// header only.
func Encode(batch []quote.Record) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(Header); err != nil {
		return nil, err
	}
	for i, r := range batch {
		if r.Symbol == "" {
			return nil, fmt.Errorf("record %d: empty symbol", i)
		}
		if err := cw.Write(row(r)); err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.Symbol, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func row(r quote.Record) []string {
	return []string{
		r.Symbol,
		strconv.FormatInt(r.Timestamp, 10),
		formatFloat(r.Open),
		formatFloat(r.Close),
		formatFloat(r.AdjClose),
		formatFloat(r.High),
		formatFloat(r.Low),
		strconv.FormatUint(r.Volume, 10),
	}
}

// formatFloat uses the shortest representation that parses back to the same value.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
