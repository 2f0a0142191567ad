// Package archive packs named blobs into a single zip container.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"
)

// FileName is the fixed name of the delivered archive.
const FileName = "images_with_logo.zip"

var ErrDuplicateEntry = errors.New("duplicate archive entry")

// Entries carry a fixed modification time so the same inputs always produce
// the same bytes.
var entryTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

type Entry struct {
	Name string
	Data []byte
}

// Write writes entries to w in order as a deflate-compressed zip.
func Write(w io.Writer, entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("archive: entry with empty name")
		}
		if _, ok := seen[e.Name]; ok {
			return fmt.Errorf("archive: %w: %s", ErrDuplicateEntry, e.Name)
		}
		seen[e.Name] = struct{}{}
	}

	zw := zip.NewWriter(w)
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: entryTime,
		})
		if err != nil {
			return fmt.Errorf("archive: adding %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return fmt.Errorf("archive: writing %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}

// Bytes is Write into memory.
func Bytes(entries []Entry) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := Write(buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read returns the entries of a zip produced by Write, in archive order.
func Read(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	out := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("archive: opening %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("archive: reading %s: %w", f.Name, err)
		}
		out = append(out, Entry{Name: f.Name, Data: b})
	}
	return out, nil
}
