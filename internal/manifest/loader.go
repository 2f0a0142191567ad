// Package manifest reads CSV batch lists for the stamp command.
package manifest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Entry is one image of a batch. Source is a local path or an http(s) URL.
type Entry struct {
	Name   string
	Source string
}

func (e Entry) IsURL() bool {
	return strings.HasPrefix(e.Source, "http://") || strings.HasPrefix(e.Source, "https://")
}

// validName reports whether name can be used as a flat archive entry name.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// Load reads a CSV manifest with a header row. The "source" column is
// required; "name" is optional and defaults to the base name of the source.
// Names must not contain path separators.
// Relative local paths are resolved against the manifest's directory.
func Load(manifestPath string) ([]Entry, error) {
	fp, err := os.Open(manifestPath)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", manifestPath, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("manifest %s has no header", manifestPath)
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["source"]; !ok {
		return nil, fmt.Errorf("manifest %s: missing \"source\" column", manifestPath)
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	base := filepath.Dir(manifestPath)
	out := []Entry{}
	for i, row := range rows[1:] {
		e := Entry{Source: get(row, "source"), Name: get(row, "name")}
		if e.Source == "" {
			return nil, fmt.Errorf("manifest %s: row %d has no source", manifestPath, i+2)
		}
		if e.IsURL() {
			if e.Name == "" {
				e.Name = path.Base(strings.SplitN(e.Source, "?", 2)[0])
			}
		} else {
			if !filepath.IsAbs(e.Source) {
				e.Source = filepath.Join(base, e.Source)
			}
			if e.Name == "" {
				e.Name = filepath.Base(e.Source)
			}
		}
		if !validName(e.Name) {
			return nil, fmt.Errorf("manifest %s: row %d: invalid entry name %q", manifestPath, i+2, e.Name)
		}
		out = append(out, e)
	}
	return out, nil
}
