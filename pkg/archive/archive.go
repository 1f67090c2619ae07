// Copyright (c) 2025 A Bit of Help, Inc.

// Package archive assembles compressed results into a single ZIP deliverable.
package archive

import (
	"bytes"
	"fmt"

	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/klauspost/compress/zip"
)

const (
	// ContentType is the content type of a built archive
	ContentType = "application/zip"

	// DefaultName is the deliverable name used when none is configured
	DefaultName = "pixelpack-compressed.zip"
)

// Entry is one named member of an archive
type Entry struct {
	Name string
	Data []byte
}

// CheckNames rejects empty and duplicate entry names. On failure it also returns
// the index of the offending name.
func CheckNames(names []string) (int, error) {
	seen := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return i, fmt.Errorf("%w: entry %d has no name", customErrors.ErrInvalidConfiguration, i+1)
		}
		if first, ok := seen[name]; ok {
			return i, fmt.Errorf("%w: duplicate entry name %q (entries %d and %d)",
				customErrors.ErrInvalidConfiguration, name, first+1, i+1)
		}
		seen[name] = i
	}
	return -1, nil
}

// Build writes entries, in order, into a ZIP archive. Entries are stored without
// further compression and carry no timestamps, so equal input yields equal bytes.
func Build(entries []Entry) ([]byte, error) {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	if _, err := CheckNames(names); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Store})
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry %q: %w", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %q: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
