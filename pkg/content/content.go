// Copyright (c) 2025 A Bit of Help, Inc.

// Package content resolves a file's content kind once, at ingress, into a closed set
// of variants that the dispatcher matches exhaustively.
package content

import (
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Kind is the classified family of a payload.
type Kind int

const (
	// Unknown is the zero value; the dispatcher rejects it
	Unknown Kind = iota
	// Image payloads go to the raster recompressor
	Image
	// Document payloads go to the document repackager
	Document
	// Text payloads go to one of the text codecs
	Text
)

// Common content types.
const (
	TypePDF         = "application/pdf"
	TypeOctetStream = "application/octet-stream"
	TypePNG         = "image/png"
	TypeJPEG        = "image/jpeg"
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Document:
		return "document"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Classify picks the content kind from the declared type, the file name and the
// leading bytes of the payload, in that order of trust. The declared type wins when it
// names a family; the payload is sniffed only when the declared type is empty or generic.
func Classify(name, declared string, data []byte) Kind {
	mt := mediaType(declared)

	if strings.HasPrefix(mt, "image/") {
		return Image
	}
	if mt == TypePDF || strings.EqualFold(filepath.Ext(name), ".pdf") {
		return Document
	}

	if mt == "" || mt == TypeOctetStream {
		if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
			switch {
			case kind.MIME.Type == "image":
				return Image
			case kind.MIME.Value == TypePDF:
				return Document
			}
		}
	}

	return Text
}

// TypeByName returns the content type registered for name's extension, or "" when
// the extension is unknown.
func TypeByName(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return ""
	}
	t := filetype.GetType(ext)
	if t == filetype.Unknown {
		return ""
	}
	return t.MIME.Value
}

// mediaType lower-cases a content type and drops any parameters.
func mediaType(declared string) string {
	mt, _, _ := strings.Cut(declared, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
