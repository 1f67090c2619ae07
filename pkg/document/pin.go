// Copyright (c) 2025 A Bit of Help, Inc.

package document

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const (
	// Producer names the repackager in the written info dictionary
	Producer = "pixelpack"

	// pinnedDate is 1980-01-01T00:00:00Z in PDF date syntax, without the zone suffix
	pinnedDate = "D:19800101000000"
)

var (
	infoRef       = regexp.MustCompile(`/Info\s*(\d+)\s+(\d+)\s+R`)
	dateValue     = regexp.MustCompile(`/(?:CreationDate|ModDate)\s*\(([^)]*)\)`)
	producerValue = regexp.MustCompile(`/Producer\s*\(([^)]*)\)`)
	fileID        = regexp.MustCompile(`/ID\s*\[\s*<([0-9A-Fa-f]*)>\s*<([0-9A-Fa-f]*)>\s*\]`)
)

// pinVolatile overwrites the write-time values pdfcpu stamps into the output: the info
// dates, the producer and the trailer ID. Every replacement has the length of the value
// it replaces, so the cross-reference offsets stay valid.
func pinVolatile(pdf []byte, digest [sha256.Size]byte) ([]byte, error) {
	trailerAt := bytes.LastIndex(pdf, []byte("trailer"))
	if trailerAt < 0 {
		return nil, fmt.Errorf("failed to pin document: no trailer")
	}
	trailer := pdf[trailerAt:]

	if m := infoRef.FindSubmatch(trailer); m != nil {
		info, err := objectBody(pdf[:trailerAt], string(m[1]), string(m[2]))
		if err != nil {
			return nil, err
		}
		for _, loc := range dateValue.FindAllSubmatchIndex(info, -1) {
			overwrite(info[loc[2]:loc[3]], fixedDate(loc[3]-loc[2]))
		}
		for _, loc := range producerValue.FindAllSubmatchIndex(info, -1) {
			overwrite(info[loc[2]:loc[3]], Producer)
		}
	}

	if loc := fileID.FindSubmatchIndex(trailer); loc != nil {
		id := strings.Repeat(hex.EncodeToString(digest[:]), 2)
		overwrite(trailer[loc[2]:loc[3]], id)
		overwrite(trailer[loc[4]:loc[5]], id)
	}
	return pdf, nil
}

// objectBody returns the bytes of indirect object "num gen obj" up to its endobj
func objectBody(pdf []byte, num, gen string) ([]byte, error) {
	header := regexp.MustCompile(`(?:^|[\r\n])` + num + `\s+` + gen + `\s+obj\b`)
	loc := header.FindIndex(pdf)
	if loc == nil {
		return nil, fmt.Errorf("failed to pin document: info object %s %s not found", num, gen)
	}
	body := pdf[loc[1]:]
	if end := bytes.Index(body, []byte("endobj")); end >= 0 {
		body = body[:end]
	}
	return body, nil
}

// fixedDate returns pinnedDate with a UTC zone suffix fitted to n bytes
func fixedDate(n int) string {
	switch n {
	case len(pinnedDate) + len("Z"):
		return pinnedDate + "Z"
	case len(pinnedDate) + len("+00'00'"):
		return pinnedDate + "+00'00'"
	}
	return pinnedDate
}

// overwrite copies s into dst, padding with spaces or truncating to len(dst)
func overwrite(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = ' '
	}
}
