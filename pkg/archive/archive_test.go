// Copyright (c) 2025 A Bit of Help, Inc.

package archive

import (
	"bytes"
	"io"
	"testing"

	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBack(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = b
	}
	return out
}

func TestBuild(t *testing.T) {
	entries := []Entry{
		{Name: "a.txt", Data: []byte("alpha")},
		{Name: "b.png", Data: []byte{0x89, 'P', 'N', 'G'}},
		{Name: "c.pdf", Data: []byte("%PDF-1.7")},
	}

	data, err := Build(entries)
	require.NoError(t, err)

	got := readBack(t, data)
	require.Len(t, got, 3)
	for _, e := range entries {
		assert.Equal(t, e.Data, got[e.Name])
	}
}

func TestBuild_PreservesOrder(t *testing.T) {
	data, err := Build([]Entry{{Name: "z"}, {Name: "a"}, {Name: "m"}})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func TestBuild_Deterministic(t *testing.T) {
	entries := []Entry{{Name: "a", Data: []byte("1")}, {Name: "b", Data: []byte("2")}}
	first, err := Build(entries)
	require.NoError(t, err)
	second, err := Build(entries)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_DuplicateNames(t *testing.T) {
	_, err := Build([]Entry{{Name: "a"}, {Name: "b"}, {Name: "a"}})
	require.Error(t, err)
	assert.True(t, customErrors.IsInvalidConfiguration(err))
	assert.Contains(t, err.Error(), `"a"`)
}

func TestCheckNames_Empty(t *testing.T) {
	index, err := CheckNames([]string{"a", ""})
	assert.True(t, customErrors.IsInvalidConfiguration(err))
	assert.Equal(t, 1, index)

	index, err = CheckNames(nil)
	assert.NoError(t, err)
	assert.Equal(t, -1, index)
}
