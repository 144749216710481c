package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basic-cleaning/models"
)

func TestDecodeDataset(t *testing.T) {
	in := "\ufeffid,name,price,last_review\n" +
		"1,\"Loft, Brooklyn\",150,2019-05-21\n" +
		"2,\"Studio \"\"Cozy\"\"\",,\n"

	ds, err := DecodeDataset(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "price", "last_review"}, ds.Columns)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "Loft, Brooklyn", ds.Rows[0][1])
	assert.Equal(t, `Studio "Cozy"`, ds.Rows[1][1])
	assert.Equal(t, "", ds.Rows[1][2])
}

func TestDecodeDatasetErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty file", ""},
		{"ragged row", "id,price\n1,10,extra\n"},
		{"bare quote", "id,price\n1,\"10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataset(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestDecodeDatasetHeaderOnly(t *testing.T) {
	ds, err := DecodeDataset(strings.NewReader("id,price\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "price"}, ds.Columns)
	assert.Equal(t, 0, ds.Len())
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	ds := &models.Dataset{
		Columns: []string{"id", "name", "price"},
		Rows: [][]string{
			{"1", "Loft, Brooklyn", "150"},
			{"2", "line\nbreak", "80"},
		},
	}

	require.NoError(t, WriteDataset(path, ds))

	got, err := ReadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, ds, got)
}

func TestEncodeDatasetNoIndexColumn(t *testing.T) {
	var buf bytes.Buffer
	ds := &models.Dataset{Columns: []string{"price"}, Rows: [][]string{{"50"}}}
	require.NoError(t, EncodeDataset(&buf, ds))
	assert.Equal(t, "price\n50\n", buf.String())
}

func TestReadDatasetMissingFile(t *testing.T) {
	_, err := ReadDataset(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
