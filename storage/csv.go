package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"basic-cleaning/models"
)

// ReadDataset loads a delimited file with a header row. Rows must all have
// the header's width.
func ReadDataset(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	ds, err := DecodeDataset(f)
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	return ds, nil
}

// DecodeDataset parses CSV from r.
func DecodeDataset(r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty input: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	// a UTF-8 BOM would otherwise end up glued to the first column name
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	ds := &models.Dataset{Columns: header, Rows: [][]string{}}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(ds.Rows)+1, err)
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// WriteDataset writes header and rows to path, without a row-index column.
// Intermediate directories are created automatically.
func WriteDataset(path string, ds *models.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}

	if err := EncodeDataset(f, ds); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write %q: %w", path, err)
	}
	return f.Close()
}

// EncodeDataset writes ds as CSV to w.
func EncodeDataset(w io.Writer, ds *models.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	for i, row := range ds.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
