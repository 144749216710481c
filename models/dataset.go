package models

import "math"

// Dataset is an ordered sequence of rows sharing a fixed column schema.
// Cells are kept as raw text so passthrough columns round-trip unchanged.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Index returns the position of col in the header, or -1.
func (d *Dataset) Index(col string) int {
	for i, c := range d.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([][]string, len(d.Rows)),
	}
	for i, r := range d.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// Empty returns a dataset with the same schema and no rows.
func (d *Dataset) Empty() *Dataset {
	return &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    [][]string{},
	}
}

// Bounds is an inclusive numeric interval.
type Bounds struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in [Min, Max]. NaN is never contained.
func (b Bounds) Contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	return b.Min <= v && v <= b.Max
}
