package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsContains(t *testing.T) {
	b := Bounds{Min: 20, Max: 200}
	tests := []struct {
		v    float64
		want bool
	}{
		{20, true},
		{200, true},
		{50, true},
		{19.999, false},
		{200.001, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}
	for _, tt := range tests {
		if got := b.Contains(tt.v); got != tt.want {
			t.Errorf("Contains(%v) = %v; want %v", tt.v, got, tt.want)
		}
	}
	assert.False(t, Bounds{Min: 10, Max: 5}.Contains(7))
}

func TestDatasetCloneIsDeep(t *testing.T) {
	ds := &Dataset{Columns: []string{"id", "price"}, Rows: [][]string{{"1", "10"}}}
	cp := ds.Clone()
	cp.Rows[0][1] = "99"
	cp.Columns[0] = "x"

	assert.Equal(t, "10", ds.Rows[0][1])
	assert.Equal(t, "id", ds.Columns[0])
	assert.Equal(t, 1, ds.Index("price"))
	assert.Equal(t, -1, ds.Index("missing"))

	empty := ds.Empty()
	assert.Equal(t, ds.Columns, empty.Columns)
	assert.Equal(t, 0, empty.Len())
}

func TestParseArtifactRef(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		alias   string
		version int
		wantErr bool
	}{
		{"sample.csv:latest", "sample.csv", "latest", -1, false},
		{"sample.csv", "sample.csv", "latest", -1, false},
		{"sample.csv:", "sample.csv", "latest", -1, false},
		{"sample.csv:v3", "sample.csv", "v3", 3, false},
		{"team/sample.csv:v0", "team/sample.csv", "v0", 0, false},
		{"", "", "", 0, true},
		{":v1", "", "", 0, true},
		{"sample.csv:prod", "", "", 0, true},
		{"sample.csv:v-1", "", "", 0, true},
	}
	for _, tt := range tests {
		ref, err := ParseArtifactRef(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.name, ref.Name, tt.in)
		assert.Equal(t, tt.alias, ref.Alias, tt.in)
		assert.Equal(t, tt.version, ref.Version(), tt.in)
	}
}
