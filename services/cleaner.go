package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"

	"basic-cleaning/models"
	"basic-cleaning/utils"
)

const (
	ColumnPrice      = "price"
	ColumnLastReview = "last_review"
	ColumnLongitude  = "longitude"
	ColumnLatitude   = "latitude"

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// ErrMissingColumn is returned when a column a filter stage needs is absent.
var ErrMissingColumn = errors.New("missing required column")

// naValues are the cell values treated as missing, on top of the empty string.
var naValues = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "#N/A": {}, "<NA>": {},
	"NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {},
}

// numberRegexp is the plain decimal/exponent grammar a price cell must match
// before it is handed to cast. Digit separators (1,200 or 1_000) are rejected.
var numberRegexp = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// extraDateLayouts are tried before cast's own layouts.
var extraDateLayouts = []string{
	"2006",
	"Jan 2006",
	"January 2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006/01/02",
	"2006/1/2",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// GeoBounds is the optional second range-filter stage over coordinates.
type GeoBounds struct {
	Longitude models.Bounds
	Latitude  models.Bounds
}

// NYCBounds roughly boxes New York City.
var NYCBounds = GeoBounds{
	Longitude: models.Bounds{Min: -74.25, Max: -73.50},
	Latitude:  models.Bounds{Min: 40.5, Max: 41.2},
}

// Cleaner filters a dataset by price and normalizes its review dates.
type Cleaner struct {
	logger *utils.Logger
	geo    *GeoBounds
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// WithGeoFilter enables the coordinate stage.
func (c *Cleaner) WithGeoFilter(g GeoBounds) *Cleaner {
	c.geo = &g
	return c
}

// Clean returns a new dataset holding the rows of ds whose price lies in
// bounds, with last_review normalized. ds is not modified.
func (c *Cleaner) Clean(ds *models.Dataset, bounds models.Bounds) (*models.Dataset, error) {
	out, _, err := c.CleanWithReport(ds, bounds)
	return out, err
}

// CleanWithReport is Clean plus the per-reason drop counters.
func (c *Cleaner) CleanWithReport(ds *models.Dataset, bounds models.Bounds) (*models.Dataset, *models.CleaningReport, error) {
	priceIdx := ds.Index(ColumnPrice)
	if priceIdx < 0 {
		return nil, nil, fmt.Errorf("cleaner: %w: %q", ErrMissingColumn, ColumnPrice)
	}

	lonIdx, latIdx := -1, -1
	if c.geo != nil {
		lonIdx, latIdx = ds.Index(ColumnLongitude), ds.Index(ColumnLatitude)
		if lonIdx < 0 || latIdx < 0 {
			return nil, nil, fmt.Errorf("cleaner: geo filter: %w: %q/%q",
				ErrMissingColumn, ColumnLongitude, ColumnLatitude)
		}
	}

	report := &models.CleaningReport{RowsIn: ds.Len()}
	out := ds.Empty()

	for _, row := range ds.Rows {
		price, ok := parseNumber(cell(row, priceIdx))
		if !ok {
			report.DroppedMissing++
			continue
		}
		if !bounds.Contains(price) {
			report.DroppedOutOfBounds++
			continue
		}
		if c.geo != nil && !c.geo.contains(row, lonIdx, latIdx) {
			report.DroppedGeo++
			continue
		}
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}

	if idx := out.Index(ColumnLastReview); idx >= 0 {
		report.InvalidLastReview = c.normalizeDates(out.Rows, idx)
	}

	report.RowsOut = out.Len()
	c.logger.Info("[cleaner] Cleaned %d → %d rows (missing price %d, out of bounds %d, geo %d)",
		report.RowsIn, report.RowsOut, report.DroppedMissing, report.DroppedOutOfBounds, report.DroppedGeo)
	if report.InvalidLastReview > 0 {
		c.logger.Warn("[cleaner] %d %s values could not be parsed and were nulled",
			report.InvalidLastReview, ColumnLastReview)
	}
	return out, report, nil
}

// normalizeDates rewrites column idx in place and returns how many non-missing
// values failed to parse. The whole column gets the date-only layout unless
// some value carries a time of day.
func (c *Cleaner) normalizeDates(rows [][]string, idx int) int {
	parsed := make([]*time.Time, len(rows))
	invalid := 0
	dateOnly := true

	for i, row := range rows {
		raw := cell(row, idx)
		if isMissing(raw) {
			continue
		}
		t, ok := parseDate(raw)
		if !ok {
			c.logger.Debug("[cleaner] Unparseable %s %q nulled", ColumnLastReview, raw)
			invalid++
			continue
		}
		parsed[i] = &t
		if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
			dateOnly = false
		}
	}

	layout := dateLayout
	if !dateOnly {
		layout = dateTimeLayout
	}
	for i, row := range rows {
		if idx >= len(row) {
			continue
		}
		if parsed[i] == nil {
			row[idx] = ""
			continue
		}
		row[idx] = parsed[i].Format(layout)
	}
	return invalid
}

func (g *GeoBounds) contains(row []string, lonIdx, latIdx int) bool {
	lon, ok := parseNumber(cell(row, lonIdx))
	if !ok {
		return false
	}
	lat, ok := parseNumber(cell(row, latIdx))
	if !ok {
		return false
	}
	return g.Longitude.Contains(lon) && g.Latitude.Contains(lat)
}

// parseNumber reports false for missing and non-numeric cells.
func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if isMissing(raw) {
		return 0, false
	}
	if !numberRegexp.MatchString(raw) {
		return 0, false
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range extraDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	if t, err := cast.ToTimeE(raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func isMissing(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	_, ok := naValues[raw]
	return ok
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
