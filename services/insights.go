package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/series"

	"basic-cleaning/models"
	"basic-cleaning/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate fills the price statistics of report from the cleaned dataset.
func (s *InsightService) Generate(ds *models.Dataset, report *models.CleaningReport) *models.CleaningReport {
	if report == nil {
		report = &models.CleaningReport{RowsIn: ds.Len(), RowsOut: ds.Len()}
	}

	idx := ds.Index(ColumnPrice)
	if idx < 0 || ds.Len() == 0 {
		return report
	}

	prices := make([]float64, 0, ds.Len())
	for _, row := range ds.Rows {
		if v, ok := parseNumber(cell(row, idx)); ok {
			prices = append(prices, v)
		}
	}
	if len(prices) == 0 {
		return report
	}

	col := series.New(prices, series.Float, ColumnPrice)
	report.PriceCount = col.Len()
	report.PriceMean = round2(col.Mean())
	report.PriceMin = round2(col.Min())
	report.PriceMax = round2(col.Max())
	report.PriceMedian = round2(median(prices))

	s.logger.Debug("[insights] price stats over %d rows: mean %.2f, median %.2f",
		report.PriceCount, report.PriceMean, report.PriceMedian)
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.CleaningReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🧹 BASIC CLEANING REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Rows\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Read                   : \033[1m%d\033[0m\n", r.RowsIn)
	fmt.Fprintf(w, "  Kept                   : \033[1m%d\033[0m\n", r.RowsOut)
	fmt.Fprintf(w, "  Dropped, no price      : %d\n", r.DroppedMissing)
	fmt.Fprintf(w, "  Dropped, out of bounds : %d\n", r.DroppedOutOfBounds)
	if r.DroppedGeo > 0 {
		fmt.Fprintf(w, "  Dropped, geo filter    : %d\n", r.DroppedGeo)
	}
	fmt.Fprintf(w, "  Nulled last_review     : %d\n", r.InvalidLastReview)
	fmt.Fprintln(w)

	// Price Stats
	fmt.Fprintf(w, "\033[1;33m  Price Statistics (per night)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PriceCount > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m$%.2f\033[0m\n", r.PriceMean)
		fmt.Fprintf(w, "  Median price  : \033[1;32m$%.2f\033[0m\n", r.PriceMedian)
		fmt.Fprintf(w, "  Minimum price : \033[1;32m$%.2f\033[0m\n", r.PriceMin)
		fmt.Fprintf(w, "  Maximum price : \033[1;32m$%.2f\033[0m\n", r.PriceMax)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}

	if r.Output != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "\033[1;33m  Output Artifact\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s (%s)\n", r.Output.Ref(), r.Output.Type)
		fmt.Fprintf(w, "  %s\n", truncate(r.Output.Description, 50))
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// median averages the two middle values when the count is even.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
