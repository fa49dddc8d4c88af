/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package report renders risk results for export.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/humaidq/smartcvd/risk"
)

// Metric labels used in exports, in row order.
const (
	MetricFiveYear = "5yr"
	MetricTenYear  = "10yr"
	MetricLifetime = "LT"
)

// Row is one metric of a result.
type Row struct {
	Metric string
	Value  float64
}

// Rows returns the result as export rows.
func Rows(r risk.Result) []Row {
	return []Row{
		{Metric: MetricFiveYear, Value: r.FiveYear},
		{Metric: MetricTenYear, Value: r.TenYear},
		{Metric: MetricLifetime, Value: r.Lifetime},
	}
}

// FormatPercent renders a percentage with exactly one decimal digit.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// WriteCSV writes the two-column metric,value table.
func WriteCSV(w io.Writer, r risk.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"metric", "value"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range Rows(r) {
		if err := cw.Write([]string{row.Metric, FormatPercent(row.Value)}); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", row.Metric, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}

// Summary returns the one-line summary shown after an estimate.
func Summary(r risk.Result) string {
	return fmt.Sprintf("5yr: %s%%, 10yr: %s%%, LT: %s%%",
		FormatPercent(r.FiveYear), FormatPercent(r.TenYear), FormatPercent(r.Lifetime))
}

// WriteText writes Summary followed by a newline.
func WriteText(w io.Writer, r risk.Result) error {
	if _, err := fmt.Fprintln(w, Summary(r)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	return nil
}
