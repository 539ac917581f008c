// Package output provides utilities for writing dashboard results to a
// terminal or a file.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/iwvelando/safety-dashboard/internal/accidents"
	"github.com/iwvelando/safety-dashboard/internal/dashboard"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const metricWidth = 20

// PrettySummary writes a human-readable rather than machine-readable summary
// of the accident statistics page.
func PrettySummary(w io.Writer, page dashboard.Page) error {
	p := message.NewPrinter(language.BrazilianPortuguese)

	if _, err := p.Fprintf(w, "--- %s ---\n", page.Title); err != nil {
		return err
	}
	if page.Source != "" {
		_, _ = p.Fprintf(w, "Fonte: %s\n", page.Source)
	}
	for _, m := range page.Metrics {
		_, _ = p.Fprintf(w, "%s | %s\n", padRight(m.Label, metricWidth), m.Value)
	}

	for _, section := range page.Sections {
		_, _ = p.Fprintf(w, "\n[%s]\n", section.Title)
		for _, chart := range section.Charts {
			_, _ = p.Fprintf(w, "%s\n", chart.Title)
			width := labelWidth(chart.Labels)
			for i, label := range chart.Labels {
				_, _ = p.Fprintf(w, "  %s | %d\n", padRight(label, width), chart.Values[i])
			}
		}
	}

	if len(page.Warnings) > 0 {
		_, _ = p.Fprintf(w, "\nAvisos:\n")
		for _, warning := range page.Warnings {
			_, _ = p.Fprintf(w, "  - %s\n", warning)
		}
	}
	return nil
}

// WriteCSV writes the normalized records as comma-separated values. Dates use
// the ISO layout, liability is a plain two-decimal amount and missing dates
// are empty.
func WriteCSV(w io.Writer, ds *accidents.Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ds.Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	dateIdx := ds.ColumnIndex(accidents.FieldOccurrenceDate)
	liabilityIdx := ds.ColumnIndex(accidents.FieldLiability)
	daysIdx := ds.ColumnIndex(accidents.FieldDaysAbsent)

	for i, r := range ds.Records {
		row := append([]string(nil), r.Cells...)
		if dateIdx >= 0 {
			row[dateIdx] = r.OccurredAt.String()
		}
		if liabilityIdx >= 0 {
			row[liabilityIdx] = r.Liability.StringFixed(2)
		}
		if daysIdx >= 0 {
			row[daysIdx] = r.Category(accidents.FieldDaysAbsent)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func labelWidth(labels []string) int {
	width := 0
	for _, label := range labels {
		if n := utf8.RuneCountInString(label); n > width {
			width = n
		}
	}
	return width
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
