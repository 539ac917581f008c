// Package aggregate groups accident records by category or calendar month.
//
// Every function is a pure, single-pass transform over an immutable slice.
package aggregate

import (
	"sort"
	"time"

	"github.com/iwvelando/safety-dashboard/internal/accidents"
	"github.com/iwvelando/safety-dashboard/pkg/datetime"
	"github.com/shopspring/decimal"
)

// Count is one bucket of an aggregation.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Options restrict a categorical aggregation.
type Options struct {
	// Limit keeps only the first Limit buckets when positive.
	Limit int
	// Allowed, when non-empty, is the whitelist of values that are counted.
	Allowed []string
}

// ByCategory counts the non-empty values of field and returns the buckets by
// descending count. Ties keep the order in which values were first seen.
func ByCategory(records []accidents.Record, field accidents.Field, opts Options) []Count {
	var allowed map[string]struct{}
	if len(opts.Allowed) > 0 {
		allowed = make(map[string]struct{}, len(opts.Allowed))
		for _, v := range opts.Allowed {
			allowed[v] = struct{}{}
		}
	}

	index := make(map[string]int)
	counts := make([]Count, 0)
	for _, r := range records {
		value := r.Category(field)
		if value == "" {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[value]; !ok {
				continue
			}
		}
		if i, ok := index[value]; ok {
			counts[i].Count++
			continue
		}
		index[value] = len(counts)
		counts = append(counts, Count{Label: value, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if opts.Limit > 0 && len(counts) > opts.Limit {
		counts = counts[:opts.Limit]
	}
	return counts
}

// ByMonth counts records per calendar month of their occurrence date, in
// chronological order. Records without a valid date are skipped.
func ByMonth(records []accidents.Record) []Count {
	buckets := make(map[time.Time]int)
	for _, r := range records {
		if !r.OccurredAt.Valid {
			continue
		}
		buckets[datetime.MonthStart(r.OccurredAt.Time)]++
	}

	months := make([]time.Time, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Before(months[j])
	})

	counts := make([]Count, 0, len(months))
	for _, m := range months {
		counts = append(counts, Count{Label: datetime.MonthLabel(m), Count: buckets[m]})
	}
	return counts
}

// Totals are the headline metrics of a dataset.
type Totals struct {
	Accidents  int
	DaysAbsent int64
	Liability  decimal.Decimal
}

// Summarize totals the records. DaysAbsent is the integer part of the sum.
func Summarize(records []accidents.Record) Totals {
	totals := Totals{Accidents: len(records), Liability: decimal.Zero}
	days := 0.0
	for _, r := range records {
		days += r.DaysAbsent
		totals.Liability = totals.Liability.Add(r.Liability)
	}
	totals.DaysAbsent = int64(days)
	return totals
}

// Values returns the counts of buckets, in order.
func Values(counts []Count) []int {
	values := make([]int, len(counts))
	for i, c := range counts {
		values[i] = c.Count
	}
	return values
}

// Labels returns the labels of buckets, in order.
func Labels(counts []Count) []string {
	labels := make([]string, len(counts))
	for i, c := range counts {
		labels[i] = c.Label
	}
	return labels
}
