// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/safety-dashboard/pkg/constants"
)

const (
	// MonthLayout is the label format of monthly buckets.
	MonthLayout = constants.MonthLayout
)

// DayFirstLayouts are tried in order when parsing occurrence dates. Brazilian
// spreadsheets write the day before the month; ISO layouts are accepted too
// because exports from other tools use them.
var DayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"2/1/06",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDayFirst parses value with the first matching layout of DayFirstLayouts.
func ParseDayFirst(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range DayFirstLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// MonthStart truncates t to midnight of the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthLabel returns the bucket label of the month containing t.
func MonthLabel(t time.Time) string {
	return t.Format(MonthLayout)
}
