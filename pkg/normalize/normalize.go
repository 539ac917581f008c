// Package normalize converts locale-formatted spreadsheet values into canonical
// numeric and temporal values.
//
// Monetary amounts are written the Brazilian way ("R$ 1.234,56"): periods group
// thousands and the comma marks the decimals. Parsing never halts a load:
// a Normalizer substitutes a default for every malformed value and records an
// Issue, and in strict mode the collected issues are reported as one error.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/safety-dashboard/pkg/constants"
	"github.com/iwvelando/safety-dashboard/pkg/datetime"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// ErrInvalidValue is wrapped by every parse failure.
var ErrInvalidValue = errors.New("invalid value")

// Date is an occurrence date that may be missing. Valid is false when the
// source value was empty or could not be parsed.
type Date struct {
	Time  time.Time
	Valid bool
}

// Missing is the marker for an unparseable or absent date.
var Missing = Date{}

// String returns the canonical date or an empty string when missing.
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(constants.DateLayout)
}

// plainNumber is the only accepted numeric notation once separators have been
// swapped. Exponents, hex and inf/nan spellings are rejected.
var plainNumber = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ParseCurrency converts an amount such as "R$ 1.234,56" into a decimal.
// The currency prefix and every period are dropped and the comma becomes the
// decimal point.
func ParseCurrency(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(raw, constants.CurrencyPrefix, "")
	cleaned = strings.ReplaceAll(cleaned, constants.ThousandsSeparator, "")
	cleaned = strings.ReplaceAll(cleaned, constants.DecimalSeparator, ".")
	cleaned = strings.Join(strings.Fields(cleaned), "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidValue)
	}
	if !plainNumber.MatchString(cleaned) {
		return decimal.Zero, fmt.Errorf("%w: amount %q", ErrInvalidValue, raw)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", ErrInvalidValue, raw)
	}
	return d, nil
}

// ParseCount converts a day count. Counts use standard numeric notation.
func ParseCount(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty count", ErrInvalidValue)
	}
	if !plainNumber.MatchString(trimmed) {
		return 0, fmt.Errorf("%w: count %q", ErrInvalidValue, raw)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: count %q", ErrInvalidValue, raw)
	}
	return v, nil
}

// ParseDate converts a day-first date such as "05/01/2024".
func ParseDate(raw string) (Date, error) {
	t, err := datetime.ParseDayFirst(raw)
	if err != nil {
		return Missing, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return Date{Time: t, Valid: true}, nil
}

// Issue describes one value that was replaced by its default.
type Issue struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
	Err    error
}

func (i Issue) Error() string {
	return fmt.Sprintf("row %d, column %q: %v", i.Row, i.Column, i.Err)
}

func (i Issue) Unwrap() error {
	return i.Err
}

// Normalizer applies the substitution policy and remembers what it substituted.
type Normalizer struct {
	mode   string
	issues []Issue
}

// New returns a Normalizer for the given mode. Unknown modes behave leniently.
func New(mode string) *Normalizer {
	if mode != constants.ModeStrict {
		mode = constants.ModeLenient
	}
	return &Normalizer{mode: mode}
}

// Mode reports the effective mode.
func (n *Normalizer) Mode() string {
	return n.mode
}

// Currency parses an amount; empty cells and malformed values yield zero.
func (n *Normalizer) Currency(row int, column, raw string) decimal.Decimal {
	if isBlank(raw) {
		return decimal.Zero
	}
	d, err := ParseCurrency(raw)
	if err != nil {
		n.record(row, column, raw, err)
		return decimal.Zero
	}
	return d
}

// Count parses a day count; empty cells and malformed values yield zero.
func (n *Normalizer) Count(row int, column, raw string) float64 {
	if isBlank(raw) {
		return 0
	}
	v, err := ParseCount(raw)
	if err != nil {
		n.record(row, column, raw, err)
		return 0
	}
	return v
}

// Date parses an occurrence date; empty cells and malformed values yield Missing.
func (n *Normalizer) Date(row int, column, raw string) Date {
	if isBlank(raw) {
		return Missing
	}
	d, err := ParseDate(raw)
	if err != nil {
		n.record(row, column, raw, err)
		return Missing
	}
	return d
}

// Issues returns every substitution made so far.
func (n *Normalizer) Issues() []Issue {
	return append([]Issue(nil), n.issues...)
}

// Err returns nil in lenient mode. In strict mode it combines every issue.
func (n *Normalizer) Err() error {
	if n.mode != constants.ModeStrict {
		return nil
	}
	var err error
	for _, issue := range n.issues {
		err = multierr.Append(err, issue)
	}
	return err
}

func (n *Normalizer) record(row int, column, raw string, err error) {
	n.issues = append(n.issues, Issue{Row: row, Column: column, Value: raw, Err: err})
}

// pandas-style exports write missing cells as "nan".
func isBlank(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || strings.EqualFold(trimmed, "nan")
}
