// Package accidents defines the accident record model and loads records from
// CSV or XLSX spreadsheets.
package accidents

import (
	"strings"

	"github.com/iwvelando/safety-dashboard/pkg/constants"
	"github.com/iwvelando/safety-dashboard/pkg/normalize"
	"github.com/shopspring/decimal"
)

// Field is a logical column of the accident spreadsheet.
type Field string

// Logical fields known to the dashboard.
const (
	FieldOccurrenceDate Field = "occurrenceDate"
	FieldAccidentType   Field = "accidentType"
	FieldCausalLink     Field = "causalLink"
	FieldGender         Field = "gender"
	FieldShift          Field = "shift"
	FieldJobFunction    Field = "jobFunction"
	FieldDepartment     Field = "department"
	FieldLiability      Field = "liability"
	FieldDaysAbsent     Field = "daysAbsent"
	FieldIdentifier     Field = "identifier"
)

// Fields lists every logical field in display order.
var Fields = []Field{
	FieldOccurrenceDate,
	FieldAccidentType,
	FieldCausalLink,
	FieldGender,
	FieldShift,
	FieldJobFunction,
	FieldDepartment,
	FieldLiability,
	FieldDaysAbsent,
	FieldIdentifier,
}

// Columns maps logical fields to spreadsheet headers.
type Columns map[Field]string

// DefaultColumns returns the headers used by the accident spreadsheet.
func DefaultColumns() Columns {
	return Columns{
		FieldOccurrenceDate: constants.ColumnOccurrenceDate,
		FieldAccidentType:   constants.ColumnAccidentType,
		FieldCausalLink:     constants.ColumnCausalLink,
		FieldGender:         constants.ColumnGender,
		FieldShift:          constants.ColumnShift,
		FieldJobFunction:    constants.ColumnJobFunction,
		FieldDepartment:     constants.ColumnDepartment,
		FieldLiability:      constants.ColumnLiability,
		FieldDaysAbsent:     constants.ColumnDaysAbsent,
		FieldIdentifier:     constants.ColumnIdentifier,
	}
}

// Header returns the configured header of f, falling back to the default.
func (c Columns) Header(f Field) string {
	if h := strings.TrimSpace(c[f]); h != "" {
		return h
	}
	return DefaultColumns()[f]
}

// Record is one accident. Categorical fields are trimmed strings; an empty
// string means the value is absent.
type Record struct {
	OccurredAt   normalize.Date
	AccidentType string
	CausalLink   string
	Gender       string
	Shift        string
	JobFunction  string
	Department   string
	Liability    decimal.Decimal
	DaysAbsent   float64
	Identifier   string

	// Cells holds the raw values aligned with Dataset.Headers.
	Cells []string
}

// Category returns the value of a categorical field. Numeric and date fields
// return their canonical string form.
func (r Record) Category(f Field) string {
	switch f {
	case FieldAccidentType:
		return r.AccidentType
	case FieldCausalLink:
		return r.CausalLink
	case FieldGender:
		return r.Gender
	case FieldShift:
		return r.Shift
	case FieldJobFunction:
		return r.JobFunction
	case FieldDepartment:
		return r.Department
	case FieldIdentifier:
		return r.Identifier
	case FieldOccurrenceDate:
		return r.OccurredAt.String()
	case FieldLiability:
		return r.Liability.String()
	case FieldDaysAbsent:
		return decimal.NewFromFloat(r.DaysAbsent).String()
	}
	return ""
}

// Dataset is an immutable, normalized snapshot of the source file.
type Dataset struct {
	Source  string
	Columns Columns
	Headers []string
	Records []Record
	Issues  []normalize.Issue

	// columnIndex maps each present field to its header position.
	columnIndex map[Field]int
}

// Has reports whether the source file carries the column of f.
func (d *Dataset) Has(f Field) bool {
	if d == nil {
		return false
	}
	_, ok := d.columnIndex[f]
	return ok
}

// ColumnIndex returns the header position of f, or -1 when absent.
func (d *Dataset) ColumnIndex(f Field) int {
	if idx, ok := d.columnIndex[f]; ok {
		return idx
	}
	return -1
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
