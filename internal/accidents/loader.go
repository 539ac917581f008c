package accidents

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/iwvelando/safety-dashboard/pkg/format"
	"github.com/iwvelando/safety-dashboard/pkg/normalize"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ErrSourceUnreadable is wrapped by every error that prevents a dataset from
// being built: a missing file, a malformed file or, in strict mode, malformed
// values.
var ErrSourceUnreadable = errors.New("source unreadable")

const utf8BOM = "\ufeff"

// Options control how a source is read and normalized.
type Options struct {
	Columns Columns
	Mode    string // constants.ModeLenient or constants.ModeStrict
	Sheet   string // XLSX worksheet, first sheet when empty
}

// Load reads the spreadsheet at path (CSV, or XLSX by extension) and returns
// the normalized dataset.
func Load(path string, opts Options) (*Dataset, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path, opts.Sheet, opts.Columns)
	default:
		rows, err = readCSVFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, filepath.Base(path), err)
	}
	return Build(path, rows, opts)
}

// Parse reads CSV content from r and returns the normalized dataset.
func Parse(source string, r io.Reader, opts Options) (*Dataset, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, source, err)
	}
	return Build(source, rows, opts)
}

// Build normalizes rows whose first entry is the header row.
func Build(source string, rows [][]string, opts Options) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: no header row", ErrSourceUnreadable, source)
	}

	columns := opts.Columns
	if columns == nil {
		columns = DefaultColumns()
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = cleanHeader(h)
	}

	ds := &Dataset{
		Source:      source,
		Columns:     columns,
		Headers:     headers,
		columnIndex: make(map[Field]int),
	}
	for _, f := range Fields {
		want := columns.Header(f)
		for i, h := range headers {
			if strings.EqualFold(h, want) {
				ds.columnIndex[f] = i
				break
			}
		}
	}

	n := normalize.New(opts.Mode)
	row := 0
	for _, cells := range rows[1:] {
		if blankRow(cells) {
			continue
		}
		row++
		ds.Records = append(ds.Records, ds.buildRecord(n, columns, row, cells))
	}
	ds.Issues = n.Issues()

	if err := n.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %d malformed values: %w", ErrSourceUnreadable, source, len(ds.Issues), err)
	}
	return ds, nil
}

func (d *Dataset) buildRecord(n *normalize.Normalizer, columns Columns, row int, cells []string) Record {
	aligned := make([]string, len(d.Headers))
	copy(aligned, cells)

	cell := func(f Field) string {
		if idx, ok := d.columnIndex[f]; ok {
			return aligned[idx]
		}
		return ""
	}
	text := func(f Field) string {
		v := strings.TrimSpace(cell(f))
		if strings.EqualFold(v, "nan") {
			return ""
		}
		return v
	}

	return Record{
		OccurredAt:   n.Date(row, columns.Header(FieldOccurrenceDate), cell(FieldOccurrenceDate)),
		AccidentType: text(FieldAccidentType),
		CausalLink:   text(FieldCausalLink),
		Gender:       text(FieldGender),
		Shift:        text(FieldShift),
		JobFunction:  text(FieldJobFunction),
		Department:   text(FieldDepartment),
		Liability:    n.Currency(row, columns.Header(FieldLiability), cell(FieldLiability)),
		DaysAbsent:   n.Count(row, columns.Header(FieldDaysAbsent), cell(FieldDaysAbsent)),
		Identifier:   text(FieldIdentifier),
		Cells:        aligned,
	}
}

func readCSVFile(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()
	return readCSV(file)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed CSV: %w", err)
	}
	return rows, nil
}

// readXLSX returns the raw cell values of a worksheet. Numeric cells of the
// date and liability columns are rewritten into the textual forms the
// normalizer expects.
func readXLSX(path, sheet string, columns Columns) ([][]string, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	if sheet == "" {
		sheet = file.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}

	rows, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	dateIdx, liabilityIdx := -1, -1
	for i, h := range rows[0] {
		switch {
		case strings.EqualFold(cleanHeader(h), columns.Header(FieldOccurrenceDate)):
			dateIdx = i
		case strings.EqualFold(cleanHeader(h), columns.Header(FieldLiability)):
			liabilityIdx = i
		}
	}
	for _, cells := range rows[1:] {
		if dateIdx >= 0 && dateIdx < len(cells) {
			cells[dateIdx] = excelDate(cells[dateIdx])
		}
		if liabilityIdx >= 0 && liabilityIdx < len(cells) {
			cells[liabilityIdx] = excelAmount(cells[liabilityIdx])
		}
	}
	return rows, nil
}

func excelDate(raw string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format("02/01/2006")
}

// Text cells such as "1.234" use periods as thousands separators and are left
// for the normalizer.
var groupedThousands = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// maxAmountExponent bounds the scientific notation accepted from numeric
// cells; larger exponents are left for the normalizer to reject.
const maxAmountExponent = 18

func excelAmount(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if groupedThousands.MatchString(trimmed) {
		return raw
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil || d.Exponent() < -maxAmountExponent || d.Exponent() > maxAmountExponent {
		return raw
	}
	return format.NumericCurrency(d)
}

func cleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
}

// blankRow reports whether a row carries no fields at all. Rows made only of
// delimiters are kept as records whose values are all absent.
func blankRow(cells []string) bool {
	switch len(cells) {
	case 0:
		return true
	case 1:
		return strings.TrimSpace(cells[0]) == ""
	}
	return false
}
