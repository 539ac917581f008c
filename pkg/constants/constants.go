// Package constants provides shared constants for the safety-dashboard application.
package constants

// MonthLayout is the label format of monthly buckets (four-digit year, hyphen,
// two-digit month).
const MonthLayout = "2006-01"

// DateLayout is the canonical output format for occurrence dates.
const DateLayout = "2006-01-02"

// Currency constants
const (
	// CurrencyPrefix is the symbol that precedes monetary amounts
	CurrencyPrefix = "R$"

	// ThousandsSeparator groups integer digits in monetary amounts
	ThousandsSeparator = "."

	// DecimalSeparator separates the cents from the integer part
	DecimalSeparator = ","

	// ZeroCurrency is rendered for zero or negative amounts
	ZeroCurrency = "R$ 0,00"

	// CurrencyDecimals is the number of decimal digits of a formatted amount
	CurrencyDecimals = 2
)

// Default column headers of the accident spreadsheet.
const (
	ColumnOccurrenceDate = "DIA DA OCORRÊNCIA"
	ColumnAccidentType   = "TIPO DE ACIDENTE"
	ColumnCausalLink     = "NEXO CAUSAL"
	ColumnGender         = "GÊNERO"
	ColumnShift          = "TURNO"
	ColumnJobFunction    = "FUNÇÃO"
	ColumnDepartment     = "SECRETARIA"
	ColumnLiability      = "ÔNUS"
	ColumnDaysAbsent     = "DIAS AFASTAMENTO"
	ColumnIdentifier     = "NAT"
)

// ValidShifts lists the shift values that are charted.
var ValidShifts = []string{"Matutino", "Vespertino", "Noturno"}

// Aggregation defaults
const (
	// DefaultTopK is the number of entries kept by ranked category charts
	DefaultTopK = 10
)

// Normalization modes
const (
	// ModeLenient substitutes defaults for malformed values and keeps going
	ModeLenient = "lenient"

	// ModeStrict substitutes defaults but fails the load when any value was malformed
	ModeStrict = "strict"
)

// Cache invalidation strategies
const (
	// InvalidationModTime reloads when the file size or modification time changes
	InvalidationModTime = "mtime"

	// InvalidationHash reloads when the SHA-256 of the file content changes
	InvalidationHash = "hash"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable summary format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the normalized CSV export format
	OutputFormatCSV = "csv"
)

// Log format constants
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultDataFile is the default accident spreadsheet
	DefaultDataFile = "acidentes.csv"

	// EnvPrefix prefixes environment variable overrides
	EnvPrefix = "SAFETY_DASHBOARD"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultReadTimeoutSeconds bounds reading a request
	DefaultReadTimeoutSeconds = 10

	// DefaultWriteTimeoutSeconds bounds writing a response
	DefaultWriteTimeoutSeconds = 30

	// DefaultIdleTimeoutSeconds bounds keep-alive connections
	DefaultIdleTimeoutSeconds = 60

	// DefaultShutdownTimeoutSeconds bounds graceful shutdown
	DefaultShutdownTimeoutSeconds = 15
)
