// Package config defines the configuration of safety-dashboard and loads it
// from an optional YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/safety-dashboard/internal/accidents"
	"github.com/iwvelando/safety-dashboard/pkg/constants"
	"github.com/iwvelando/safety-dashboard/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Configuration holds all configuration for safety-dashboard.
type Configuration struct {
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	Columns ColumnsConfig `mapstructure:"columns"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout     time.Duration `mapstructure:"idleTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// DataConfig describes the accident spreadsheet and how it is normalized.
type DataConfig struct {
	Path         string `mapstructure:"path"`
	Sheet        string `mapstructure:"sheet"`        // XLSX worksheet, first sheet when empty
	Mode         string `mapstructure:"mode"`         // lenient, strict
	Invalidation string `mapstructure:"invalidation"` // mtime, hash
	TopK         int    `mapstructure:"topK"`
}

// ColumnsConfig maps logical fields to spreadsheet headers.
type ColumnsConfig struct {
	OccurrenceDate string `mapstructure:"occurrenceDate"`
	AccidentType   string `mapstructure:"accidentType"`
	CausalLink     string `mapstructure:"causalLink"`
	Gender         string `mapstructure:"gender"`
	Shift          string `mapstructure:"shift"`
	JobFunction    string `mapstructure:"jobFunction"`
	Department     string `mapstructure:"department"`
	Liability      string `mapstructure:"liability"`
	DaysAbsent     string `mapstructure:"daysAbsent"`
	Identifier     string `mapstructure:"identifier"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level"`      // debug, info, warn, error
	Format     string `mapstructure:"format"`     // json, console
	OutputFile string `mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds the summary output options
type OutputConfig struct {
	Format string `mapstructure:"format"` // pretty, csv
}

// AsColumns converts the header mapping for the loader.
func (c ColumnsConfig) AsColumns() accidents.Columns {
	return accidents.Columns{
		accidents.FieldOccurrenceDate: c.OccurrenceDate,
		accidents.FieldAccidentType:   c.AccidentType,
		accidents.FieldCausalLink:     c.CausalLink,
		accidents.FieldGender:         c.Gender,
		accidents.FieldShift:          c.Shift,
		accidents.FieldJobFunction:    c.JobFunction,
		accidents.FieldDepartment:     c.Department,
		accidents.FieldLiability:      c.Liability,
		accidents.FieldDaysAbsent:     c.DaysAbsent,
		accidents.FieldIdentifier:     c.Identifier,
	}
}

// LoaderOptions returns the options used to load the configured spreadsheet.
func (c *Configuration) LoaderOptions() accidents.Options {
	return accidents.Options{
		Columns: c.Columns.AsColumns(),
		Mode:    c.Data.Mode,
		Sheet:   c.Data.Sheet,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.readTimeout", constants.DefaultReadTimeoutSeconds*time.Second)
	v.SetDefault("server.writeTimeout", constants.DefaultWriteTimeoutSeconds*time.Second)
	v.SetDefault("server.idleTimeout", constants.DefaultIdleTimeoutSeconds*time.Second)
	v.SetDefault("server.shutdownTimeout", constants.DefaultShutdownTimeoutSeconds*time.Second)

	v.SetDefault("data.path", constants.DefaultDataFile)
	v.SetDefault("data.sheet", "")
	v.SetDefault("data.mode", constants.ModeLenient)
	v.SetDefault("data.invalidation", constants.InvalidationModTime)
	v.SetDefault("data.topK", constants.DefaultTopK)

	for field, header := range accidents.DefaultColumns() {
		v.SetDefault("columns."+string(field), header)
	}

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")

	v.SetDefault("output.format", constants.OutputFormatPretty)
}

// LoadEnvFiles loads KEY=value pairs from the given .env files into the
// process environment. Missing files are skipped and variables that are
// already set win.
func LoadEnvFiles(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error reading env file %s: %w", file, err)
		}
	}
	return nil
}

// LoadConfiguration loads the YAML-formatted configuration at configPath.
// A missing file yields the defaults. Environment variables prefixed with
// SAFETY_DASHBOARD_ override both, e.g. SAFETY_DASHBOARD_DATA_PATH.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.normalize()

	return &configuration, nil
}

func (c *Configuration) normalize() {
	c.Server.Address = strings.TrimSpace(c.Server.Address)
	c.Data.Path = strings.TrimSpace(c.Data.Path)
	c.Data.Mode = strings.ToLower(strings.TrimSpace(c.Data.Mode))
	c.Data.Invalidation = strings.ToLower(strings.TrimSpace(c.Data.Invalidation))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
}

// Validate checks the configuration and returns every problem found.
func (c *Configuration) Validate() error {
	var err error

	if c.Server.Address == "" {
		err = multierr.Append(err, errors.New("server address cannot be empty"))
	}
	if c.Data.Path == "" {
		err = multierr.Append(err, errors.New("data path cannot be empty"))
	}
	if c.Data.TopK < 0 {
		err = multierr.Append(err, fmt.Errorf("invalid topK %d: must not be negative", c.Data.TopK))
	}
	err = multierr.Append(err, validation.ValidateMode(c.Data.Mode))
	err = multierr.Append(err, validation.ValidateInvalidation(c.Data.Invalidation))
	err = multierr.Append(err, validation.ValidateOutputFormat(c.Output.Format))
	if c.Logging.Level != "" {
		err = multierr.Append(err, validation.ValidateLogLevel(c.Logging.Level))
	}
	if c.Logging.Format != "" {
		err = multierr.Append(err, validation.ValidateLogFormat(c.Logging.Format))
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"readTimeout", c.Server.ReadTimeout},
		{"writeTimeout", c.Server.WriteTimeout},
		{"idleTimeout", c.Server.IdleTimeout},
		{"shutdownTimeout", c.Server.ShutdownTimeout},
	} {
		if d.value <= 0 {
			err = multierr.Append(err, fmt.Errorf("invalid server %s %v: must be positive", d.name, d.value))
		}
	}

	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// Warnings returns non-fatal remarks about the configuration.
func (c *Configuration) Warnings() []string {
	var warnings []string
	if _, err := os.Stat(c.Data.Path); err != nil {
		warnings = append(warnings, fmt.Sprintf("data file %s is not accessible yet: %v", c.Data.Path, err))
	}
	if c.Data.TopK == 0 {
		warnings = append(warnings, fmt.Sprintf("topK is 0, using default of %d", constants.DefaultTopK))
	}
	return warnings
}
