package validation

import "testing"

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validate  func(string) error
		value     string
		expectErr bool
	}{
		{"Output pretty", ValidateOutputFormat, "pretty", false},
		{"Output csv", ValidateOutputFormat, "csv", false},
		{"Output json unsupported", ValidateOutputFormat, "json", true},
		{"Output case sensitive", ValidateOutputFormat, "PRETTY", true},
		{"Output empty", ValidateOutputFormat, "", true},

		{"Mode lenient", ValidateMode, "lenient", false},
		{"Mode strict", ValidateMode, "strict", false},
		{"Mode unknown", ValidateMode, "paranoid", true},
		{"Mode empty", ValidateMode, "", true},

		{"Invalidation mtime", ValidateInvalidation, "mtime", false},
		{"Invalidation hash", ValidateInvalidation, "hash", false},
		{"Invalidation never", ValidateInvalidation, "never", true},

		{"Level debug", ValidateLogLevel, "debug", false},
		{"Level warning alias", ValidateLogLevel, "warning", false},
		{"Level trace", ValidateLogLevel, "trace", true},

		{"Log json", ValidateLogFormat, "json", false},
		{"Log console", ValidateLogFormat, "console", false},
		{"Log text", ValidateLogFormat, "text", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.value)
			if tt.expectErr && err == nil {
				t.Errorf("expected error for %q but got none", tt.value)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tt.value, err)
			}
		})
	}
}

func TestValidateOutputFormatErrorMessage(t *testing.T) {
	err := ValidateOutputFormat("xml")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "expected output format of pretty or csv, got xml" {
		t.Errorf("unexpected message %q", got)
	}
}
