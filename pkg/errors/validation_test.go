package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "sink", false},
		{"valid with space", "tall cabinet", false},
		{"valid unicode", "Spüle", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 200), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("fixture", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("ValidateName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateNumbers(t *testing.T) {
	tests := []struct {
		name    string
		check   func() error
		wantErr bool
	}{
		{"positive ok", func() error { return ValidatePositive("width", 30) }, false},
		{"positive zero", func() error { return ValidatePositive("width", 0) }, true},
		{"positive nan", func() error { return ValidatePositive("width", math.NaN()) }, true},
		{"positive inf", func() error { return ValidatePositive("width", math.Inf(1)) }, true},
		{"non-negative zero", func() error { return ValidateNonNegative("offset", 0) }, false},
		{"non-negative negative", func() error { return ValidateNonNegative("offset", -1) }, true},
		{"range ok", func() error { return ValidateRange("width", 10, 100) }, false},
		{"range equal", func() error { return ValidateRange("width", 10, 10) }, false},
		{"range inverted", func() error { return ValidateRange("width", 60, 40) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check()
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "out/layout.json", false},
		{"valid absolute", "/tmp/layout.svg", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
