package analyses

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateResumeText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		valid  bool
		reason string
	}{
		{"empty", "", false, ReasonResumeRequired},
		{"whitespace only", " \n\t ", false, ReasonResumeRequired},
		{"too short", "Jane Doe, engineer", false, ReasonResumeTooShort},
		{"49 chars padded", "  " + strings.Repeat("a", 49) + "\n", false, ReasonResumeTooShort},
		{"exactly 50", strings.Repeat("a", 50), true, ""},
		{"multibyte counts runes", strings.Repeat("é", 50), true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateResumeText(tt.text)
			if got.Valid != tt.valid {
				t.Fatalf("valid = %v, want %v", got.Valid, tt.valid)
			}
			if got.Reason != tt.reason {
				t.Fatalf("reason = %q, want %q", got.Reason, tt.reason)
			}
			if !tt.valid && got.Field != FieldResumeText {
				t.Fatalf("field = %q, want %q", got.Field, FieldResumeText)
			}
		})
	}
}

func TestValidationErr(t *testing.T) {
	if err := ValidateResumeText(strings.Repeat("x", 60)).Err(); err != nil {
		t.Fatalf("expected nil error for valid text, got %v", err)
	}
	err := ValidateResumeText("short").Err()
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonResumeTooShort {
		t.Fatalf("expected ValidationError with too-short reason, got %v", err)
	}
}
