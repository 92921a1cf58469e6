package analyses

import (
	"strings"
	"unicode/utf8"
)

// MinResumeChars is the minimum length of meaningful résumé text, counted after trimming.
const MinResumeChars = 50

const (
	FieldResumeText = "resumeText"

	ReasonResumeRequired = "Resume content is required"
	ReasonResumeTooShort = "Resume content is too short. Please ensure the file contains meaningful resume content."
)

// Validation is the outcome of checking résumé text.
type Validation struct {
	Valid  bool
	Field  string
	Reason string
}

// Err returns a *ValidationError for an invalid result and nil otherwise.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	return &ValidationError{Field: v.Field, Reason: v.Reason}
}

// ValidateResumeText checks that text is present and long enough to analyze.
func ValidateResumeText(text string) Validation {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Validation{Field: FieldResumeText, Reason: ReasonResumeRequired}
	}
	if utf8.RuneCountInString(trimmed) < MinResumeChars {
		return Validation{Field: FieldResumeText, Reason: ReasonResumeTooShort}
	}
	return Validation{Valid: true}
}
