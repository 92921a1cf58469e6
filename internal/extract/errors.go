package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat matches any *UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported file type")
	// ErrFileProcessing matches any *FileProcessingError.
	ErrFileProcessing = errors.New("failed to process file")
)

// UnsupportedFormatError reports a file whose extension is not one of the accepted formats.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unsupported file type: missing extension"
	}
	return "unsupported file type: " + e.Ext
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// FileProcessingError reports bytes that could not be decoded as their declared format.
type FileProcessingError struct {
	Format Format
	Err    error
}

func (e *FileProcessingError) Error() string {
	return fmt.Sprintf("failed to process %s file: %v", e.Format, e.Err)
}

func (e *FileProcessingError) Unwrap() error {
	return e.Err
}

func (e *FileProcessingError) Is(target error) bool {
	return target == ErrFileProcessing
}

func processingError(format Format, err error) error {
	return &FileProcessingError{Format: format, Err: err}
}
