package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"resume-analyzer/internal/shared/metrics"
)

// Format is a supported résumé document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOC  Format = "doc"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
)

// AllowedExtensions lists the accepted file extensions in display order.
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".txt"}

// DetectFormat maps a file name to a Format by its extension, case-insensitively.
func DetectFormat(fileName string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(fileName)))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".doc":
		return FormatDOC, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt":
		return FormatTXT, nil
	default:
		return "", &UnsupportedFormatError{Ext: ext}
	}
}

// ExtractText returns the plain text of a résumé document.
// The format is chosen from the file name; decode failures are reported as *FileProcessingError
// and no partial text is returned. Libraries: github.com/ledongthuc/pdf (PDF),
// github.com/nguyenthenguyen/docx (DOCX), github.com/richardlehane/mscfb (legacy DOC).
func ExtractText(ctx context.Context, data []byte, fileName string) (string, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := runWithContext(ctx, format, func() (string, error) {
		switch format {
		case FormatPDF:
			return extractPDF(data)
		case FormatDOCX, FormatDOC:
			return extractWord(format, data)
		default:
			return extractTXT(data)
		}
	})
	if err != nil {
		metrics.IncExtractionFailed()
		return "", err
	}
	metrics.IncExtractionSucceeded()
	return normalizeText(text), nil
}

type extractResult struct {
	text string
	err  error
}

// runWithContext runs fn on its own goroutine so a cancelled context abandons a slow parser.
// Parser panics on malformed input surface as *FileProcessingError.
func runWithContext(ctx context.Context, format Format, fn func() (string, error)) (string, error) {
	done := make(chan extractResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- extractResult{err: processingError(format, fmt.Errorf("parser panic: %v", r))}
			}
		}()
		text, err := fn()
		if err != nil {
			err = processingError(format, err)
		}
		done <- extractResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		return res.text, nil
	}
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}
