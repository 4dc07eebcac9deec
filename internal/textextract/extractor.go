// Package textextract turns uploaded documents into plain text for the
// boleto field parser.
package textextract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file extension")
	ErrEmptyDocument     = errors.New("empty document")
	ErrDecode            = errors.New("decode document")
)

// Extractor produces the text of one document held in memory.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, data []byte) (string, error)
}

// Options controls PDF extraction.
type Options struct {
	// MinTextLength is the trimmed rune count below which PDF text is
	// considered unreadable and the fallbacks are tried.
	MinTextLength int
	Pdftotext     bool
	OCRCommand    string
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".md":       true,
	".markdown": true,
}

// ForFile returns the extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return NewPDFChain(opts), nil
	case ".txt":
		return Plain{}, nil
	case ".html", ".htm":
		return HTML{}, nil
	case ".docx":
		return DOCX{}, nil
	case ".md", ".markdown":
		return Markdown{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Result is extracted text plus where it came from.
type Result struct {
	Text     string
	Source   string
	Fallback bool
	// Warnings holds errors from fallbacks that were tried and failed.
	Warnings []string
}

// Run extracts data with ex. Chains report which source produced the text.
func Run(ctx context.Context, ex Extractor, data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, ErrEmptyDocument
	}
	if c, ok := ex.(*Chain); ok {
		return c.Run(ctx, data)
	}
	text, err := ex.Extract(ctx, data)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Source: ex.Name()}, nil
}

// Plain is UTF-8 text, typically an OCR transcript saved to disk.
type Plain struct{}

func (Plain) Name() string { return "text" }

func (Plain) Extract(ctx context.Context, data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), ""), nil
}
