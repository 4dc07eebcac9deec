package textextract

import (
	"context"
	"strings"
	"unicode/utf8"
)

// DefaultMinTextLength is the point below which PDF text is assumed to be a
// scanned image with no usable text layer.
const DefaultMinTextLength = 100

// Chain tries Primary first and moves on to Fallbacks when the primary text
// is too short or could not be decoded. The longest text obtained wins; if
// every fallback fails the primary text is kept however short it is.
type Chain struct {
	Primary       Extractor
	Fallbacks     []Extractor
	MinTextLength int
}

// NewPDFChain builds the PDF chain: the Go reader, then pdftotext and the OCR
// command when enabled.
func NewPDFChain(opts Options) *Chain {
	c := &Chain{Primary: PDF{}, MinTextLength: opts.MinTextLength}
	if opts.Pdftotext {
		c.Fallbacks = append(c.Fallbacks, Pdftotext{})
	}
	if opts.OCRCommand != "" {
		c.Fallbacks = append(c.Fallbacks, Command{Line: opts.OCRCommand})
	}
	return c
}

func (c *Chain) Name() string { return c.Primary.Name() }

func (c *Chain) Extract(ctx context.Context, data []byte) (string, error) {
	res, err := c.Run(ctx, data)
	return res.Text, err
}

// Run returns the chosen text and its source. The error is non-nil only
// when the primary failed and no fallback produced anything.
func (c *Chain) Run(ctx context.Context, data []byte) (Result, error) {
	var (
		best    Result
		have    bool
		warns   []string
		primErr error
	)

	text, err := c.Primary.Extract(ctx, data)
	if err != nil {
		primErr = err
	} else {
		best, have = Result{Text: text, Source: c.Primary.Name()}, true
		if textLength(text) >= c.MinTextLength {
			return best, nil
		}
	}

	for _, fb := range c.Fallbacks {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		t, err := fb.Extract(ctx, data)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		if !have || textLength(t) > textLength(best.Text) {
			best, have = Result{Text: t, Source: fb.Name(), Fallback: true}, true
		}
		if textLength(best.Text) >= c.MinTextLength {
			break
		}
	}

	if !have {
		return Result{Warnings: warns}, primErr
	}
	best.Warnings = warns
	return best, nil
}

func textLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
