package textextract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDF reads the text layer of a PDF with ledongthuc/pdf. Pages come out in
// order joined by "\n"; the text runs of a page are joined by single spaces.
type PDF struct{}

func (PDF) Name() string { return "pdf" }

func (PDF) Extract(ctx context.Context, data []byte) (text string, err error) {
	// The library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrDecode, i, err)
		}
		var runs []string
		for _, row := range rows {
			runs = append(runs, rowRuns(row.Content)...)
		}
		pages = append(pages, strings.Join(runs, " "))
	}
	return strings.Join(pages, "\n"), nil
}

// gapRatio is the horizontal gap, as a fraction of the font size, that
// separates two runs on the same row.
const gapRatio = 0.2

// rowRuns groups the glyphs of one row into text runs. Empty glyphs are
// skipped, whitespace glyphs and wide gaps end the current run.
func rowRuns(glyphs []pdflib.Text) []string {
	var (
		runs    []string
		cur     strings.Builder
		lastEnd float64
	)
	flush := func() {
		if cur.Len() > 0 {
			runs = append(runs, cur.String())
			cur.Reset()
		}
	}
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		if cur.Len() > 0 && g.X-lastEnd > gapRatio*g.FontSize {
			flush()
		}
		cur.WriteString(g.S)
		lastEnd = g.X + g.W
	}
	flush()
	return runs
}

// Pdftotext shells out to poppler's pdftotext, which copes with fonts the
// Go reader cannot map to Unicode.
type Pdftotext struct{}

func (Pdftotext) Name() string { return "pdftotext" }

func (Pdftotext) Extract(ctx context.Context, data []byte) (string, error) {
	path, cleanup, err := writeTemp(data)
	if err != nil {
		return "", err
	}
	defer cleanup()

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// Command runs an operator-supplied OCR command line and reads the text from
// its stdout. "{file}" in the command is replaced by the path of the PDF; if
// absent the path is appended.
type Command struct {
	Line string
}

func (Command) Name() string { return "ocr" }

func (c Command) Extract(ctx context.Context, data []byte) (string, error) {
	args := strings.Fields(c.Line)
	if len(args) == 0 {
		return "", fmt.Errorf("ocr: empty command")
	}
	path, cleanup, err := writeTemp(data)
	if err != nil {
		return "", err
	}
	defer cleanup()

	replaced := false
	for i, a := range args {
		if strings.Contains(a, "{file}") {
			args[i] = strings.ReplaceAll(a, "{file}", path)
			replaced = true
		}
	}
	if !replaced {
		args = append(args, path)
	}

	out, err := exec.CommandContext(ctx, args[0], args[1:]...).Output()
	if err != nil {
		return "", fmt.Errorf("ocr %s: %w", args[0], err)
	}
	return string(out), nil
}

func writeTemp(data []byte) (string, func(), error) {
	tmp, err := os.CreateTemp("", "boletoscan-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	cleanup := func() { os.Remove(path) }
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}
