// Command boletoscan reads one boleto and prints the fields found in it and
// the resident it belongs to.
//
//	boletoscan -roster residents.csv -file boleto.pdf
//	boletoscan -roster residents.json -text "Unidade: 03/005" -json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/boletoscan/internal/logging"
	"github.com/dgallion1/boletoscan/internal/pipeline"
	"github.com/dgallion1/boletoscan/internal/resident"
	"github.com/dgallion1/boletoscan/internal/textextract"
)

func main() {
	var (
		file      = flag.String("file", "", "boleto document to read (pdf, txt, html, docx, md)")
		text      = flag.String("text", "", "boleto text already extracted elsewhere, e.g. by OCR")
		roster    = flag.String("roster", "residents.json", "resident roster file (json, csv or xlsx)")
		asJSON    = flag.Bool("json", false, "print the full report as JSON")
		pdftotext = flag.Bool("pdftotext", true, "fall back to pdftotext for PDFs with little text")
		ocr       = flag.String("ocr", "", "OCR command for scanned PDFs; {file} is replaced by the path")
		minText   = flag.Int("min-text", textextract.DefaultMinTextLength, "minimum text length before trying fallbacks")
		timeout   = flag.Duration("timeout", 2*time.Minute, "overall processing timeout")
		verbose   = flag.Bool("v", false, "log progress to stderr")
	)
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logging.New(os.Stderr, level, "text")

	if (*file == "") == (*text == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -text is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	proc := pipeline.NewProcessor(resident.NewFileProvider(*roster), textextract.Options{
		MinTextLength: *minText,
		Pdftotext:     *pdftotext,
		OCRCommand:    *ocr,
	}, nil, log)

	rep, err := run(ctx, proc, *file, *text)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			log.Error("encode report", "error", err)
			os.Exit(1)
		}
	} else {
		printSummary(os.Stdout, rep)
	}

	if !rep.Match.IsValid {
		os.Exit(3)
	}
}

func run(ctx context.Context, proc *pipeline.Processor, file, text string) (pipeline.Report, error) {
	if text != "" {
		return proc.ProcessText(ctx, text), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return pipeline.Report{}, fmt.Errorf("read %s: %w", file, err)
	}
	return proc.ProcessDocument(ctx, filepath.Base(file), data), nil
}

func printSummary(w io.Writer, rep pipeline.Report) {
	if rep.Filename != "" {
		fmt.Fprintf(w, "file:      %s (%s, %d chars)\n", rep.Filename, rep.Source, rep.TextLength)
	}
	for _, name := range rep.Fields.Found() {
		fmt.Fprintf(w, "%-10s %s\n", name+":", fieldValue(rep, name))
	}

	res := rep.Match
	switch res.Outcome() {
	case "matched":
		fmt.Fprintf(w, "resident:  %s, unit %s (confidence %d)\n", res.Resident.Name, res.Resident.Unit, res.Confidence)
	case "suggested":
		fmt.Fprintf(w, "no exact match (confidence %d), suggestions:\n", res.Confidence)
		for _, s := range res.Suggestions {
			fmt.Fprintf(w, "  - %s, unit %s\n", s.Name, s.Unit)
		}
	default:
		fmt.Fprintf(w, "error:     %s\n", strings.Join(res.Errors, "; "))
	}
}

func fieldValue(rep pipeline.Report, name string) string {
	f := rep.Fields
	switch name {
	case "cpf":
		return f.CPF
	case "unit":
		return f.Unit
	case "name":
		return f.Name
	case "ourNumber":
		return f.OurNumber
	case "dueDate":
		return f.DueDate
	case "amount":
		return rep.AmountDisplay
	case "referenceMonth":
		return f.ReferenceMonth
	case "barcode":
		return f.Barcode
	}
	return ""
}
