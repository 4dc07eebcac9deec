package resident

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported roster format")

// FileProvider reads the roster from a JSON, CSV or XLSX file on every call.
type FileProvider struct {
	Path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) Residents(ctx context.Context) ([]Resident, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	residents, err := Decode(filepath.Ext(p.Path), f)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", filepath.Base(p.Path), err)
	}
	return residents, nil
}

// Decode parses a roster in the format named by ext (".json", ".csv" or
// ".xlsx").
func Decode(ext string, r io.Reader) ([]Resident, error) {
	var (
		residents []Resident
		err       error
	)
	switch strings.ToLower(ext) {
	case ".json":
		err = json.NewDecoder(r).Decode(&residents)
	case ".csv":
		err = gocsv.Unmarshal(r, &residents)
	case ".xlsx":
		residents, err = decodeXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return Normalize(residents), nil
}

// Header aliases accepted in spreadsheet exports.
var xlsxColumns = map[string]string{
	"cpf":      "cpf",
	"cpf/cnpj": "cpf",
	"unit":     "unit",
	"unidade":  "unit",
	"name":     "name",
	"nome":     "name",
}

func decodeXLSX(r io.Reader) ([]Resident, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		if field, ok := xlsxColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[field] = i
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("xlsx header has none of cpf, unit, name")
	}

	cell := func(row []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]Resident, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, Resident{
			CPF:  cell(row, "cpf"),
			Unit: cell(row, "unit"),
			Name: cell(row, "name"),
		})
	}
	return out, nil
}
