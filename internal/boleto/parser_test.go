package boleto

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("  Nosso   Número:\n\t 123 \r\n\n  ")
	if got != "Nosso Número: 123" {
		t.Errorf("expected %q, got %q", "Nosso Número: 123", got)
	}
	if NormalizeText("") != "" {
		t.Error("expected empty output for empty input")
	}
}

func TestParse_CPFAndUnit(t *testing.T) {
	f := ParseRaw("CPF: 123.456.789-00 Unidade: 03/005")
	if f.CPF != "12345678900" {
		t.Errorf("expected cpf %q, got %q", "12345678900", f.CPF)
	}
	if f.Unit != "03/005" {
		t.Errorf("expected unit %q, got %q", "03/005", f.Unit)
	}
}

func TestParse_CNPJLabel(t *testing.T) {
	f := ParseRaw("CPF/CNPJ: 12.345.678/0001-90")
	if f.CPF != "12345678000190" {
		t.Errorf("expected cpf %q, got %q", "12345678000190", f.CPF)
	}
}

func TestParse_Unit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"slash form", "Unidade: 12 / 345", "12/345"},
		{"letter suffix", "Unidade: 101A Bloco B", "101A"},
		{"spaced letter suffix", "Unidade 204 B", "204B"},
		{"plain number", "Unidade: 101 Bloco", "101"},
		{"bare slash form", "Apto 07/012 Torre Sul", "07/012"},
		{"date is not a unit", "Vencimento: 15/03/2024", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseRaw(tt.text)
			if f.Unit != tt.want {
				t.Errorf("expected unit %q, got %q", tt.want, f.Unit)
			}
		})
	}
}

func TestParse_DueDate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Vencimento: 15/03/2024", "15/03/2024"},
		{"Vencimento 5-3-2024", "05/03/2024"},
		{"Venc. 1/12/2025", "01/12/2025"},
		{"Data: 15/03/2024", ""},
	}
	for _, tt := range tests {
		f := ParseRaw(tt.text)
		if f.DueDate != tt.want {
			t.Errorf("%q: expected due date %q, got %q", tt.text, tt.want, f.DueDate)
		}
	}
}

func TestParse_ReferenceMonth(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Competência: 3/2024", "03/2024"},
		{"Referencia 11-2023", "11/2023"},
		{"Taxa condominial 04/2024", "04/2024"},
		{"sem referencia", ""},
	}
	for _, tt := range tests {
		f := ParseRaw(tt.text)
		if f.ReferenceMonth != tt.want {
			t.Errorf("%q: expected reference %q, got %q", tt.text, tt.want, f.ReferenceMonth)
		}
	}
}

func TestParse_Amount(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"Valor: R$ 1.234,56", 1234.56},
		{"Valor do Documento 850,00", 850},
		{"Total a pagar R$ 12.345.678,90", 12345678.90},
		{"Valor: R$ 0,00", 0},
	}
	for _, tt := range tests {
		f := ParseRaw(tt.text)
		if f.Amount == nil {
			t.Errorf("%q: expected amount %v, got none", tt.text, tt.want)
			continue
		}
		if *f.Amount != tt.want {
			t.Errorf("%q: expected amount %v, got %v", tt.text, tt.want, *f.Amount)
		}
	}

	if f := ParseRaw("Valor a combinar"); f.Amount != nil {
		t.Errorf("expected no amount, got %v", *f.Amount)
	}
}

func TestParse_RejectedMatchEndsField(t *testing.T) {
	// The labelled amount overflows float64; the later "R$" amount must not
	// stand in for it.
	text := "Valor: " + strings.Repeat("9", 400) + " Juros R$ 10,00"
	if f := ParseRaw(text); f.Amount != nil {
		t.Errorf("expected no amount, got %v", *f.Amount)
	}

	if f := ParseRaw("Juros R$ 10,00"); f.Amount == nil || *f.Amount != 10 {
		t.Errorf("expected fallback amount 10 when no label is present, got %v", f.Amount)
	}
}

func TestParse_NameAndOurNumber(t *testing.T) {
	f := ParseRaw("Nome do Pagador: José da Silva, Nosso Número: 123/456.789-0 Agência")
	if f.Name != "José da Silva" {
		t.Errorf("expected name %q, got %q", "José da Silva", f.Name)
	}
	if f.OurNumber != "123/456.789-0" {
		t.Errorf("expected our number %q, got %q", "123/456.789-0", f.OurNumber)
	}

	f = ParseRaw("Nosso Numero 00042")
	if f.OurNumber != "00042" {
		t.Errorf("expected our number %q, got %q", "00042", f.OurNumber)
	}

	if f := ParseRaw("Nome: Ana"); f.Name != "" {
		t.Errorf("expected short name to be rejected, got %q", f.Name)
	}
}

func TestBarcodeCandidates(t *testing.T) {
	long := strings.Repeat("1234", 13) // 52 digits
	got := BarcodeCandidates("abc 123 " + long)
	want := []string{long, long[:44], long[:47], long[:48]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParse_Barcode(t *testing.T) {
	line47 := "23793381286000000000300000000400184340000012345"
	tests := []struct {
		name string
		text string
		want string
	}{
		{"typeable line with punctuation", "Linha: 23793.38128.60000.00000.30000.00004.0.01843400000123.45", line47},
		{"short run skipped", "123456789012345678901 " + line47, line47},
		{"over-long run truncated", strings.Repeat("9", 48) + "1234", strings.Repeat("9", 44)},
		{"only short runs", "12345 678901234567890123", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseRaw(tt.text)
			if f.Barcode != tt.want {
				t.Errorf("expected barcode %q, got %q", tt.want, f.Barcode)
			}
			if f.Barcode != "" && (len(f.Barcode) < 44 || len(f.Barcode) > 48) {
				t.Errorf("barcode length %d out of range", len(f.Barcode))
			}
		})
	}
}

func TestParse_EmptyText(t *testing.T) {
	f := Parse("")
	if !f.Empty() {
		t.Errorf("expected no fields, got %+v", f)
	}
	if len(f.Found()) != 0 {
		t.Errorf("expected no found fields, got %v", f.Found())
	}
}

func TestParse_FullBoleto(t *testing.T) {
	raw := `CONDOMINIO RESIDENCIAL BOSQUE
Nome do Pagador: Maria Conceição Souza
CPF: 987.654.321-00
Unidade: 12/104
Nosso Número: 24/000123-4
Vencimento: 10/4/2024    Competência: 04/2024
Valor do Documento: R$ 1.050,75
23793381286000000000300000000400184340000012345`

	f := ParseRaw(raw)
	if f.Name != "Maria Conceição Souza CPF" {
		t.Errorf("expected name %q, got %q", "Maria Conceição Souza CPF", f.Name)
	}
	if f.CPF != "98765432100" {
		t.Errorf("expected cpf %q, got %q", "98765432100", f.CPF)
	}
	if f.Unit != "12/104" {
		t.Errorf("expected unit %q, got %q", "12/104", f.Unit)
	}
	if f.OurNumber != "24/000123-4" {
		t.Errorf("expected our number %q, got %q", "24/000123-4", f.OurNumber)
	}
	if f.DueDate != "10/04/2024" {
		t.Errorf("expected due date %q, got %q", "10/04/2024", f.DueDate)
	}
	if f.ReferenceMonth != "04/2024" {
		t.Errorf("expected reference %q, got %q", "04/2024", f.ReferenceMonth)
	}
	if f.Amount == nil || *f.Amount != 1050.75 {
		t.Errorf("expected amount 1050.75, got %v", f.Amount)
	}
	if len(f.Barcode) != 47 {
		t.Errorf("expected 47 digit barcode, got %q", f.Barcode)
	}

	want := []string{"cpf", "unit", "name", "ourNumber", "dueDate", "amount", "referenceMonth", "barcode"}
	if !reflect.DeepEqual(f.Found(), want) {
		t.Errorf("expected found %v, got %v", want, f.Found())
	}
}

func TestParse_Idempotent(t *testing.T) {
	raw := "CPF:\n111.222.333-44\n\nUnidade:   07/012  Valor: R$ 99,90"
	once := NormalizeText(raw)
	twice := NormalizeText(once)
	if !reflect.DeepEqual(Parse(once), Parse(twice)) {
		t.Errorf("expected identical fields for repeated normalization")
	}
	if !reflect.DeepEqual(Parse(once), Parse(once)) {
		t.Errorf("expected Parse to be deterministic")
	}
}

func TestParse_DigitFields(t *testing.T) {
	f := ParseRaw("CPF 123.456.789-09 " + strings.Repeat("0", 44))
	for _, v := range []string{f.CPF, f.Barcode} {
		for _, r := range v {
			if r < '0' || r > '9' {
				t.Fatalf("expected digits only, got %q", v)
			}
		}
	}
}

func TestFormatBRL(t *testing.T) {
	got := FormatBRL(1234.56)
	if !strings.Contains(got, "1.234,56") {
		t.Errorf("expected brazilian formatting, got %q", got)
	}
}
