package boleto

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// recognizer returns the submatches of the first hit in text, or nil.
type recognizer func(text string) []string

// fieldRule binds one field to its ordered recognisers and the normaliser
// that writes the field. apply returns false when it rejects a raw match and
// leaves the field empty.
type fieldRule struct {
	field       string
	recognizers []recognizer
	apply       func(f *Fields, m []string) bool
	present     func(f *Fields) bool
}

func pattern(expr string) recognizer {
	return regexp.MustCompile(expr).FindStringSubmatch
}

var catalog = []fieldRule{
	{
		field: "cpf",
		recognizers: []recognizer{
			pattern(`(?i)CPF(?:\s*/\s*CNPJ)?\s*:?\s*([\d./\-]{11,18})`),
		},
		apply: func(f *Fields, m []string) bool {
			d := digitsOnly(m[1])
			if d == "" {
				return false
			}
			f.CPF = d
			return true
		},
		present: func(f *Fields) bool { return f.CPF != "" },
	},
	{
		field: "unit",
		recognizers: []recognizer{
			pattern(`(?i)Unidade\s*:?\s*(\d{1,3}\s*/\s*\d{1,4})`),
			pattern(`(?i)Unidade\s*:?\s*(\d{1,4}(?:\s?[A-Za-z]{1,2})?)\b`),
			pattern(`\b(\d{2}/\d{3})\b`),
		},
		apply: func(f *Fields, m []string) bool {
			u := stripSpace(m[1])
			if u == "" {
				return false
			}
			f.Unit = u
			return true
		},
		present: func(f *Fields) bool { return f.Unit != "" },
	},
	{
		field: "name",
		recognizers: []recognizer{
			pattern(`(?i)Nome(?:\s+do\s+(?:Pagador|Sacado))?\s*:?\s*([\p{L} ]{8,})`),
		},
		apply: func(f *Fields, m []string) bool {
			n := strings.TrimSpace(m[1])
			if n == "" {
				return false
			}
			f.Name = n
			return true
		},
		present: func(f *Fields) bool { return f.Name != "" },
	},
	{
		field: "ourNumber",
		recognizers: []recognizer{
			pattern(`(?i)Nosso\s+N[úu]mero\s*:?\s*(\d[\d./\-]*)`),
		},
		apply: func(f *Fields, m []string) bool {
			f.OurNumber = strings.TrimSpace(m[1])
			return f.OurNumber != ""
		},
		present: func(f *Fields) bool { return f.OurNumber != "" },
	},
	{
		field: "dueDate",
		recognizers: []recognizer{
			pattern(`(?i)(?:Vencimento|Venc\.?)\s*:?\s*(\d{1,2})[/-](\d{1,2})[/-](\d{4})`),
		},
		apply: func(f *Fields, m []string) bool {
			f.DueDate = fmt.Sprintf("%s/%s/%s", pad2(m[1]), pad2(m[2]), m[3])
			return true
		},
		present: func(f *Fields) bool { return f.DueDate != "" },
	},
	{
		field: "amount",
		recognizers: []recognizer{
			pattern(`(?i)Valor(?:\s+do\s+Documento)?\s*:?\s*(?:R\$\s*)?(\d[\d.]*(?:,\d{1,2})?)`),
			pattern(`R\$\s*(\d[\d.]*(?:,\d{1,2})?)`),
		},
		apply: func(f *Fields, m []string) bool {
			v, ok := ParseAmount(m[1])
			if !ok {
				return false
			}
			f.Amount = &v
			return true
		},
		present: func(f *Fields) bool { return f.Amount != nil },
	},
	{
		field: "referenceMonth",
		recognizers: []recognizer{
			pattern(`(?i)(?:Compet[êe]ncia|Refer[êe]ncia)\s*:?\s*(\d{1,2})[/-](\d{4})`),
			pattern(`\b(\d{1,2})[/-](\d{4})\b`),
		},
		apply: func(f *Fields, m []string) bool {
			f.ReferenceMonth = pad2(m[1]) + "/" + m[2]
			return true
		},
		present: func(f *Fields) bool { return f.ReferenceMonth != "" },
	},
	{
		field:       "barcode",
		recognizers: []recognizer{findBarcode},
		apply: func(f *Fields, m []string) bool {
			f.Barcode = m[0]
			return true
		},
		present: func(f *Fields) bool { return f.Barcode != "" },
	},
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func pad2(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d", n)
}
