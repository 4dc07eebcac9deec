// Package boleto recognises billing fields in the text of a Brazilian boleto.
package boleto

import (
	"regexp"
	"strings"
)

// Fields holds the structured values recognised in a boleto. Every field is
// optional: the zero value (or a nil Amount) means the field was not found.
type Fields struct {
	CPF            string   `json:"cpf,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	Name           string   `json:"name,omitempty"`
	OurNumber      string   `json:"ourNumber,omitempty"`
	DueDate        string   `json:"dueDate,omitempty"`
	Amount         *float64 `json:"amount,omitempty"`
	ReferenceMonth string   `json:"referenceMonth,omitempty"`
	Barcode        string   `json:"barcode,omitempty"`
}

// Empty reports whether no field was recognised.
func (f Fields) Empty() bool {
	return f.CPF == "" && f.Unit == "" && f.Name == "" && f.OurNumber == "" &&
		f.DueDate == "" && f.Amount == nil && f.ReferenceMonth == "" && f.Barcode == ""
}

// Found lists the names of the recognised fields in catalog order.
func (f Fields) Found() []string {
	var names []string
	for _, r := range catalog {
		if r.present(&f) {
			names = append(names, r.field)
		}
	}
	return names
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeText collapses every whitespace run (newlines included) into a
// single space and trims the ends.
func NormalizeText(raw string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))
}

// Parse runs the rule catalog over normalized text. For each field the
// recognisers are tried in priority order and the first one that matches
// decides the field; if its value is rejected during normalisation the field
// stays empty and later recognisers are not consulted. Parse never fails.
func Parse(text string) Fields {
	var f Fields
	for _, r := range catalog {
		for _, recognize := range r.recognizers {
			m := recognize(text)
			if m == nil {
				continue
			}
			r.apply(&f, m)
			break
		}
	}
	return f
}

// ParseRaw normalizes raw extractor output and parses it.
func ParseRaw(raw string) Fields {
	return Parse(NormalizeText(raw))
}
