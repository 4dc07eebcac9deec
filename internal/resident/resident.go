// Package resident loads the condominium resident roster that boletos are
// matched against.
package resident

import (
	"context"
	"strings"
)

// Resident is one roster entry. CPF is stored digits only.
type Resident struct {
	CPF  string `json:"cpf" csv:"cpf"`
	Unit string `json:"unit" csv:"unit"`
	Name string `json:"name" csv:"name"`
}

// Provider supplies the roster in storage order.
type Provider interface {
	Residents(ctx context.Context) ([]Resident, error)
}

// Normalize strips punctuation from CPFs, trims the other columns and drops
// blank rows.
func Normalize(in []Resident) []Resident {
	out := make([]Resident, 0, len(in))
	for _, r := range in {
		r.CPF = digitsOnly(r.CPF)
		r.Unit = strings.TrimSpace(r.Unit)
		r.Name = strings.TrimSpace(r.Name)
		if r.CPF == "" && r.Unit == "" && r.Name == "" {
			continue
		}
		out = append(out, r)
	}
	return out
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
