// Package match resolves the payer of a boleto against the resident roster.
package match

import (
	"github.com/dgallion1/boletoscan/internal/boleto"
	"github.com/dgallion1/boletoscan/internal/resident"
)

// Confidence levels assigned by the built-in strategies.
const (
	ConfidenceCPF         = 100
	ConfidenceUnit        = 90
	ConfidenceUnitSuggest = 50
	ConfidenceName        = 30
)

// MaxSuggestions caps Result.Suggestions.
const MaxSuggestions = 3

const (
	ErrNoMatch        = "no matching resident found in the system"
	ErrProcessingFail = "failed to process document"
)

// Result is the outcome of matching one boleto. Resident is set only when
// IsValid is true; Errors is non-empty only when nothing resolved and there
// are no suggestions.
type Result struct {
	IsValid     bool                `json:"isValid"`
	Resident    *resident.Resident  `json:"resident,omitempty"`
	Confidence  int                 `json:"confidence"`
	Suggestions []resident.Resident `json:"suggestions"`
	Errors      []string            `json:"errors"`
}

// Failed is the result reported when a document could not be processed at
// all.
func Failed() Result {
	return Result{
		Suggestions: []resident.Resident{},
		Errors:      []string{ErrProcessingFail},
	}
}

// Strategy is one step of the matching chain. Apply inspects the fields and
// roster, records any match or suggestions on res, and returns true when the
// result is final.
type Strategy interface {
	Name() string
	Apply(f boleto.Fields, roster []resident.Resident, res *Result) bool
}

// Matcher runs its strategies in order until one is final.
type Matcher struct {
	strategies []Strategy
}

// New returns a Matcher with the given strategies, or the default chain
// (CPF, unit, name) when none are given.
func New(strategies ...Strategy) *Matcher {
	if len(strategies) == 0 {
		strategies = []Strategy{CPFStrategy{}, UnitStrategy{}, NameStrategy{}}
	}
	return &Matcher{strategies: strategies}
}

// Match never fails: an empty roster or empty fields simply produce an
// unmatched result.
func (m *Matcher) Match(f boleto.Fields, roster []resident.Resident) Result {
	res := Result{Suggestions: []resident.Resident{}, Errors: []string{}}
	for _, s := range m.strategies {
		if s.Apply(f, roster, &res) {
			break
		}
	}
	if !res.IsValid && len(res.Suggestions) == 0 {
		res.Errors = []string{ErrNoMatch}
	}
	return res
}

// Outcome classifies a result for metrics and logs.
func (r Result) Outcome() string {
	switch {
	case r.IsValid:
		return "matched"
	case len(r.Suggestions) > 0:
		return "suggested"
	case len(r.Errors) == 1 && r.Errors[0] == ErrProcessingFail:
		return "failed"
	default:
		return "unmatched"
	}
}

func (r *Result) accept(res resident.Resident, confidence int) {
	r.IsValid = true
	r.Resident = &res
	r.Confidence = confidence
}
