package match

import (
	"strings"
	"unicode"

	"github.com/dgallion1/boletoscan/internal/boleto"
	"github.com/dgallion1/boletoscan/internal/resident"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CPFStrategy accepts the roster entry whose CPF equals the extracted one.
type CPFStrategy struct{}

func (CPFStrategy) Name() string { return "cpf" }

func (CPFStrategy) Apply(f boleto.Fields, roster []resident.Resident, res *Result) bool {
	if f.CPF == "" {
		return false
	}
	for _, r := range roster {
		if r.CPF == f.CPF {
			res.accept(r, ConfidenceCPF)
			return true
		}
	}
	return false
}

// UnitStrategy accepts an exact unit match after dropping case and
// punctuation, then retries with leading zeros dropped from each digit group
// so "03/005" and "3/5" name the same unit. Failing that it suggests units that contain, or are contained
// in, the extracted unit.
type UnitStrategy struct{}

func (UnitStrategy) Name() string { return "unit" }

func (UnitStrategy) Apply(f boleto.Fields, roster []resident.Resident, res *Result) bool {
	if f.Unit == "" {
		return false
	}
	for _, key := range []func(string) string{normalizeUnit, unitGroups} {
		want := key(f.Unit)
		if want == "" {
			continue
		}
		for _, r := range roster {
			if key(r.Unit) == want {
				res.accept(r, ConfidenceUnit)
				return true
			}
		}
	}

	needle := strings.ToLower(f.Unit)
	var suggestions []resident.Resident
	for _, r := range roster {
		unit := strings.ToLower(r.Unit)
		if unit == "" {
			continue
		}
		if strings.Contains(unit, needle) || strings.Contains(needle, unit) {
			suggestions = append(suggestions, r)
			if len(suggestions) == MaxSuggestions {
				break
			}
		}
	}
	if len(suggestions) > 0 {
		res.Suggestions = suggestions
		res.Confidence = ConfidenceUnitSuggest
	}
	return false
}

// NameStrategy suggests the first resident whose name contains, or is
// contained in, the extracted name, ignoring case and accents. It never
// produces a valid match.
type NameStrategy struct{}

func (NameStrategy) Name() string { return "name" }

func (NameStrategy) Apply(f boleto.Fields, roster []resident.Resident, res *Result) bool {
	if res.IsValid || f.Name == "" {
		return false
	}
	want := foldName(f.Name)
	if want == "" {
		return false
	}
	for _, r := range roster {
		name := foldName(r.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, want) || strings.Contains(want, name) {
			res.Suggestions = prepend(r, res.Suggestions)
			res.Confidence = max(res.Confidence, ConfidenceName)
			return false
		}
	}
	return false
}

// prepend puts r first, dropping an equal entry already in the list, and
// keeps at most MaxSuggestions.
func prepend(r resident.Resident, list []resident.Resident) []resident.Resident {
	out := make([]resident.Resident, 0, MaxSuggestions)
	out = append(out, r)
	for _, s := range list {
		if s == r {
			continue
		}
		if len(out) == MaxSuggestions {
			break
		}
		out = append(out, s)
	}
	return out
}

func normalizeUnit(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// unitGroups splits s into runs of digits and runs of letters, drops leading
// zeros from the digit runs and joins the runs with "/".
// "03/005" -> "3/5", "Bloco A-01" -> "bloco/a/1".
func unitGroups(s string) string {
	var groups []string
	var cur strings.Builder
	kind := 0 // 1 digits, 2 letters
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		g := cur.String()
		if kind == 1 {
			g = strings.TrimLeft(g, "0")
			if g == "" {
				g = "0"
			}
		}
		groups = append(groups, g)
		cur.Reset()
	}
	for _, r := range strings.ToLower(s) {
		k := 0
		switch {
		case r >= '0' && r <= '9':
			k = 1
		case r >= 'a' && r <= 'z':
			k = 2
		}
		if k != kind {
			flush()
			kind = k
		}
		if k != 0 {
			cur.WriteRune(r)
		}
	}
	flush()
	return strings.Join(groups, "/")
}

// foldName lower-cases s and strips diacritics ("João" -> "joao").
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}
