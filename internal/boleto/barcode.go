package boleto

import "strings"

const (
	minCandidateDigits = 20
	minBarcodeLen      = 44
	maxBarcodeLen      = 48
)

// Lengths an over-long digit run is cut to. 44 is the raw barcode, 47 the
// bank typeable line, 48 the utility (arrecadação) typeable line.
var truncationLengths = []int{44, 47, 48}

// BarcodeCandidates returns the digit runs considered as barcodes, in token
// order. Each whitespace-separated token is reduced to its digits; runs of at
// least 20 digits are kept, and runs longer than 48 are followed by their
// truncations to each length in truncationLengths.
func BarcodeCandidates(text string) []string {
	var out []string
	for _, tok := range strings.Fields(text) {
		d := digitsOnly(tok)
		if len(d) < minCandidateDigits {
			continue
		}
		out = append(out, d)
		if len(d) > maxBarcodeLen {
			for _, n := range truncationLengths {
				out = append(out, d[:n])
			}
		}
	}
	return out
}

func findBarcode(text string) []string {
	for _, c := range BarcodeCandidates(text) {
		if len(c) >= minBarcodeLen && len(c) <= maxBarcodeLen {
			return []string{c}
		}
	}
	return nil
}
