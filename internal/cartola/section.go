package cartola

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// sectionState tracks which region of the statement the line scanner is in.
// Exactly one state is active at a time, which rules out the transactions
// and commissions regions being open simultaneously.
type sectionState int

const (
	stateHeader sectionState = iota // before any section marker
	stateTransactions
	stateCommissions
	stateInactive // after a card total, before the next marker
)

// Section markers, matched against an uppercased, accent-folded copy of the
// line. The on-page text varies between "INFORMACIÓN" and "INFORMACION"
// depending on the PDF font, so matching happens on the folded form.
const (
	markerTransactions = "2. INFORMACION DE TRANSACCIONES"
	markerCommissions  = "COMISIONES, OTROS CARGOS Y ABONOS"
	markerCardTotal    = "TOTAL TARJETA"
)

// tableHeaderPrefixes are column captions reprinted on every page. Lines
// starting with one are discarded in any state.
var tableHeaderPrefixes = []string{
	"NUMERO",
	"FECHA",
	"DESCRIPCION",
	"CIUDAD",
	"PAIS",
	"MONTO",
	"TOTAL DE PAGOS",
	"TOTAL DE COMPRAS",
}

// foldMarker uppercases and strips diacritics for marker comparison. The
// original-case line is what the field extractor sees; folding is only for
// section routing.
func foldMarker(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return norm.NFC.String(b.String())
}

// next classifies one line and returns the new state plus whether the line
// should be offered to the transaction tokenizer.
func (s sectionState) next(line string) (sectionState, bool) {
	u := foldMarker(line)

	if strings.Contains(u, markerTransactions) {
		return stateTransactions, false
	}
	if strings.Contains(u, markerCommissions) {
		return stateCommissions, false
	}
	if strings.HasPrefix(u, markerCardTotal) {
		// Ends the transactions region only; commissions keep going after a
		// per-card total.
		if s == stateCommissions {
			return stateCommissions, false
		}
		return stateInactive, false
	}

	for _, p := range tableHeaderPrefixes {
		if strings.HasPrefix(u, p) {
			return s, false
		}
	}

	if s != stateTransactions && s != stateCommissions {
		return s, false
	}

	// Cheap pre-filter: only date-bearing lines are worth tokenizing.
	if !dateAnywherePattern.MatchString(line) {
		return s, false
	}
	return s, true
}
