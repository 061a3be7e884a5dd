package cartola

import (
	"strings"

	"github.com/vsconsulting/cartola-internacional/internal/models"
)

// parseTransactionLine extracts one candidate record from a single statement
// line, or returns nil when the line is not a transaction row.
//
// The line format has no reliable column boundaries, so fields are recovered
// by a greedy right-to-left reduction over whitespace tokens:
//
//	[ref] DD/MM/YY DESCRIPTION... [CIUDAD...] [PAIS] [monto_origen] monto_usd
//
// The caller attaches the cardholder name and document identifier afterwards.
func parseTransactionLine(line string) *models.TransactionRecord {
	tokens := strings.Fields(line)

	dateIdx := -1
	for i, t := range tokens {
		if datePattern.MatchString(t) {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil
	}

	trailing := trailingAmounts(tokens)
	if len(trailing) == 0 {
		return nil
	}

	montoUSD := trailing[len(trailing)-1]
	var montoOrigen string
	if len(trailing) >= 2 {
		montoOrigen = trailing[len(trailing)-2]
	}

	descTokens := tokens[dateIdx+1 : len(tokens)-len(trailing)]

	var desc, ciudad, pais string
	if len(descTokens) > 0 && countryPattern.MatchString(descTokens[len(descTokens)-1]) {
		pais = descTokens[len(descTokens)-1]
		desc, ciudad = splitDescCity(descTokens[:len(descTokens)-1])
	} else {
		desc = strings.Join(descTokens, " ")
	}

	// Running-total footers sometimes land inside the data region.
	if desc == "" || strings.HasPrefix(strings.ToUpper(desc), "TOTAL") {
		return nil
	}

	var ref string
	if dateIdx >= 2 && refPattern.MatchString(tokens[dateIdx-1]) {
		ref = tokens[dateIdx-1]
	}

	usd, err := ParseAmount(montoUSD)
	if err != nil {
		return nil
	}
	var origen *float64
	if montoOrigen != "" {
		v, err := ParseAmount(montoOrigen)
		if err != nil {
			return nil
		}
		origen = &v
	}

	return &models.TransactionRecord{
		FechaOperacion: NormalizeDate(tokens[dateIdx]),
		Descripcion:    desc,
		Ciudad:         ciudad,
		Pais:           pais,
		RefInt:         ref,
		MontoOrigen:    origen,
		MontoOperacion: usd,
		MontoTotal:     usd,
	}
}

// trailingAmounts returns the maximal run of amount-formatted tokens at the
// end of the token list, in their original order.
func trailingAmounts(tokens []string) []string {
	end := len(tokens)
	start := end
	for start > 0 && amountPattern.MatchString(tokens[start-1]) {
		start--
	}
	return tokens[start:end]
}

// splitDescCity partitions the descriptor tokens preceding the country code
// into description and city. The city is the last 3 tokens when more than 3
// remain, otherwise the last 1; with fewer than 2 tokens there is no city.
// A split that would leave the description empty collapses back to
// description-only.
func splitDescCity(beforePais []string) (desc, ciudad string) {
	if len(beforePais) == 0 {
		return "", ""
	}
	if len(beforePais) == 1 {
		return beforePais[0], ""
	}

	window := 1
	if len(beforePais) > 3 {
		window = 3
	}
	cut := len(beforePais) - window

	desc = strings.Join(beforePais[:cut], " ")
	ciudad = strings.Join(beforePais[cut:], " ")
	if desc == "" {
		return strings.Join(beforePais, " "), ""
	}
	return desc, ciudad
}
