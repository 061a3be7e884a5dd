package cartola

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Token patterns for BCI international statement lines.
var (
	// DD/MM/YY operation date, e.g. "05/03/24"
	datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{2}$`)
	// date appearing anywhere in a line (cheap pre-filter)
	dateAnywherePattern = regexp.MustCompile(`\b\d{2}/\d{2}/\d{2}\b`)
	// two-letter uppercase country code, e.g. "CL", "US"
	countryPattern = regexp.MustCompile(`^[A-Z]{2}$`)
	// international reference: a purely numeric token of 10+ digits
	refPattern = regexp.MustCompile(`^\d{10,}$`)
	// Chilean-locale amounts: "." groups thousands, "," starts the decimals.
	// Examples: 49,44 ; -17,35 ; 49.640,00
	amountPattern = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})*(?:,\d{2})$|^-?\d+(?:,\d{2})$`)
)

// AmountFormatError reports a token that was expected to be a locale-formatted
// amount but does not parse as one.
type AmountFormatError struct {
	Token string
}

func (e *AmountFormatError) Error() string {
	return fmt.Sprintf("token %q is not a recognized amount format", e.Token)
}

// ParseAmount converts a Chilean-locale amount string like "49.640,00" or
// "-17,35" to a float64. An optional "US$" or "$" prefix is stripped first.
func ParseAmount(token string) (float64, error) {
	s := strings.TrimSpace(token)
	s = strings.ReplaceAll(s, "US$", "")
	s = strings.ReplaceAll(s, "$", "")
	if !amountPattern.MatchString(s) {
		return 0, &AmountFormatError{Token: token}
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &AmountFormatError{Token: token}
	}
	return v, nil
}

// IsAmountToken reports whether the token matches the statement amount format.
func IsAmountToken(token string) bool {
	return amountPattern.MatchString(token)
}

// NormalizeDate reorders a DD/MM/YY date into MM/DD/YY. It is a pure field
// swap: components are not range-checked, and a token that does not split
// into three fields is returned unchanged.
func NormalizeDate(ddmmyy string) string {
	parts := strings.Split(ddmmyy, "/")
	if len(parts) != 3 {
		return ddmmyy
	}
	return parts[1] + "/" + parts[0] + "/" + parts[2]
}
