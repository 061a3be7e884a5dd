package models

// TransactionRecord is a single charge extracted from a BCI international
// credit-card statement (cartola). Dates are normalized to MM/DD/YY; amounts
// are in the statement's settlement currency (USD) unless noted.
type TransactionRecord struct {
	TitularNombre  string   `json:"titularNombre,omitempty"` // cardholder first name, from the statement header
	FechaOperacion string   `json:"fechaOperacion"`          // MM/DD/YY
	Descripcion    string   `json:"descripcion"`
	Ciudad         string   `json:"ciudad,omitempty"`
	Pais           string   `json:"pais,omitempty"` // two-letter uppercase code
	RefInt         string   `json:"refInternacional,omitempty"`
	MontoOrigen    *float64 `json:"montoOrigen,omitempty"` // original-currency amount, only on two-amount lines
	MontoOperacion float64  `json:"montoOperacion"`        // settlement amount (USD)
	MontoTotal     float64  `json:"montoTotal"`            // equals MontoOperacion at extraction time
	ArchivoOrigen  string   `json:"archivoOrigen"`

	// Workflow fields, initialized here and owned downstream.
	TipoGasto  string `json:"tipoGasto"`
	FactKame   bool   `json:"factKame"`
	Conciliado bool   `json:"conciliado"`
}

// StoredRecord is a TransactionRecord plus the stable row identifier
// assigned by the store.
type StoredRecord struct {
	ID int64 `json:"id"`
	TransactionRecord
}

// HeaderInfo holds metadata recovered once per statement. Any field may be
// empty; a missing header degrades the derived document identifier to the
// raw source filename but never blocks extraction.
type HeaderInfo struct {
	TitularCompleto string // full cardholder name as printed
	TitularNombre   string // first whitespace-delimited token of the full name
	FechaEstado     string // DD/MM/YYYY statement date
}

// TipoGastoOptions is the expense-type vocabulary accepted on workflow updates.
var TipoGastoOptions = []string{
	"movilizacion",
	"comida",
	"alojamiento",
	"combustible",
	"electronic",
	"libro",
	"otro",
	"Airbnb",
	"Uber",
	"Google Suite",
	"Hubspot",
	"Canva",
	"Shutterstock",
	"Google Ads",
	"Facebook Ads",
}

// ValidTipoGasto reports whether v is empty or one of TipoGastoOptions.
func ValidTipoGasto(v string) bool {
	if v == "" {
		return true
	}
	for _, opt := range TipoGastoOptions {
		if v == opt {
			return true
		}
	}
	return false
}
