package cartola

import (
	"regexp"
	"strings"

	"github.com/vsconsulting/cartola-internacional/internal/models"
)

// Header anchors printed once per statement.
var (
	titularPattern     = regexp.MustCompile(`(?s)NOMBRE DEL TITULAR\s+([A-ZÁÉÍÓÚÑ ]+)\s+N° DE TARJETA`)
	fechaEstadoPattern = regexp.MustCompile(`FECHA ESTADO DE CUENTA\s+(\d{2}/\d{2}/\d{4})`)
)

// ExtractHeader scans the joined document text for the cardholder name and
// the statement date. Either may be missing independently; a zero-value
// field is not an error.
func ExtractHeader(fullText string) models.HeaderInfo {
	var info models.HeaderInfo

	if m := titularPattern.FindStringSubmatch(fullText); m != nil {
		full := strings.Join(strings.Fields(m[1]), " ")
		info.TitularCompleto = full
		if full != "" {
			info.TitularNombre = strings.Fields(full)[0]
		}
	}

	if m := fechaEstadoPattern.FindStringSubmatch(fullText); m != nil {
		info.FechaEstado = m[1]
	}

	return info
}

// DocumentID derives the stored document identifier. When both header fields
// were recovered it is "BCI_INT_<name>_<date>" with spaces and slashes made
// filename-safe; otherwise the raw source label is used as-is.
func DocumentID(sourceLabel string, header models.HeaderInfo) string {
	if header.TitularCompleto != "" && header.FechaEstado != "" {
		name := strings.Join(strings.Fields(header.TitularCompleto), "_")
		date := strings.ReplaceAll(header.FechaEstado, "/", "-")
		return "BCI_INT_" + name + "_" + date
	}
	return sourceLabel
}
