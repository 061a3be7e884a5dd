// Package writer renders extracted records as CSV in the column order the
// review workflow expects.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/vsconsulting/cartola-internacional/internal/models"
)

var columns = []string{
	"TITULAR_NOMBRE", "FECHA_OPERACION", "DESCRIPCION", "CIUDAD", "PAIS",
	"REF_INTERNACIONAL", "MONTO_ORIGEN", "MONTO_OPERACION", "MONTO_TOTAL",
	"TIPO_GASTO", "FACT_KAME", "ARCHIVO_ORIGEN", "CONCILIADO",
}

// CSVWriter writes transaction records to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes records to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, records []models.TransactionRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, records)
}

// Write writes records in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, records []models.TransactionRecord) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if w.IncludeHeader {
		if err := cw.Write(columns); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return cw.Error()
}

// WriteStored writes stored records, prefixing each row with its identifier.
func (w *CSVWriter) WriteStored(out io.Writer, records []models.StoredRecord) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if w.IncludeHeader {
		if err := cw.Write(append([]string{"ID"}, columns...)); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, r := range records {
		row := append([]string{strconv.FormatInt(r.ID, 10)}, recordRow(r.TransactionRecord)...)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return cw.Error()
}

func recordRow(r models.TransactionRecord) []string {
	origen := ""
	if r.MontoOrigen != nil {
		origen = formatAmount(*r.MontoOrigen)
	}
	return []string{
		r.TitularNombre,
		r.FechaOperacion,
		r.Descripcion,
		r.Ciudad,
		r.Pais,
		r.RefInt,
		origen,
		formatAmount(r.MontoOperacion),
		formatAmount(r.MontoTotal),
		r.TipoGasto,
		boolFlag(r.FactKame),
		r.ArchivoOrigen,
		boolFlag(r.Conciliado),
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
