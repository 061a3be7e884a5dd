package writer

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/vsconsulting/cartola-internacional/internal/models"
)

func sampleRecords() []models.TransactionRecord {
	origen := 4500.00
	return []models.TransactionRecord{
		{
			TitularNombre:  "MARIA",
			FechaOperacion: "02/01/24",
			Descripcion:    "COFFEE SHOP",
			Ciudad:         "SANTIAGO",
			Pais:           "CL",
			MontoOrigen:    &origen,
			MontoOperacion: 4.95,
			MontoTotal:     4.95,
			ArchivoOrigen:  "BCI_INT_MARIA_LOPEZ_05-03-2024",
		},
		{
			FechaOperacion: "02/03/24",
			Descripcion:    "PAGO, CON COMA",
			MontoOperacion: 12.99,
			MontoTotal:     12.99,
			ArchivoOrigen:  "a.pdf",
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, sampleRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "TITULAR_NOMBRE" || rows[0][len(rows[0])-1] != "CONCILIADO" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[1] != "02/01/24" || first[2] != "COFFEE SHOP" || first[6] != "4500.00" || first[8] != "4.95" {
		t.Errorf("unexpected first row: %v", first)
	}

	second := rows[2]
	if second[2] != "PAGO, CON COMA" {
		t.Errorf("comma in description must survive quoting, got %q", second[2])
	}
	if second[6] != "" {
		t.Errorf("missing monto origen should render empty, got %q", second[6])
	}
	if second[10] != "0" || second[12] != "0" {
		t.Errorf("workflow flags should default to 0: %v", second)
	}
}

func TestWriteWithoutHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	if err := w.Write(&buf, sampleRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 data rows, got %d", len(lines))
	}
	if strings.Contains(lines[0], "TITULAR_NOMBRE") {
		t.Error("header row should be absent")
	}
}

func TestWriteStored(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}

	stored := []models.StoredRecord{
		{ID: 7, TransactionRecord: sampleRecords()[0]},
	}
	if err := w.WriteStored(&buf, stored); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if rows[0][0] != "ID" {
		t.Errorf("stored header should start with ID, got %v", rows[0])
	}
	if rows[1][0] != "7" {
		t.Errorf("row id: got %q, want 7", rows[1][0])
	}
}
