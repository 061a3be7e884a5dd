package ingest

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsconsulting/cartola-internacional/internal/models"
)

type fakeStore struct {
	processed map[string]bool
	inserted  []models.TransactionRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{processed: make(map[string]bool)}
}

func (f *fakeStore) IsFileProcessed(_ context.Context, filename string) (bool, error) {
	return f.processed[filename], nil
}

func (f *fakeStore) MarkFileProcessed(_ context.Context, filename string) error {
	f.processed[filename] = true
	return nil
}

func (f *fakeStore) InsertRecords(_ context.Context, records []models.TransactionRecord) (int, error) {
	f.inserted = append(f.inserted, records...)
	return len(records), nil
}

func record(desc string) models.TransactionRecord {
	return models.TransactionRecord{
		FechaOperacion: "02/01/24",
		Descripcion:    desc,
		MontoOperacion: 4.95,
		MontoTotal:     4.95,
		ArchivoOrigen:  "a.pdf",
	}
}

func TestIngestFile(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st, zerolog.Nop())

	res, err := svc.IngestFile(context.Background(), "a.pdf", []models.TransactionRecord{record("COFFEE SHOP")}, nil)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 1, res.Inserted)
	assert.True(t, st.processed["a.pdf"])
	assert.Len(t, st.inserted, 1)
}

func TestIngestFileSkipsProcessed(t *testing.T) {
	st := newFakeStore()
	st.processed["a.pdf"] = true
	svc := NewService(st, zerolog.Nop())

	res, err := svc.IngestFile(context.Background(), "a.pdf", []models.TransactionRecord{record("COFFEE SHOP")}, nil)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "already processed", res.Reason)
	assert.Empty(t, st.inserted)
}

func TestIngestFileEmptyDoesNotMarkProcessed(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st, zerolog.Nop())

	res, err := svc.IngestFile(context.Background(), "a.pdf", nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.False(t, st.processed["a.pdf"], "empty extraction must not mark the file as processed")
}

func TestIngestFileExclusionCanEmptyTheBatch(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st, zerolog.Nop())

	records := []models.TransactionRecord{record("PAGO TARJETA")}
	res, err := svc.IngestFile(context.Background(), "a.pdf", records, []string{"pago"})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.False(t, st.processed["a.pdf"])
}

func TestFilterExcluded(t *testing.T) {
	records := []models.TransactionRecord{
		record("COFFEE SHOP"),
		record("PAGO AUTOMATICO"),
		record("ABONO INTERESES"),
	}

	got := FilterExcluded(records, []string{"pago", " abono "})
	require.Len(t, got, 1)
	assert.Equal(t, "COFFEE SHOP", got[0].Descripcion)

	assert.Len(t, FilterExcluded(records, nil), 3)
	assert.Len(t, FilterExcluded(records, []string{"", "  "}), 3)
}
