// Package store persists extracted transaction records and their review
// workflow state in SQLite. The extraction engine never calls this package;
// the CLI and HTTP surfaces wire the two together.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vsconsulting/cartola-internacional/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS transacciones (
    titular_nombre    TEXT,
    fecha_operacion   TEXT,
    descripcion       TEXT,
    ciudad            TEXT,
    pais              TEXT,
    ref_internacional TEXT,
    monto_origen      REAL,
    monto_operacion   REAL,
    monto_total       REAL,
    tipo_gasto        TEXT,
    fact_kame         INTEGER DEFAULT 0,
    archivo_origen    TEXT,
    conciliado        INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS archivos_procesados (
    nombre           TEXT PRIMARY KEY,
    fecha_procesado  TEXT DEFAULT (datetime('now'))
);
`

// Store wraps the SQLite database holding records and processed-file
// bookkeeping.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertRecords appends a batch of extracted records. It returns the number
// of rows written. Inserting an empty batch is a no-op.
func (s *Store) InsertRecords(ctx context.Context, records []models.TransactionRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transacciones (
			titular_nombre, fecha_operacion, descripcion, ciudad, pais,
			ref_internacional, monto_origen, monto_operacion, monto_total,
			tipo_gasto, fact_kame, archivo_origen, conciliado
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var origen any
		if r.MontoOrigen != nil {
			origen = *r.MontoOrigen
		}
		if _, err := stmt.ExecContext(ctx,
			r.TitularNombre, r.FechaOperacion, r.Descripcion, r.Ciudad, r.Pais,
			r.RefInt, origen, r.MontoOperacion, r.MontoTotal,
			r.TipoGasto, boolToInt(r.FactKame), r.ArchivoOrigen, boolToInt(r.Conciliado),
		); err != nil {
			return 0, fmt.Errorf("insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return len(records), nil
}

// IsFileProcessed reports whether the source file was already ingested.
func (s *Store) IsFileProcessed(ctx context.Context, filename string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM archivos_procesados WHERE nombre = ? LIMIT 1`, filename).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query processed file: %w", err)
	}
	return true, nil
}

// MarkFileProcessed records the source file as ingested. Marking the same
// file twice is harmless.
func (s *Store) MarkFileProcessed(ctx context.Context, filename string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO archivos_procesados (nombre) VALUES (?)`, filename)
	if err != nil {
		return fmt.Errorf("mark file processed: %w", err)
	}
	return nil
}

// FetchAll returns every stored record with its stable row identifier.
func (s *Store) FetchAll(ctx context.Context) ([]models.StoredRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rowid, titular_nombre, fecha_operacion, descripcion, ciudad, pais,
		       ref_internacional, monto_origen, monto_operacion, monto_total,
		       tipo_gasto, fact_kame, archivo_origen, conciliado
		FROM transacciones
		ORDER BY fecha_operacion, monto_total DESC, rowid`)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	defer rows.Close()

	var out []models.StoredRecord
	for rows.Next() {
		var r models.StoredRecord
		var origen sql.NullFloat64
		var factKame, conciliado int
		if err := rows.Scan(
			&r.ID, &r.TitularNombre, &r.FechaOperacion, &r.Descripcion, &r.Ciudad, &r.Pais,
			&r.RefInt, &origen, &r.MontoOperacion, &r.MontoTotal,
			&r.TipoGasto, &factKame, &r.ArchivoOrigen, &conciliado,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if origen.Valid {
			v := origen.Float64
			r.MontoOrigen = &v
		}
		r.FactKame = factKame != 0
		r.Conciliado = conciliado != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// WorkflowUpdate carries the mutable review fields for one stored record.
type WorkflowUpdate struct {
	ID         int64  `json:"id"`
	TipoGasto  string `json:"tipoGasto"`
	Conciliado bool   `json:"conciliado"`
}

// UpdateWorkflow sets tipo_gasto and conciliado on the given rows. An
// unknown tipo_gasto value is rejected before anything is written.
func (s *Store) UpdateWorkflow(ctx context.Context, updates []WorkflowUpdate) error {
	for _, u := range updates {
		if !models.ValidTipoGasto(u.TipoGasto) {
			return fmt.Errorf("unknown tipo_gasto %q for record %d", u.TipoGasto, u.ID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		if _, err := tx.ExecContext(ctx,
			`UPDATE transacciones SET tipo_gasto = ?, conciliado = ? WHERE rowid = ?`,
			u.TipoGasto, boolToInt(u.Conciliado), u.ID,
		); err != nil {
			return fmt.Errorf("update record %d: %w", u.ID, err)
		}
	}
	return tx.Commit()
}

// MarkKame flags the given rows as pushed to the external accounting system.
// A row may only move when it is reconciled and has a tipo_gasto assigned.
func (s *Store) MarkKame(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark kame: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		var conciliado int
		var tipoGasto string
		err := tx.QueryRowContext(ctx,
			`SELECT conciliado, tipo_gasto FROM transacciones WHERE rowid = ?`, id).
			Scan(&conciliado, &tipoGasto)
		if err == sql.ErrNoRows {
			return fmt.Errorf("record %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("check record %d: %w", id, err)
		}
		if conciliado == 0 || tipoGasto == "" {
			return fmt.Errorf("record %d is not ready for Kame (needs conciliado and tipo_gasto)", id)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE transacciones SET fact_kame = 1 WHERE rowid = ?`, id); err != nil {
			return fmt.Errorf("mark record %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// Reset deletes all records and processed-file entries.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transacciones`); err != nil {
		return fmt.Errorf("reset records: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM archivos_procesados`); err != nil {
		return fmt.Errorf("reset processed files: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
