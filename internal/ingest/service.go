// Package ingest applies the persistence policy around extraction: a source
// file is ingested at most once, description exclusions are applied before
// anything is written, and a file producing zero records is never marked as
// processed so a fixed statement can be retried.
package ingest

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vsconsulting/cartola-internacional/internal/models"
)

// Store is the subset of the persistence layer ingest needs.
type Store interface {
	IsFileProcessed(ctx context.Context, filename string) (bool, error)
	MarkFileProcessed(ctx context.Context, filename string) error
	InsertRecords(ctx context.Context, records []models.TransactionRecord) (int, error)
}

// Service coordinates one-file-at-a-time ingestion.
type Service struct {
	store Store
	log   zerolog.Logger
}

// NewService creates an ingest Service writing through the given store.
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log}
}

// Result describes what happened to one source file.
type Result struct {
	Filename string `json:"filename"`
	Inserted int    `json:"inserted"`
	Skipped  bool   `json:"skipped"`
	Reason   string `json:"reason,omitempty"`
}

// IngestFile persists the records extracted from one source file.
// Already-processed files and files yielding no records after exclusion are
// skipped; only a successful non-empty insert marks the file as processed.
func (s *Service) IngestFile(ctx context.Context, filename string, records []models.TransactionRecord, excludeTerms []string) (Result, error) {
	res := Result{Filename: filename}

	processed, err := s.store.IsFileProcessed(ctx, filename)
	if err != nil {
		return res, err
	}
	if processed {
		res.Skipped = true
		res.Reason = "already processed"
		s.log.Info().Str("file", filename).Msg("skipping already-processed file")
		return res, nil
	}

	records = FilterExcluded(records, excludeTerms)
	if len(records) == 0 {
		res.Skipped = true
		res.Reason = "no records extracted"
		s.log.Warn().Str("file", filename).Msg("no records extracted; file not marked as processed")
		return res, nil
	}

	n, err := s.store.InsertRecords(ctx, records)
	if err != nil {
		return res, err
	}
	if err := s.store.MarkFileProcessed(ctx, filename); err != nil {
		return res, err
	}

	res.Inserted = n
	s.log.Info().Str("file", filename).Int("records", n).Msg("file ingested")
	return res, nil
}

// FilterExcluded drops records whose description contains any of the terms,
// case-insensitively. An empty term list keeps everything.
func FilterExcluded(records []models.TransactionRecord, terms []string) []models.TransactionRecord {
	var cleaned []string
	for _, t := range terms {
		if t = strings.TrimSpace(strings.ToLower(t)); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return records
	}

	out := records[:0:0]
	for _, r := range records {
		desc := strings.ToLower(r.Descripcion)
		excluded := false
		for _, t := range cleaned {
			if strings.Contains(desc, t) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, r)
		}
	}
	return out
}
