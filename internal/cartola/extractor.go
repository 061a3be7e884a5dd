// Package cartola extracts structured transaction records from the
// linearized page text of BCI international credit-card statements.
//
// The statement interleaves transaction rows with section headers, repeated
// column captions, and per-card totals, and its rows have no reliable column
// boundaries. Extraction is a single pass: a section state machine routes
// lines, a token-based field extractor recovers each row, and a natural-key
// fold removes rows duplicated across page breaks. The package holds no
// state between calls and is safe for concurrent use.
package cartola

import (
	"fmt"
	"strings"

	"github.com/vsconsulting/cartola-internacional/internal/models"
)

// DocumentParseError reports that a statement's page text could not be
// processed at all. Per-line problems never produce it; they drop the line.
type DocumentParseError struct {
	Source string
	Err    error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("cannot parse document %q: %v", e.Source, e.Err)
}

func (e *DocumentParseError) Unwrap() error { return e.Err }

// Extract parses the statement whose page texts are given in page order and
// returns the deduplicated transaction records. sourceLabel identifies the
// source file and is used as the document identifier when the statement
// header cannot be recovered.
//
// An empty result with a nil error means nothing recognizable was found;
// callers deciding whether to mark the source as processed should treat it
// as "not ingested".
func Extract(pages []string, sourceLabel string) ([]models.TransactionRecord, error) {
	if pages == nil {
		return nil, &DocumentParseError{Source: sourceLabel, Err: fmt.Errorf("no page text")}
	}

	header := ExtractHeader(strings.Join(pages, "\n"))
	docID := DocumentID(sourceLabel, header)

	var records []models.TransactionRecord
	state := stateHeader

	for _, page := range pages {
		for _, raw := range strings.Split(page, "\n") {
			line := strings.Join(strings.Fields(raw), " ")
			if line == "" {
				continue
			}

			var offer bool
			state, offer = state.next(line)
			if !offer {
				continue
			}

			rec := parseTransactionLine(line)
			if rec == nil {
				continue
			}
			rec.TitularNombre = header.TitularNombre
			rec.ArchivoOrigen = docID
			records = append(records, *rec)
		}
	}

	return deduplicate(records), nil
}
