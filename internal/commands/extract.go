package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vsconsulting/cartola-internacional/internal/cartola"
	"github.com/vsconsulting/cartola-internacional/internal/ingest"
	"github.com/vsconsulting/cartola-internacional/internal/models"
	"github.com/vsconsulting/cartola-internacional/internal/pdftext"
	"github.com/vsconsulting/cartola-internacional/internal/writer"
)

func newExtractCommand(newLogger func() zerolog.Logger) *cobra.Command {
	var (
		output  string
		exclude string
		noHead  bool
	)

	cmd := &cobra.Command{
		Use:   "extract <statement.pdf> [more.pdf ...]",
		Short: "Extract records from statement PDFs and write them as CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			var all []models.TransactionRecord
			for _, path := range args {
				records, err := extractFile(path, log)
				if err != nil {
					return err
				}
				all = append(all, records...)
			}

			all = ingest.FilterExcluded(all, splitTerms(exclude))
			if len(all) == 0 {
				log.Warn().Msg("no records extracted")
			}

			w := &writer.CSVWriter{IncludeHeader: !noHead}
			if output == "" {
				return w.Write(cmd.OutOrStdout(), all)
			}
			if err := w.WriteToFile(output, all); err != nil {
				return err
			}
			log.Info().Str("output", output).Int("records", len(all)).Msg("CSV written")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV path (stdout if omitted)")
	cmd.Flags().StringVar(&exclude, "exclude", "", "comma-separated description terms to drop")
	cmd.Flags().BoolVar(&noHead, "no-header", false, "omit the CSV header row")

	return cmd
}

func extractFile(path string, log zerolog.Logger) ([]models.TransactionRecord, error) {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return nil, fmt.Errorf("expected a .pdf file, got %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("input file %q: %w", path, err)
	}

	pages, err := pdftext.Pages(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	records, err := cartola.Extract(pages, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	log.Info().Str("file", path).Int("pages", len(pages)).Int("records", len(records)).Msg("statement extracted")
	return records, nil
}

func splitTerms(raw string) []string {
	var terms []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			terms = append(terms, p)
		}
	}
	return terms
}
