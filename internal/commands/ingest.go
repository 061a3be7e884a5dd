package commands

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vsconsulting/cartola-internacional/internal/ingest"
	"github.com/vsconsulting/cartola-internacional/internal/store"
)

func newIngestCommand(newLogger func() zerolog.Logger) *cobra.Command {
	var (
		dbPath  string
		exclude string
	)

	cmd := &cobra.Command{
		Use:   "ingest <statement.pdf> [more.pdf ...]",
		Short: "Extract statement PDFs and persist the records",
		Long: `Extract statement PDFs and persist the records.

Each file is ingested at most once, keyed by filename. A file that yields
no records is not marked as processed, so it can be retried after a fix.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			svc := ingest.NewService(st, log)
			terms := splitTerms(exclude)

			ingested, skipped := 0, 0
			for _, path := range args {
				records, err := extractFile(path, log)
				if err != nil {
					log.Error().Err(err).Str("file", path).Msg("extraction failed; file not marked as processed")
					skipped++
					continue
				}

				res, err := svc.IngestFile(cmd.Context(), filepath.Base(path), records, terms)
				if err != nil {
					return err
				}
				if res.Skipped {
					skipped++
				} else {
					ingested++
				}
			}

			log.Info().Int("ingested", ingested).Int("skipped", skipped).Msg("done")
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "cartolas_bci_internacional.db", "SQLite database path")
	cmd.Flags().StringVar(&exclude, "exclude", "", "comma-separated description terms to drop")

	return cmd
}
