package commands

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vsconsulting/cartola-internacional/internal/api"
	"github.com/vsconsulting/cartola-internacional/internal/store"
)

func newServeCommand(newLogger func() zerolog.Logger) *cobra.Command {
	var (
		addr   string
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for uploads, review workflow, and export",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			app := fiber.New(fiber.Config{
				AppName:   "cartola-internacional",
				BodyLimit: 32 << 20, // statement PDFs are small; 32MB is generous
			})
			api.New(st, log).Register(app)

			log.Info().Str("addr", addr).Str("db", dbPath).Msg("listening")
			return app.Listen(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&dbPath, "db", "cartolas_bci_internacional.db", "SQLite database path")

	return cmd
}
