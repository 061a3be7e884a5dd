// Package api exposes the extraction engine and record store over HTTP.
package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vsconsulting/cartola-internacional/internal/cartola"
	"github.com/vsconsulting/cartola-internacional/internal/ingest"
	"github.com/vsconsulting/cartola-internacional/internal/models"
	"github.com/vsconsulting/cartola-internacional/internal/pdftext"
	"github.com/vsconsulting/cartola-internacional/internal/store"
	"github.com/vsconsulting/cartola-internacional/internal/writer"
)

// PageSource turns an uploaded PDF into per-page text. It exists so tests
// can exercise the handlers without real PDFs.
type PageSource func(filePath string) ([]string, error)

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Store  *store.Store
	Ingest *ingest.Service
	Pages  PageSource
	Log    zerolog.Logger
}

// New creates a Handler backed by the given store, using the PDF page-text
// provider as the page source.
func New(st *store.Store, log zerolog.Logger) *Handler {
	return &Handler{
		Store:  st,
		Ingest: ingest.NewService(st, log),
		Pages:  pdftext.Pages,
		Log:    log,
	}
}

// Register sets up the HTTP routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/extract", h.HandleExtract)
	app.Get("/api/records", h.HandleRecords)
	app.Post("/api/records/update", h.HandleUpdate)
	app.Post("/api/records/kame", h.HandleKame)
	app.Get("/api/export.csv", h.HandleExport)
}

// ExtractResponse is the JSON response from the /api/extract endpoint.
type ExtractResponse struct {
	Success bool                       `json:"success"`
	Error   string                     `json:"error,omitempty"`
	Records []models.TransactionRecord `json:"records"`
	Count   int                        `json:"count"`
	Ingest  *ingest.Result             `json:"ingest,omitempty"`
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"engine": "fiber",
	})
}

// HandleExtract accepts a multipart PDF upload (form field "file"), extracts
// its records, and returns them as JSON. With form field "persist=true" the
// records are also ingested into the store; "exclude" carries a
// comma-separated list of description terms to drop before persisting.
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "no file uploaded; use form field 'file'")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return apiError(c, fiber.StatusBadRequest, "only PDF files are supported")
	}

	tmp, err := os.CreateTemp("", "cartola-*.pdf")
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "cannot buffer upload")
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "cannot save upload")
	}

	pages, err := h.Pages(tmpPath)
	if err != nil {
		return apiError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("text extraction failed: %v", err))
	}

	sourceLabel := filepath.Base(fileHeader.Filename)
	records, err := cartola.Extract(pages, sourceLabel)
	if err != nil {
		return apiError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	resp := ExtractResponse{
		Success: true,
		Records: records,
		Count:   len(records),
	}

	if c.FormValue("persist") == "true" {
		if h.Store == nil {
			return apiError(c, fiber.StatusBadRequest, "no database configured")
		}
		terms := splitTerms(c.FormValue("exclude"))
		res, err := h.Ingest.IngestFile(c.Context(), sourceLabel, records, terms)
		if err != nil {
			return apiError(c, fiber.StatusInternalServerError, err.Error())
		}
		resp.Ingest = &res
	}

	h.Log.Info().Str("file", sourceLabel).Int("records", len(records)).Msg("extract request served")
	return c.JSON(resp)
}

func (h *Handler) HandleRecords(c *fiber.Ctx) error {
	if h.Store == nil {
		return apiError(c, fiber.StatusBadRequest, "no database configured")
	}
	records, err := h.Store.FetchAll(c.Context())
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"records": records,
		"count":   len(records),
	})
}

func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	if h.Store == nil {
		return apiError(c, fiber.StatusBadRequest, "no database configured")
	}
	var updates []store.WorkflowUpdate
	if err := c.BodyParser(&updates); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid update payload")
	}
	if err := h.Store.UpdateWorkflow(c.Context(), updates); err != nil {
		return apiError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "updated": len(updates)})
}

func (h *Handler) HandleKame(c *fiber.Ctx) error {
	if h.Store == nil {
		return apiError(c, fiber.StatusBadRequest, "no database configured")
	}
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.BodyParser(&body); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid kame payload")
	}
	if err := h.Store.MarkKame(c.Context(), body.IDs); err != nil {
		return apiError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "moved": len(body.IDs)})
}

func (h *Handler) HandleExport(c *fiber.Ctx) error {
	if h.Store == nil {
		return apiError(c, fiber.StatusBadRequest, "no database configured")
	}
	records, err := h.Store.FetchAll(c.Context())
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, err.Error())
	}

	var sb strings.Builder
	w := &writer.CSVWriter{IncludeHeader: true}
	if err := w.WriteStored(&sb, records); err != nil {
		return apiError(c, fiber.StatusInternalServerError, err.Error())
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="transacciones_internacional.csv"`)
	return c.SendString(sb.String())
}

func apiError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

func splitTerms(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			terms = append(terms, p)
		}
	}
	return terms
}
