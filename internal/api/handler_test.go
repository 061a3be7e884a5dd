package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsconsulting/cartola-internacional/internal/store"
)

const statementText = `NOMBRE DEL TITULAR
MARIA LOPEZ
N° DE TARJETA 1234 XXXX XXXX 5678
FECHA ESTADO DE CUENTA 05/03/2024
2. INFORMACION DE TRANSACCIONES
01/02/24 COFFEE SHOP SANTIAGO CL 4.500,00 4,95
TOTAL TARJETA Nº XXXX-1234 4,95`

func setupTestApp(t *testing.T) (*fiber.App, *Handler) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := New(st, zerolog.Nop())
	h.Pages = func(string) ([]string, error) {
		return []string{statementText}, nil
	}

	app := fiber.New()
	h.Register(app)
	return app, h
}

func multipartPDF(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "cartola.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 stub"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, "fiber", result["engine"])
}

func TestExtractEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	body, contentType := multipartPDF(t, nil)
	req := httptest.NewRequest("POST", "/api/extract", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result ExtractResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	require.Equal(t, 1, result.Count)

	r := result.Records[0]
	assert.Equal(t, "MARIA", r.TitularNombre)
	assert.Equal(t, "02/01/24", r.FechaOperacion)
	assert.Equal(t, "CL", r.Pais)
	assert.Equal(t, 4.95, r.MontoTotal)
	assert.Equal(t, "BCI_INT_MARIA_LOPEZ_05-03-2024", r.ArchivoOrigen)
	assert.Nil(t, result.Ingest)
}

func TestExtractEndpointRequiresFile(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/api/extract", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=----test")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExtractEndpointPersists(t *testing.T) {
	app, h := setupTestApp(t)

	body, contentType := multipartPDF(t, map[string]string{"persist": "true"})
	req := httptest.NewRequest("POST", "/api/extract", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result ExtractResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotNil(t, result.Ingest)
	assert.Equal(t, 1, result.Ingest.Inserted)
	assert.False(t, result.Ingest.Skipped)

	// Same upload again: the file is already processed.
	body, contentType = multipartPDF(t, map[string]string{"persist": "true"})
	req = httptest.NewRequest("POST", "/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	resp, err = app.Test(req)
	require.NoError(t, err)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotNil(t, result.Ingest)
	assert.True(t, result.Ingest.Skipped)

	got, err := h.Store.FetchAll(req.Context())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWorkflowRoundTrip(t *testing.T) {
	app, _ := setupTestApp(t)

	// Ingest one record.
	body, contentType := multipartPDF(t, map[string]string{"persist": "true"})
	req := httptest.NewRequest("POST", "/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	_, err := app.Test(req)
	require.NoError(t, err)

	// Fetch it back with its id.
	resp, err := app.Test(httptest.NewRequest("GET", "/api/records", nil))
	require.NoError(t, err)

	var listing struct {
		Records []struct {
			ID int64 `json:"id"`
		} `json:"records"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Len(t, listing.Records, 1)
	id := listing.Records[0].ID

	// Mark it reconciled with a tipo_gasto.
	payload, _ := json.Marshal([]store.WorkflowUpdate{{ID: id, TipoGasto: "comida", Conciliado: true}})
	req = httptest.NewRequest("POST", "/api/records/update", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Move it to Kame.
	payload, _ = json.Marshal(map[string][]int64{"ids": {id}})
	req = httptest.NewRequest("POST", "/api/records/kame", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Export includes the moved record.
	resp, err = app.Test(httptest.NewRequest("GET", "/api/export.csv", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	csvBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(csvBody), "COFFEE SHOP")
	assert.Contains(t, string(csvBody), "comida")
}

func TestKameRejectsUnreconciled(t *testing.T) {
	app, _ := setupTestApp(t)

	body, contentType := multipartPDF(t, map[string]string{"persist": "true"})
	req := httptest.NewRequest("POST", "/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	_, err := app.Test(req)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/records", nil))
	require.NoError(t, err)
	var listing struct {
		Records []struct {
			ID int64 `json:"id"`
		} `json:"records"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Len(t, listing.Records, 1)

	payload, _ := json.Marshal(map[string][]int64{"ids": {listing.Records[0].ID}})
	req = httptest.NewRequest("POST", "/api/records/kame", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
