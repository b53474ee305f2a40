package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"certledger/internal/importer"
	"certledger/internal/platform/middleware"
	"certledger/internal/registry"
	"certledger/internal/registry/models"
	"certledger/internal/render"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/platform/httputil"
)

// maxUploadBytes bounds the multipart form kept in memory.
const maxUploadBytes = 10 << 20

// Registrar is the slice of the registry service the import flow needs.
type Registrar interface {
	BulkUpload(ctx context.Context, caller models.Identity, items []models.CertificateRequest) []registry.Outcome
}

// Handler accepts CSV uploads, renders certificate documents and registers
// them as a batch.
type Handler struct {
	registrar Registrar
	renderer  *render.Renderer
	logger    *slog.Logger
	now       func() time.Time
}

// New constructs an import handler.
func New(registrar Registrar, renderer *render.Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		registrar: registrar,
		renderer:  renderer,
		logger:    logger,
		now:       time.Now,
	}
}

// Register mounts the import routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/certificates/import", h.handleImport)
	r.Post("/certificates/generate", h.handleGenerate)
}

// handleImport parses a CSV upload and returns the rows it would register,
// without touching the registry. Used to preview a batch before generating.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.parseUpload(w, r)
	if !ok {
		return
	}

	type preview struct {
		CertName       string `json:"cert_name"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		Email          string `json:"email"`
		ExpirationDate string `json:"expiration_date"`
		DaysValid      int    `json:"days_valid"`
	}
	now := h.now()
	previews := make([]preview, 0, len(rows))
	for _, row := range rows {
		previews = append(previews, preview{
			CertName:       row.CertName,
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			Email:          row.Email,
			ExpirationDate: row.ExpirationDate.Format("2006-01-02"),
			DaysValid:      row.DaysValid(now),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"rows": previews})
}

// handleGenerate renders a certificate document per CSV row, registers the
// batch under the caller and responds with a zip of the documents plus an
// outcomes.json manifest. Per-row registration failures do not fail the
// request; they are visible in the manifest.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller := models.Identity(middleware.GetCaller(ctx))
	if caller == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "identity context error"))
		return
	}

	rows, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	issuerName := r.FormValue("issuer_name")
	if issuerName == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "issuer_name is required"))
		return
	}

	docs, err := h.renderer.RenderAll(ctx, rows, issuerName)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to render certificates",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render certificates"))
		return
	}

	now := h.now()
	items := make([]models.CertificateRequest, 0, len(docs))
	for _, doc := range docs {
		items = append(items, models.CertificateRequest{
			Checksum:                 doc.Checksum,
			Recipient:                doc.Row.Recipient(),
			DaysValid:                doc.Row.DaysValid(now),
			CertName:                 doc.Row.CertName,
			IssuerIdentificationName: issuerName,
		})
	}
	outcomes := h.registrar.BulkUpload(ctx, caller, items)

	// Only registered documents make it into the archive.
	registered := make([]render.Document, 0, len(docs))
	for i, outcome := range outcomes {
		if outcome.Status == registry.StatusSuccess {
			registered = append(registered, docs[i])
		}
	}
	manifest, err := json.Marshal(map[string]any{"outcomes": outcomes})
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode outcomes"))
		return
	}
	archive, err := render.Zip(registered, map[string][]byte{"outcomes.json": manifest})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to package certificates",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to package certificates"))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="generated_files.zip"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(archive); err != nil {
		h.logger.ErrorContext(ctx, "failed to write archive response",
			"request_id", requestID,
			"error", err.Error(),
		)
	}
}

func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request) ([]importer.Row, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file is required"))
		return nil, false
	}
	defer file.Close()

	rows, err := importer.Parse(file)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid csv: %v", err)))
		return nil, false
	}
	return rows, true
}
