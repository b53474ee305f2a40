package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certledger/internal/platform/middleware"
	"certledger/internal/registry"
	"certledger/internal/registry/models"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/platform/httputil"
)

// Service defines the registry operations the HTTP layer needs.
type Service interface {
	AddCertificate(ctx context.Context, caller models.Identity, req models.CertificateRequest) (*models.CertificateRecord, error)
	BulkUpload(ctx context.Context, caller models.Identity, items []models.CertificateRequest) []registry.Outcome
	Invalidate(ctx context.Context, caller models.Identity, checksum string) error
	GetCertificate(ctx context.Context, checksum string) (*models.CertificateRecord, error)
	GetChecksums(ctx context.Context) ([]string, error)
	GetAllCertificates(ctx context.Context) ([]models.CertificateRecord, error)
	GetCertificatesIssuedBy(ctx context.Context, issuer models.Identity) ([]models.CertificateRecord, error)
	AddAdmin(ctx context.Context, caller, target models.Identity) error
	RemoveAdmin(ctx context.Context, caller, target models.Identity) error
	AddTrustedIssuer(ctx context.Context, caller, target models.Identity) error
	RemoveTrustedIssuer(ctx context.Context, caller, target models.Identity) error
	IsOwner(id models.Identity) bool
	IsAdmin(id models.Identity) bool
	IsTrustedIssuer(id models.Identity) bool
}

// Handler wires certificate and role endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts all registry routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/certificates", h.handleAddCertificate)
	r.Post("/certificates/bulk", h.handleBulkUpload)
	r.Get("/certificates", h.handleListCertificates)
	r.Get("/certificates/{checksum}", h.handleGetCertificate)
	r.Delete("/certificates/{checksum}", h.handleInvalidate)
	r.Get("/checksums", h.handleListChecksums)

	r.Post("/roles/admins", h.handleAddAdmin)
	r.Delete("/roles/admins/{identity}", h.handleRemoveAdmin)
	r.Get("/roles/admins/{identity}", h.handleIsAdmin)
	r.Post("/roles/issuers", h.handleAddTrustedIssuer)
	r.Delete("/roles/issuers/{identity}", h.handleRemoveTrustedIssuer)
	r.Get("/roles/issuers/{identity}", h.handleIsTrustedIssuer)
	r.Get("/roles/owner/{identity}", h.handleIsOwner)
}

// caller extracts the resolved principal the identity middleware stored. The
// middleware rejects unresolved requests, so an empty value is a wiring bug.
func (h *Handler) caller(ctx context.Context, w http.ResponseWriter) (models.Identity, bool) {
	caller := middleware.GetCaller(ctx)
	if caller == "" {
		h.logger.ErrorContext(ctx, "caller identity missing from context despite identity middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "identity context error"))
		return "", false
	}
	return models.Identity(caller), true
}

func (h *Handler) handleAddCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddCertificateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.AddCertificate(ctx, caller, req.toModel())
	if err != nil {
		h.logger.WarnContext(ctx, "issuance rejected",
			"request_id", requestID,
			"caller", string(caller),
			"checksum", req.Checksum,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleBulkUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BulkUploadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcomes := h.service.BulkUpload(ctx, caller, req.toModels())
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}

func (h *Handler) handleListCertificates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		records []models.CertificateRecord
		err     error
	)
	if issuer := r.URL.Query().Get("issuer"); issuer != "" {
		records, err = h.service.GetCertificatesIssuedBy(ctx, models.Identity(issuer))
	} else {
		records, err = h.service.GetAllCertificates(ctx)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"certificates": records})
}

func (h *Handler) handleGetCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checksum := chi.URLParam(r, "checksum")

	record, err := h.service.GetCertificate(ctx, checksum)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if record == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "certificate does not exist"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checksum := chi.URLParam(r, "checksum")

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	if err := h.service.Invalidate(ctx, caller, checksum); err != nil {
		h.logger.WarnContext(ctx, "invalidation rejected",
			"request_id", middleware.GetRequestID(ctx),
			"caller", string(caller),
			"checksum", checksum,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListChecksums(w http.ResponseWriter, r *http.Request) {
	checksums, err := h.service.GetChecksums(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"checksums": checksums})
}

func (h *Handler) handleAddAdmin(w http.ResponseWriter, r *http.Request) {
	h.handleRoleGrant(w, r, h.service.AddAdmin)
}

func (h *Handler) handleAddTrustedIssuer(w http.ResponseWriter, r *http.Request) {
	h.handleRoleGrant(w, r, h.service.AddTrustedIssuer)
}

func (h *Handler) handleRoleGrant(w http.ResponseWriter, r *http.Request, grant func(context.Context, models.Identity, models.Identity) error) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := grant(ctx, caller, models.Identity(req.Identity)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveAdmin(w http.ResponseWriter, r *http.Request) {
	h.handleRoleRevoke(w, r, h.service.RemoveAdmin)
}

func (h *Handler) handleRemoveTrustedIssuer(w http.ResponseWriter, r *http.Request) {
	h.handleRoleRevoke(w, r, h.service.RemoveTrustedIssuer)
}

func (h *Handler) handleRoleRevoke(w http.ResponseWriter, r *http.Request, revoke func(context.Context, models.Identity, models.Identity) error) {
	ctx := r.Context()

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	target := models.Identity(chi.URLParam(r, "identity"))
	if err := revoke(ctx, caller, target); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleIsAdmin(w http.ResponseWriter, r *http.Request) {
	id := models.Identity(chi.URLParam(r, "identity"))
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"is_admin": h.service.IsAdmin(id)})
}

func (h *Handler) handleIsTrustedIssuer(w http.ResponseWriter, r *http.Request) {
	id := models.Identity(chi.URLParam(r, "identity"))
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"is_trusted_issuer": h.service.IsTrustedIssuer(id)})
}

func (h *Handler) handleIsOwner(w http.ResponseWriter, r *http.Request) {
	id := models.Identity(chi.URLParam(r, "identity"))
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"is_owner": h.service.IsOwner(id)})
}
