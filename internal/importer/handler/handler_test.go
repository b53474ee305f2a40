package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"certledger/internal/platform/middleware"
	"certledger/internal/registry"
	"certledger/internal/registry/roles"
	"certledger/internal/registry/store"
	"certledger/internal/render"
)

const (
	ownerIdentity  = "0xowner"
	issuerIdentity = "0xissuer"
)

const futureCSV = `Name,FirstName,LastName,Email,ExpirationDate
Compiler Design,Grace,Hopper,grace@example.org,2099-06-01
Analytical Engines 101,Ada,Lovelace,ada@example.org,2099-07-15
`

func multipartBody(t *testing.T, csvContent string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "recipients.csv")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(csvContent)); err != nil {
		t.Fatalf("failed to write csv content: %v", err)
	}
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to finalize multipart body: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestImportPreview(t *testing.T) {
	router, _ := newImportRouter(t)

	body, contentType := multipartBody(t, futureCSV, nil)
	req := httptest.NewRequest(http.MethodPost, "/certificates/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Caller-Identity", issuerIdentity)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 previewing import, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Rows []struct {
			CertName  string `json:"cert_name"`
			FirstName string `json:"first_name"`
			DaysValid int    `json:"days_valid"`
		} `json:"rows"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode preview: %v", err)
	}
	if len(resp.Rows) != 2 {
		t.Fatalf("expected 2 preview rows, got %d", len(resp.Rows))
	}
	if resp.Rows[0].FirstName != "Grace" || resp.Rows[1].FirstName != "Ada" {
		t.Fatalf("expected rows in file order, got %+v", resp.Rows)
	}
	if resp.Rows[0].DaysValid < 1 {
		t.Fatalf("expected positive days_valid for a future expiration, got %d", resp.Rows[0].DaysValid)
	}
}

func TestImportRejectsMalformedCSV(t *testing.T) {
	router, _ := newImportRouter(t)

	body, contentType := multipartBody(t, "Name,FirstName\nonly,two\n", nil)
	req := httptest.NewRequest(http.MethodPost, "/certificates/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Caller-Identity", issuerIdentity)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed csv, got %d", rec.Code)
	}
}

func TestImportRequiresFile(t *testing.T) {
	router, _ := newImportRouter(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("issuer_name", "Example Academy"); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to finalize multipart body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/certificates/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Caller-Identity", issuerIdentity)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file part, got %d", rec.Code)
	}
}

func TestGenerateRegistersAndPackages(t *testing.T) {
	router, svc := newImportRouter(t)

	body, contentType := multipartBody(t, futureCSV, map[string]string{"issuer_name": "Example Academy"})
	req := httptest.NewRequest(http.MethodPost, "/certificates/generate", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Caller-Identity", issuerIdentity)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 generating certificates, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/zip" {
		t.Fatalf("expected zip response, got %q", got)
	}

	archive := rec.Body.Bytes()
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	// Two documents plus the manifest.
	if len(reader.File) != 3 {
		t.Fatalf("expected 3 archive entries, got %d", len(reader.File))
	}

	var manifest struct {
		Outcomes []registry.Outcome `json:"outcomes"`
	}
	for _, f := range reader.File {
		if f.Name != "outcomes.json" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open manifest: %v", err)
		}
		raw, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("failed to read manifest: %v", err)
		}
		_ = rc.Close()
		if err := json.Unmarshal(raw, &manifest); err != nil {
			t.Fatalf("failed to decode manifest: %v", err)
		}
	}
	if len(manifest.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes in manifest, got %d", len(manifest.Outcomes))
	}
	for _, outcome := range manifest.Outcomes {
		if outcome.Status != registry.StatusSuccess {
			t.Fatalf("expected success outcome, got %+v", outcome)
		}
	}

	// Registered documents are queryable by their rendered checksums.
	records, err := svc.GetCertificatesIssuedBy(context.Background(), issuerIdentity)
	if err != nil {
		t.Fatalf("failed to list issued certificates: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 registered certificates, got %d", len(records))
	}
}

func TestGenerateUntrustedCallerOmitsDocuments(t *testing.T) {
	router, _ := newImportRouter(t)

	body, contentType := multipartBody(t, futureCSV, map[string]string{"issuer_name": "Example Academy"})
	req := httptest.NewRequest(http.MethodPost, "/certificates/generate", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Caller-Identity", "0xrando")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with failures in manifest, got %d", rec.Code)
	}

	archive := rec.Body.Bytes()
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	// No documents registered, only the manifest.
	if len(reader.File) != 1 || reader.File[0].Name != "outcomes.json" {
		t.Fatalf("expected only outcomes.json in archive, got %d entries", len(reader.File))
	}
}

func TestGenerateRequiresIssuerName(t *testing.T) {
	router, _ := newImportRouter(t)

	body, contentType := multipartBody(t, futureCSV, nil)
	req := httptest.NewRequest(http.MethodPost, "/certificates/generate", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Caller-Identity", issuerIdentity)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without issuer_name, got %d", rec.Code)
	}
}

type rejectAllValidator struct{}

func (rejectAllValidator) ResolveIdentity(string) (string, error) {
	return "", errors.New("invalid token")
}

func newImportRouter(t *testing.T) (http.Handler, *registry.Service) {
	t.Helper()
	manager := roles.New(ownerIdentity)
	if err := manager.AddTrustedIssuer(ownerIdentity, issuerIdentity); err != nil {
		t.Fatalf("failed to seed trusted issuer: %v", err)
	}
	svc, err := registry.New(manager, store.NewMemoryStore())
	if err != nil {
		t.Fatalf("failed to build registry service: %v", err)
	}
	renderer, err := render.New()
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(svc, renderer, logger)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ResolveCaller(rejectAllValidator{}, logger, true))
	h.Register(r)
	return r, svc
}
