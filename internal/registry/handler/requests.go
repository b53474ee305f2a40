package handler

import (
	"certledger/internal/registry/models"
	dErrors "certledger/pkg/domain-errors"
)

// AddCertificateRequest is the body of POST /certificates. Field-level rules
// (empty checksum, empty recipient fields, days_valid >= 1) are deliberately
// not checked here: the registry pipeline owns them and their precedence.
type AddCertificateRequest struct {
	Checksum                 string           `json:"checksum"`
	Recipient                models.Recipient `json:"recipient"`
	DaysValid                int              `json:"days_valid"`
	CertName                 string           `json:"cert_name"`
	IssuerIdentificationName string           `json:"issuer_identification_name"`
}

func (r AddCertificateRequest) Validate() error {
	return nil
}

func (r AddCertificateRequest) toModel() models.CertificateRequest {
	return models.CertificateRequest{
		Checksum:                 r.Checksum,
		Recipient:                r.Recipient,
		DaysValid:                r.DaysValid,
		CertName:                 r.CertName,
		IssuerIdentificationName: r.IssuerIdentificationName,
	}
}

// BulkUploadRequest is the body of POST /certificates/bulk.
type BulkUploadRequest struct {
	Items []AddCertificateRequest `json:"items"`
}

func (r BulkUploadRequest) Validate() error {
	if r.Items == nil {
		return dErrors.New(dErrors.CodeBadRequest, "items is required")
	}
	return nil
}

func (r BulkUploadRequest) toModels() []models.CertificateRequest {
	items := make([]models.CertificateRequest, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, item.toModel())
	}
	return items
}

// RoleRequest is the body of the role-granting endpoints.
type RoleRequest struct {
	Identity string `json:"identity"`
}

func (r RoleRequest) Validate() error {
	if r.Identity == "" {
		return dErrors.New(dErrors.CodeBadRequest, "identity is required")
	}
	return nil
}
