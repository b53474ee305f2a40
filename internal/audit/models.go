package audit

import (
	"time"

	"certledger/internal/registry/models"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	// Actor performed the action; for issuance this is the issuer.
	Actor models.Identity
	// Target is the identity acted upon for role changes, empty otherwise.
	Target models.Identity
	Action AuditEvent
	// Checksum identifies the certificate for issuance/invalidation events.
	Checksum string
	// Reason carries the rejection reason for failed attempts.
	Reason string
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string
}

type AuditEvent string

const (
	// Certificate events
	EventCertificateIssued      AuditEvent = "certificate_issued"
	EventIssuanceRejected       AuditEvent = "issuance_rejected"
	EventCertificateInvalidated AuditEvent = "certificate_invalidated"

	// Role events
	EventAdminAdded           AuditEvent = "admin_added"
	EventAdminRemoved         AuditEvent = "admin_removed"
	EventTrustedIssuerAdded   AuditEvent = "trusted_issuer_added"
	EventTrustedIssuerRemoved AuditEvent = "trusted_issuer_removed"
)
