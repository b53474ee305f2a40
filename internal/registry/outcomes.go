package registry

import (
	"context"
	"log/slog"

	"certledger/internal/audit"
	"certledger/internal/registry/models"
)

// OutcomeStatus distinguishes the two results of an issuance attempt.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusFailed  OutcomeStatus = "failed"
)

// Outcome is the structured result of one issuance attempt. Every call to
// AddCertificate and every bulk item produces exactly one, in attempt order.
type Outcome struct {
	Status                   OutcomeStatus `json:"status"`
	Checksum                 string        `json:"checksum"`
	RecipientName            string        `json:"recipient_name,omitempty"`
	RecipientSurname         string        `json:"recipient_surname,omitempty"`
	IssuerIdentificationName string        `json:"issuer_identification_name,omitempty"`
	Reason                   string        `json:"reason,omitempty"`
}

// Sink observes issuance outcomes. It is invoked synchronously, under the
// registry's exclusion domain, so sinks see outcomes in the exact order the
// mutations took effect. Implementations must not call back into the registry.
type Sink interface {
	Emit(ctx context.Context, outcome Outcome)
}

func successOutcome(record *models.CertificateRecord) Outcome {
	return Outcome{
		Status:                   StatusSuccess,
		Checksum:                 record.Checksum,
		RecipientName:            record.Recipient.Name,
		RecipientSurname:         record.Recipient.Surname,
		IssuerIdentificationName: record.IssuerIdentificationName,
	}
}

func failureOutcome(checksum string, err error) Outcome {
	return Outcome{
		Status:   StatusFailed,
		Checksum: checksum,
		Reason:   err.Error(),
	}
}

// NopSink discards outcomes. Default when no sink is wired.
type NopSink struct{}

func (NopSink) Emit(context.Context, Outcome) {}

// LogSink writes each outcome as a structured log line.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Emit(ctx context.Context, outcome Outcome) {
	if outcome.Status == StatusSuccess {
		s.Logger.InfoContext(ctx, "certificate issued",
			"checksum", outcome.Checksum,
			"recipient_name", outcome.RecipientName,
			"recipient_surname", outcome.RecipientSurname,
			"issuer_identification_name", outcome.IssuerIdentificationName,
		)
		return
	}
	s.Logger.WarnContext(ctx, "issuance rejected",
		"checksum", outcome.Checksum,
		"reason", outcome.Reason,
	)
}

// AuditSink forwards outcomes to the audit trail.
type AuditSink struct {
	Publisher *audit.Publisher
	Caller    func(ctx context.Context) models.Identity
}

func (s AuditSink) Emit(ctx context.Context, outcome Outcome) {
	event := audit.Event{
		Action:   audit.EventCertificateIssued,
		Checksum: outcome.Checksum,
	}
	if outcome.Status == StatusFailed {
		event.Action = audit.EventIssuanceRejected
		event.Reason = outcome.Reason
	}
	if s.Caller != nil {
		event.Actor = s.Caller(ctx)
	}
	// Audit failures must not fail the issuance that already happened.
	_ = s.Publisher.Emit(ctx, event)
}

// MultiSink fans one outcome out to several sinks in order.
type MultiSink []Sink

func (s MultiSink) Emit(ctx context.Context, outcome Outcome) {
	for _, sink := range s {
		sink.Emit(ctx, outcome)
	}
}
