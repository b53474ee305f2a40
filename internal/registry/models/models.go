// Package models defines the data shapes of the certificate registry. Records
// are value types; the store layer owns the only mutable copies.
package models

import "time"

// Identity is an opaque, equality-comparable principal. Resolution of a caller
// to an Identity happens at the transport boundary, never in the core.
type Identity string

// Recipient identifies who a certificate was issued to. Immutable once
// embedded in a record.
type Recipient struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

// CertificateRecord is one issued credential, keyed by its content checksum.
type CertificateRecord struct {
	Checksum                 string    `json:"checksum"`
	Recipient                Recipient `json:"recipient"`
	IssueDate                time.Time `json:"issue_date"`
	ExpireDate               time.Time `json:"expire_date"`
	Issuer                   Identity  `json:"issuer"`
	CertName                 string    `json:"cert_name"`
	IssuerIdentificationName string    `json:"issuer_identification_name"`
}

// CertificateRequest carries the caller-supplied fields of one issuance
// attempt. IssueDate, ExpireDate and Issuer are set by the registry, not the
// caller.
type CertificateRequest struct {
	Checksum                 string    `json:"checksum"`
	Recipient                Recipient `json:"recipient"`
	DaysValid                int       `json:"days_valid"`
	CertName                 string    `json:"cert_name"`
	IssuerIdentificationName string    `json:"issuer_identification_name"`
}

// DayValidity is the nominal length of one validity day. The registry extends
// expiry by calendar days, which on a UTC clock is the same thing; the
// constant exists so fixtures can spell durations in days.
const DayValidity = 24 * time.Hour
