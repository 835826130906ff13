package models

import "strings"

// Role defines the user role
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAgency Role = "agency"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleAgency
}

// AccountStatus is shared by users and agencies
type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusInactive AccountStatus = "inactive"
	StatusPending  AccountStatus = "pending"
)

func (s AccountStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

// ApplicationStatus is the admission decision state of an application
type ApplicationStatus string

const (
	ApplicationPending    ApplicationStatus = "pending"
	ApplicationProcessing ApplicationStatus = "processing"
	ApplicationApproved   ApplicationStatus = "approved"
	ApplicationRejected   ApplicationStatus = "rejected"
)

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationProcessing, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// DocumentStatus is the review state of an uploaded document
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentPending, DocumentApproved, DocumentRejected:
		return true
	}
	return false
}

// PaymentStatus tracks commission settlement
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentCancelled:
		return true
	}
	return false
}

// LeadStatus is the agency-side pipeline stage of a payment record
type LeadStatus string

const (
	LeadApplied           LeadStatus = "applied"
	LeadContacted         LeadStatus = "contacted"
	LeadDocumentsPending  LeadStatus = "documents_pending"
	LeadDocumentsReceived LeadStatus = "documents_received"
	LeadEnrolled          LeadStatus = "enrolled"
	LeadDropped           LeadStatus = "dropped"
)

func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadApplied, LeadContacted, LeadDocumentsPending, LeadDocumentsReceived, LeadEnrolled, LeadDropped:
		return true
	}
	return false
}

// OfflinePaymentStatus is the review state of a bank transfer proof
type OfflinePaymentStatus string

const (
	OfflinePaymentPending  OfflinePaymentStatus = "pending"
	OfflinePaymentVerified OfflinePaymentStatus = "verified"
	OfflinePaymentRejected OfflinePaymentStatus = "rejected"
)

func (s OfflinePaymentStatus) IsValid() bool {
	switch s {
	case OfflinePaymentPending, OfflinePaymentVerified, OfflinePaymentRejected:
		return true
	}
	return false
}

// Normalize lowercases and trims a raw status value from a request
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
