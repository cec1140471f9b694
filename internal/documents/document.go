// Package documents implements the scan domain for Saldo.
// It registers uploaded freight scans (PDF or PNG), stores their bytes in
// blob storage, and tracks each scan through reconciliation.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Accepted scan content types.
const (
	ContentTypePDF = "application/pdf"
	ContentTypePNG = "image/png"
)

// Status tracks a scan through reconciliation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReview   Status = "review"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// ParseStatus validates s against the known statuses.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusReview, StatusComplete, StatusFailed:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Document is a registered scan. ReviewRequired and ReconciledAt come from
// the scan's ledger and stay nil until it has been reconciled.
type Document struct {
	ID             uuid.UUID  `json:"id"`
	Filename       string     `json:"filename"`
	ContentType    string     `json:"content_type"`
	SizeBytes      int64      `json:"size_bytes"`
	PageCount      *int       `json:"page_count"`
	StorageKey     string     `json:"storage_key"`
	Reference      *string    `json:"reference"`
	Carrier        *string    `json:"carrier"`
	Status         Status     `json:"status"`
	UploadedAt     time.Time  `json:"uploaded_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ReviewRequired *bool      `json:"review_required"`
	ReconciledAt   *time.Time `json:"reconciled_at"`
}

// CreateCommand carries the data needed to upload and register a new scan.
// Reference and Carrier are optional shipment hints supplied by the uploader.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	Reference   *string
	Carrier     *string
	PageCount   *int
}
