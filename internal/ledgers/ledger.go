// Package ledgers implements the reconciliation domain for Saldo.
// It runs the scan workflow for a document, persists the resulting delivery
// ledger with its saldo rows and validation issues, exports the ledger JSON
// to blob storage, and records the review disposition on the document.
package ledgers

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/saldo/internal/reconcile"
)

// Ledger is a stored delivery ledger. There is at most one per document;
// reconciling a document again replaces it.
type Ledger struct {
	ID                uuid.UUID            `json:"id"`
	DocumentID        uuid.UUID            `json:"document_id"`
	References        reconcile.References `json:"references"`
	Shipper           string               `json:"shipper"`
	Consignee         string               `json:"consignee"`
	Carrier           string               `json:"carrier"`
	VehiclePlate      string               `json:"vehicle_plate"`
	StopCount         int                  `json:"stop_count"`
	PageCount         int                  `json:"page_count"`
	AverageConfidence float64              `json:"average_confidence"`
	ReviewRequired    bool                 `json:"review_required"`
	ReviewReasons     []string             `json:"review_reasons"`
	Warnings          []string             `json:"warnings"`
	Errors            []string             `json:"errors"`
	GapFill           reconcile.GapFill    `json:"gap_fill"`
	TieBreak          bool                 `json:"tie_break"`
	ExportKey         string               `json:"export_key"`
	ReconciledAt      time.Time            `json:"reconciled_at"`
	ApprovedBy        *string              `json:"approved_by"`
	ApprovedAt        *time.Time           `json:"approved_at"`
	Rows              []reconcile.Row      `json:"rows,omitempty"`
	Issues            []Issue              `json:"issues,omitempty"`
}

// Issue is a validation issue raised for one pallet type of a ledger.
type Issue struct {
	PalletType reconcile.PalletType `json:"pallet_type"`
	reconcile.Issue
}

// Export is the ledger JSON written to blob storage for downstream reporting.
type Export struct {
	DocumentID   uuid.UUID             `json:"document_id"`
	Filename     string                `json:"filename"`
	ReconciledAt time.Time             `json:"reconciled_at"`
	Ledger       reconcile.Ledger      `json:"ledger"`
	Rows         []reconcile.Row       `json:"rows"`
	Validations  []reconcile.Result    `json:"validations"`
	Disposition  reconcile.Disposition `json:"disposition"`
}

// ApproveCommand records the reviewer who signed off a ledger.
type ApproveCommand struct {
	ApprovedBy string `json:"approved_by"`
}

// BatchCommand lists the documents to reconcile in one request.
type BatchCommand struct {
	DocumentIDs []uuid.UUID `json:"document_ids"`
}

// Failure reports a document whose reconciliation could not complete.
type Failure struct {
	DocumentID uuid.UUID `json:"document_id"`
	Error      string    `json:"error"`
}

// BatchResult holds the ledgers produced by a batch and the documents that
// failed. A failure never prevents the other documents from completing.
type BatchResult struct {
	Ledgers  []Ledger  `json:"ledgers"`
	Failures []Failure `json:"failures"`
}

func issuesOf(outcome reconcile.Outcome) []Issue {
	var out []Issue
	for _, v := range outcome.Validations {
		for _, i := range v.Issues {
			out = append(out, Issue{PalletType: v.Original.PalletType, Issue: i})
		}
	}
	return out
}
