package ledgers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/pkg/query"
	"github.com/JaimeStill/saldo/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "ledgers", "l").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("order_number", "OrderNumber").
	Project("delivery_number", "DeliveryNumber").
	Project("tour_number", "TourNumber").
	Project("shipper", "Shipper").
	Project("consignee", "Consignee").
	Project("carrier", "Carrier").
	Project("vehicle_plate", "VehiclePlate").
	Project("stop_count", "StopCount").
	Project("page_count", "PageCount").
	Project("average_confidence", "AverageConfidence").
	Project("review_required", "ReviewRequired").
	Project("review_reasons", "ReviewReasons").
	Project("warnings", "Warnings").
	Project("errors", "Errors").
	Project("gap_fill", "GapFill").
	Project("tie_break", "TieBreak").
	Project("export_key", "ExportKey").
	Project("reconciled_at", "ReconciledAt").
	Project("approved_by", "ApprovedBy").
	Project("approved_at", "ApprovedAt")

var defaultSort = query.SortField{
	Field:      "ReconciledAt",
	Descending: true,
}

var rowProjection = query.
	NewProjectionMap("public", "ledger_rows", "r").
	Project("ledger_id", "LedgerID").
	Project("pallet_type", "PalletType").
	Project("pickup_received", "PickupReceived").
	Project("pickup_given", "PickupGiven").
	Project("delivery_given", "DeliveryGiven").
	Project("delivery_received", "DeliveryReceived").
	Project("saldo", "Saldo")

var rowSort = query.SortField{Field: "r.position"}

var issueProjection = query.
	NewProjectionMap("public", "ledger_issues", "i").
	Project("pallet_type", "PalletType").
	Project("check_name", "Check").
	Project("severity", "Severity").
	Project("message", "Message").
	Project("corrected", "Corrected")

var issueSort = query.SortField{Field: "i.position"}

// Filters contains optional filtering criteria for ledger queries.
// Nil fields are ignored. Carrier, Consignee and DeliveryNumber use
// case-insensitive contains matching; the confidence bounds are inclusive;
// the rest match exactly.
type Filters struct {
	DocumentID     *uuid.UUID `json:"document_id,omitempty"`
	Carrier        *string    `json:"carrier,omitempty"`
	Consignee      *string    `json:"consignee,omitempty"`
	DeliveryNumber *string    `json:"delivery_number,omitempty"`
	ReviewRequired *bool      `json:"review_required,omitempty"`
	ApprovedBy     *string    `json:"approved_by,omitempty"`
	MinConfidence  *float64   `json:"min_confidence,omitempty"`
	MaxConfidence  *float64   `json:"max_confidence,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereContains("Carrier", f.Carrier).
		WhereContains("Consignee", f.Consignee).
		WhereContains("DeliveryNumber", f.DeliveryNumber).
		WhereEquals("ReviewRequired", f.ReviewRequired).
		WhereEquals("ApprovedBy", f.ApprovedBy).
		WhereRange("AverageConfidence", f.MinConfidence, f.MaxConfidence)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if d := values.Get("document_id"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			f.DocumentID = &id
		}
	}
	if c := values.Get("carrier"); c != "" {
		f.Carrier = &c
	}
	if c := values.Get("consignee"); c != "" {
		f.Consignee = &c
	}
	if d := values.Get("delivery_number"); d != "" {
		f.DeliveryNumber = &d
	}
	if rr := values.Get("review_required"); rr != "" {
		if v, err := strconv.ParseBool(rr); err == nil {
			f.ReviewRequired = &v
		}
	}
	if a := values.Get("approved_by"); a != "" {
		f.ApprovedBy = &a
	}
	f.MinConfidence = parseConfidence(values.Get("min_confidence"))
	f.MaxConfidence = parseConfidence(values.Get("max_confidence"))

	return f
}

func parseConfidence(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 1 {
		return nil
	}
	return &v
}

func scanLedger(s repository.Scanner) (Ledger, error) {
	var l Ledger
	var reasonsRaw, warningsRaw, errorsRaw []byte

	err := s.Scan(
		&l.ID,
		&l.DocumentID,
		&l.References.OrderNumber,
		&l.References.DeliveryNumber,
		&l.References.TourNumber,
		&l.Shipper,
		&l.Consignee,
		&l.Carrier,
		&l.VehiclePlate,
		&l.StopCount,
		&l.PageCount,
		&l.AverageConfidence,
		&l.ReviewRequired,
		&reasonsRaw,
		&warningsRaw,
		&errorsRaw,
		&l.GapFill,
		&l.TieBreak,
		&l.ExportKey,
		&l.ReconciledAt,
		&l.ApprovedBy,
		&l.ApprovedAt,
	)
	if err != nil {
		return l, err
	}

	if l.ReviewReasons, err = unmarshalStrings("review_reasons", reasonsRaw); err != nil {
		return l, err
	}
	if l.Warnings, err = unmarshalStrings("warnings", warningsRaw); err != nil {
		return l, err
	}
	if l.Errors, err = unmarshalStrings("errors", errorsRaw); err != nil {
		return l, err
	}

	return l, nil
}

type ledgerRow struct {
	LedgerID uuid.UUID
	reconcile.Row
}

func scanRow(s repository.Scanner) (ledgerRow, error) {
	var r ledgerRow
	err := s.Scan(
		&r.LedgerID,
		&r.PalletType,
		&r.PickupReceived,
		&r.PickupGiven,
		&r.DeliveryGiven,
		&r.DeliveryReceived,
		&r.Saldo,
	)
	return r, err
}

func scanIssue(s repository.Scanner) (Issue, error) {
	var i Issue
	err := s.Scan(
		&i.PalletType,
		&i.Check,
		&i.Severity,
		&i.Message,
		&i.Corrected,
	)
	return i, err
}

func unmarshalStrings(column string, raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", column, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func marshalStrings(values []string) []byte {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return data
}
