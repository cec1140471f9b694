package reconcile

import (
	"encoding/json"
	"fmt"
)

// DocumentType identifies the kind of freight document a record came from.
type DocumentType string

const (
	DocDeliveryNote  DocumentType = "delivery_note"
	DocLoadingList   DocumentType = "loading_list"
	DocPalletReceipt DocumentType = "pallet_receipt"
	DocGoodsReceipt  DocumentType = "goods_receipt"
	DocUnknown       DocumentType = "unknown"
)

var documentTypes = []DocumentType{
	DocDeliveryNote,
	DocLoadingList,
	DocPalletReceipt,
	DocGoodsReceipt,
	DocUnknown,
}

// DocumentTypes returns every known document type.
func DocumentTypes() []DocumentType {
	return documentTypes
}

// ParseDocumentType maps a raw tag onto a DocumentType, falling back to
// DocUnknown.
func ParseDocumentType(s string) DocumentType {
	for _, t := range documentTypes {
		if string(t) == s {
			return t
		}
	}
	return DocUnknown
}

// Role is the function a stop plays in the delivery.
type Role string

const (
	RolePickup   Role = "pickup"
	RoleDelivery Role = "delivery"
	RoleHandoff  Role = "handoff"
)

// ParseRole validates a role string. Empty and unrecognized values return "".
func ParseRole(s string) Role {
	switch Role(s) {
	case RolePickup, RoleDelivery, RoleHandoff:
		return Role(s)
	}
	return ""
}

// Tri is a tri-state boolean. The zero value is TriUnknown.
type Tri int8

const (
	TriUnknown Tri = iota
	TriTrue
	TriFalse
)

// TriOf converts a bool into a definite Tri.
func TriOf(b bool) Tri {
	if b {
		return TriTrue
	}
	return TriFalse
}

// Or resolves two assertions: true when either is true, false only when
// both are false, unknown otherwise.
func (t Tri) Or(other Tri) Tri {
	switch {
	case t == TriTrue || other == TriTrue:
		return TriTrue
	case t == TriFalse && other == TriFalse:
		return TriFalse
	default:
		return TriUnknown
	}
}

func (t Tri) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes unknown as null.
func (t Tri) MarshalJSON() ([]byte, error) {
	switch t {
	case TriTrue:
		return []byte("true"), nil
	case TriFalse:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false, or null.
func (t *Tri) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("tri-state: %w", err)
	}
	if b == nil {
		*t = TriUnknown
		return nil
	}
	*t = TriOf(*b)
	return nil
}

// Signatures records which parties signed the document at a stop.
type Signatures struct {
	Driver   bool `json:"driver"`
	Customer bool `json:"customer"`
}

// Or combines signature evidence pairwise.
func (s Signatures) Or(other Signatures) Signatures {
	return Signatures{
		Driver:   s.Driver || other.Driver,
		Customer: s.Customer || other.Customer,
	}
}

// Voucher describes a DPL (deposit pallet ledger) credit note issued when
// pallets were not physically exchanged.
type Voucher struct {
	Issued bool   `json:"issued"`
	Number string `json:"number,omitempty"`
}

// Viewpoint names whose perspective a record's given/received fields use.
type Viewpoint string

const (
	ViewpointAuthor  Viewpoint = ""
	ViewpointCarrier Viewpoint = "carrier"
)

// StopRecord is a single stop as read from one source page or page group.
// Records are values: every transformation returns a new record.
type StopRecord struct {
	Role               Role         `json:"role,omitempty"`
	LocationName       string       `json:"location_name,omitempty"`
	LocationAddress    string       `json:"location_address,omitempty"`
	Date               string       `json:"date,omitempty"`
	Time               string       `json:"time,omitempty"`
	Received           Movements    `json:"received"`
	Given              Movements    `json:"given"`
	Exchanged          Tri          `json:"exchanged"`
	Signatures         Signatures   `json:"signatures"`
	Notes              []string     `json:"notes,omitempty"`
	Voucher            Voucher      `json:"voucher"`
	SourceDocumentType DocumentType `json:"source_document_type"`
	Confidence         float64      `json:"confidence"`
	Page               int          `json:"page"`
	Viewpoint          Viewpoint    `json:"viewpoint,omitempty"`
}

// invertsPerspective maps each document type to whether its given/received
// language is written from the location's point of view.
var invertsPerspective = map[DocumentType]bool{
	DocPalletReceipt: true,
	DocGoodsReceipt:  true,
	DocLoadingList:   false,
	DocDeliveryNote:  false,
	DocUnknown:       false,
}

// ResolvePerspective returns a copy of rec with given/received expressed
// from the carrier's point of view. Records already in carrier viewpoint
// are rejected with ErrPerspectiveResolved so that no record is inverted
// twice.
func ResolvePerspective(rec StopRecord) (StopRecord, error) {
	if rec.Viewpoint == ViewpointCarrier {
		return rec, ErrPerspectiveResolved
	}

	if invertsPerspective[rec.SourceDocumentType] {
		rec.Received, rec.Given = rec.Given, rec.Received
	}

	rec.Viewpoint = ViewpointCarrier
	return rec, nil
}
