package extraction

import (
	"strings"

	"github.com/JaimeStill/saldo/internal/reconcile"
)

type palletLine struct {
	Type         flexString `json:"type"`
	Quantity     flexInt    `json:"quantity"`
	Damaged      flexInt    `json:"damaged"`
	QualityGrade flexString `json:"quality_grade"`
}

func movements(lines []palletLine) reconcile.Movements {
	var out reconcile.Movements
	for _, l := range lines {
		out = append(out, reconcile.Movement{
			Type:         reconcile.NormalizePalletType(l.Type.String()),
			Quantity:     int(l.Quantity),
			Damaged:      int(l.Damaged),
			QualityGrade: grade(l.QualityGrade.String()),
		})
	}
	return out
}

func grade(s string) reconcile.QualityGrade {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a":
		return reconcile.GradeA
	case "b":
		return reconcile.GradeB
	case "mixed", "gemischt", "a/b":
		return reconcile.GradeMixed
	default:
		return ""
	}
}

type signatures struct {
	Driver   flexBool `json:"driver"`
	Customer flexBool `json:"customer"`
}

func (s signatures) value() reconcile.Signatures {
	return reconcile.Signatures{Driver: s.Driver.bool(), Customer: s.Customer.bool()}
}

type voucher struct {
	Issued flexBool   `json:"issued"`
	Number flexString `json:"number"`
}

func (v voucher) value() reconcile.Voucher {
	// A printed voucher number is evidence of issue even when the flag is
	// missing.
	return reconcile.Voucher{
		Issued: v.Issued.bool() || v.Number != "",
		Number: v.Number.String(),
	}
}

// partyFields are the reference and party keys shared by every schema.
type partyFields struct {
	OrderNumber      flexString `json:"order_number"`
	DeliveryNumber   flexString `json:"delivery_number"`
	TourNumber       flexString `json:"tour_number"`
	Shipper          flexString `json:"shipper"`
	Consignee        flexString `json:"consignee"`
	ConsigneeAddress flexString `json:"consignee_address"`
	Carrier          flexString `json:"carrier"`
	VehiclePlate     flexString `json:"vehicle_plate"`
	DriverName       flexString `json:"driver_name"`
}

func (p partyFields) references() reconcile.References {
	return reconcile.References{
		OrderNumber:    p.OrderNumber.String(),
		DeliveryNumber: p.DeliveryNumber.String(),
		TourNumber:     p.TourNumber.String(),
	}
}

func (p partyFields) parties() reconcile.Parties {
	return reconcile.Parties{
		Shipper:          p.Shipper.String(),
		Consignee:        p.Consignee.String(),
		ConsigneeAddress: p.ConsigneeAddress.String(),
		Carrier:          p.Carrier.String(),
		VehiclePlate:     p.VehiclePlate.String(),
		DriverName:       p.DriverName.String(),
	}
}

func notes(list flexList[flexString]) []string {
	var out []string
	for _, n := range list {
		if n != "" {
			out = append(out, n.String())
		}
	}
	return out
}

// documentAliases maps document labels the oracle tends to return onto
// document types.
var documentAliases = map[string]reconcile.DocumentType{
	"lieferschein":             reconcile.DocDeliveryNote,
	"delivery note":            reconcile.DocDeliveryNote,
	"ladeliste":                reconcile.DocLoadingList,
	"beladeliste":              reconcile.DocLoadingList,
	"loading list":             reconcile.DocLoadingList,
	"palettenschein":           reconcile.DocPalletReceipt,
	"palettentauschschein":     reconcile.DocPalletReceipt,
	"paletten-tauschbeleg":     reconcile.DocPalletReceipt,
	"pallet receipt":           reconcile.DocPalletReceipt,
	"wareneingang":             reconcile.DocGoodsReceipt,
	"wareneingangsbestätigung": reconcile.DocGoodsReceipt,
	"goods receipt":            reconcile.DocGoodsReceipt,
}

// ParseDocumentType resolves a raw document label, accepting canonical tags
// and common German names.
func ParseDocumentType(label string) reconcile.DocumentType {
	key := strings.ToLower(strings.TrimSpace(label))
	if t := reconcile.ParseDocumentType(key); t != reconcile.DocUnknown {
		return t
	}
	if t, ok := documentAliases[key]; ok {
		return t
	}
	if t := reconcile.ParseDocumentType(strings.ReplaceAll(key, " ", "_")); t != reconcile.DocUnknown {
		return t
	}
	return reconcile.DocUnknown
}
