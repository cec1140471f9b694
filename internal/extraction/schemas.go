package extraction

import "github.com/JaimeStill/saldo/internal/reconcile"

// deliveryNote is a Lieferschein. It never describes a stop; it carries
// references, parties, and the shipped pallet counts.
type deliveryNote struct {
	partyFields
	Date       flexString           `json:"date"`
	Pallets    flexList[palletLine] `json:"pallets"`
	Notes      flexList[flexString] `json:"notes"`
	Confidence flexConfidence       `json:"confidence"`
}

func (d deliveryNote) extraction() reconcile.Extraction {
	return reconcile.Extraction{
		DocumentType: reconcile.DocDeliveryNote,
		References:   d.references(),
		Parties:      d.parties(),
		Declared:     movements(d.Pallets),
		Confidence:   float64(d.Confidence),
	}
}

// loadingList is a Ladeliste written from the carrier's point of view:
// loaded pallets were received by the carrier, returned pallets were given.
type loadingList struct {
	partyFields
	LoadingLocation flexString           `json:"loading_location"`
	LoadingAddress  flexString           `json:"loading_address"`
	Date            flexString           `json:"date"`
	Time            flexString           `json:"time"`
	Loaded          flexList[palletLine] `json:"loaded"`
	Returned        flexList[palletLine] `json:"returned"`
	TotalPallets    flexInt              `json:"total_pallets"`
	PalletType      flexString           `json:"pallet_type"`
	Exchanged       flexTri              `json:"exchanged"`
	Signatures      lenient[signatures]  `json:"signatures"`
	Voucher         lenient[voucher]     `json:"dpl_voucher"`
	Saldo           flexSaldo            `json:"saldo"`
	Notes           flexList[flexString] `json:"notes"`
	Confidence      flexConfidence       `json:"confidence"`
}

func (l loadingList) extraction() reconcile.Extraction {
	loaded := movements(l.Loaded)
	returned := movements(l.Returned)

	ex := reconcile.Extraction{
		DocumentType:  reconcile.DocLoadingList,
		References:    l.references(),
		Parties:       l.parties(),
		ReportedSaldo: l.Saldo.resolve(loaded, returned),
		Confidence:    float64(l.Confidence),
	}

	if l.LoadingLocation == "" && len(loaded) == 0 && len(returned) == 0 {
		// Only a total is known: declared counts without a locatable stop.
		if l.TotalPallets != 0 {
			ex.Declared = reconcile.Movements{{
				Type:     reconcile.NormalizePalletType(l.PalletType.String()),
				Quantity: int(l.TotalPallets),
			}}
		}
		return ex
	}

	if len(loaded) == 0 && l.TotalPallets != 0 {
		loaded = reconcile.Movements{{
			Type:     reconcile.NormalizePalletType(l.PalletType.String()),
			Quantity: int(l.TotalPallets),
		}}
	}

	ex.Records = []reconcile.StopRecord{{
		Role:               reconcile.RolePickup,
		LocationName:       l.LoadingLocation.String(),
		LocationAddress:    l.LoadingAddress.String(),
		Date:               l.Date.String(),
		Time:               l.Time.String(),
		Received:           loaded,
		Given:              returned,
		Exchanged:          l.Exchanged.tri(),
		Signatures:         l.Signatures.get().value(),
		Notes:              notes(l.Notes),
		Voucher:            l.Voucher.get().value(),
		SourceDocumentType: reconcile.DocLoadingList,
		Confidence:         float64(l.Confidence),
	}}
	return ex
}

// palletReceipt is a pallet-exchange receipt signed at a stop. Given and
// received are stated from the location's point of view.
type palletReceipt struct {
	partyFields
	LocationName    flexString           `json:"location_name"`
	LocationAddress flexString           `json:"location_address"`
	Role            flexString           `json:"role"`
	Date            flexString           `json:"date"`
	Time            flexString           `json:"time"`
	Given           flexList[palletLine] `json:"given"`
	Received        flexList[palletLine] `json:"received"`
	Exchanged       flexTri              `json:"exchanged"`
	Signatures      lenient[signatures]  `json:"signatures"`
	Voucher         lenient[voucher]     `json:"dpl_voucher"`
	Saldo           flexSaldo            `json:"saldo"`
	Notes           flexList[flexString] `json:"notes"`
	Confidence      flexConfidence       `json:"confidence"`
}

func (p palletReceipt) extraction() reconcile.Extraction {
	given := movements(p.Given)
	received := movements(p.Received)

	return reconcile.Extraction{
		DocumentType:  reconcile.DocPalletReceipt,
		References:    p.references(),
		Parties:       p.parties(),
		ReportedSaldo: p.Saldo.resolve(given, received),
		Confidence:    float64(p.Confidence),
		Records: []reconcile.StopRecord{{
			Role:               reconcile.ParseRole(p.Role.String()),
			LocationName:       p.LocationName.String(),
			LocationAddress:    p.LocationAddress.String(),
			Date:               p.Date.String(),
			Time:               p.Time.String(),
			Received:           received,
			Given:              given,
			Exchanged:          p.Exchanged.tri(),
			Signatures:         p.Signatures.get().value(),
			Notes:              notes(p.Notes),
			Voucher:            p.Voucher.get().value(),
			SourceDocumentType: reconcile.DocPalletReceipt,
			Confidence:         float64(p.Confidence),
		}},
	}
}

// goodsReceipt is a Wareneingangsbestätigung issued by the consignee.
// Received pallets were received by the consignee, returned pallets were
// handed back to the carrier. The consignee is always the delivery stop.
type goodsReceipt struct {
	partyFields
	Date            flexString           `json:"date"`
	Time            flexString           `json:"time"`
	PalletsReceived flexList[palletLine] `json:"pallets_received"`
	PalletsReturned flexList[palletLine] `json:"pallets_returned"`
	Exchanged       flexTri              `json:"exchanged"`
	Signatures      lenient[signatures]  `json:"signatures"`
	Voucher         lenient[voucher]     `json:"dpl_voucher"`
	Notes           flexList[flexString] `json:"notes"`
	Confidence      flexConfidence       `json:"confidence"`
}

func (g goodsReceipt) extraction() reconcile.Extraction {
	return reconcile.Extraction{
		DocumentType: reconcile.DocGoodsReceipt,
		References:   g.references(),
		Parties:      g.parties(),
		Confidence:   float64(g.Confidence),
		Records: []reconcile.StopRecord{{
			Role:               reconcile.RoleDelivery,
			LocationName:       g.Consignee.String(),
			LocationAddress:    g.ConsigneeAddress.String(),
			Date:               g.Date.String(),
			Time:               g.Time.String(),
			Received:           movements(g.PalletsReceived),
			Given:              movements(g.PalletsReturned),
			Exchanged:          g.Exchanged.tri(),
			Signatures:         g.Signatures.get().value(),
			Notes:              notes(g.Notes),
			Voucher:            g.Voucher.get().value(),
			SourceDocumentType: reconcile.DocGoodsReceipt,
			Confidence:         float64(g.Confidence),
		}},
	}
}

// legacyPallet is one row of the first-generation flat schema.
type legacyPallet struct {
	Type     flexString `json:"type"`
	Given    flexInt    `json:"given"`
	Received flexInt    `json:"received"`
	Damaged  flexInt    `json:"damaged"`
}

// legacy is the first-generation flat page schema shared by every
// document type. Given and received follow the document's own perspective.
type legacy struct {
	partyFields
	DocumentType      flexString             `json:"document_type"`
	Location          flexString             `json:"location"`
	Address           flexString             `json:"address"`
	Date              flexString             `json:"date"`
	Time              flexString             `json:"time"`
	Pallets           flexList[legacyPallet] `json:"pallets"`
	Exchanged         flexTri                `json:"exchanged"`
	SignatureDriver   flexBool               `json:"signature_driver"`
	SignatureCustomer flexBool               `json:"signature_customer"`
	DPL               flexBool               `json:"dpl"`
	DPLNumber         flexString             `json:"dpl_number"`
	Saldo             flexSaldo              `json:"saldo"`
	Notes             flexString             `json:"notes"`
	Confidence        flexConfidence         `json:"confidence"`
}

func (l legacy) extraction(docType reconcile.DocumentType) reconcile.Extraction {
	var given, received reconcile.Movements
	for _, p := range l.Pallets {
		t := reconcile.NormalizePalletType(p.Type.String())
		if p.Given != 0 {
			given = append(given, reconcile.Movement{Type: t, Quantity: int(p.Given)})
		}
		if p.Received != 0 {
			received = append(received, reconcile.Movement{
				Type:     t,
				Quantity: int(p.Received),
				Damaged:  int(p.Damaged),
			})
		}
	}

	ex := reconcile.Extraction{
		DocumentType:  docType,
		References:    l.references(),
		Parties:       l.parties(),
		ReportedSaldo: l.Saldo.resolve(given, received),
		Confidence:    float64(l.Confidence),
	}

	if docType == reconcile.DocDeliveryNote {
		ex.Declared = given
		if len(ex.Declared) == 0 {
			ex.Declared = received
		}
		return ex
	}

	var ns []string
	if l.Notes != "" {
		ns = []string{l.Notes.String()}
	}

	ex.Records = []reconcile.StopRecord{{
		LocationName:    l.Location.String(),
		LocationAddress: l.Address.String(),
		Date:            l.Date.String(),
		Time:            l.Time.String(),
		Received:        received,
		Given:           given,
		Exchanged:       l.Exchanged.tri(),
		Signatures: reconcile.Signatures{
			Driver:   l.SignatureDriver.bool(),
			Customer: l.SignatureCustomer.bool(),
		},
		Notes: ns,
		Voucher: reconcile.Voucher{
			Issued: l.DPL.bool() || l.DPLNumber != "",
			Number: l.DPLNumber.String(),
		},
		SourceDocumentType: docType,
		Confidence:         float64(l.Confidence),
	}}
	return ex
}
