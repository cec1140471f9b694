package reconcile

import (
	"fmt"
	"slices"
)

// References are the business identifiers tying documents to one delivery.
type References struct {
	OrderNumber    string `json:"order_number,omitempty"`
	DeliveryNumber string `json:"delivery_number,omitempty"`
	TourNumber     string `json:"tour_number,omitempty"`
}

func (r References) merge(o References) References {
	return References{
		OrderNumber:    firstNonEmpty(r.OrderNumber, o.OrderNumber),
		DeliveryNumber: firstNonEmpty(r.DeliveryNumber, o.DeliveryNumber),
		TourNumber:     firstNonEmpty(r.TourNumber, o.TourNumber),
	}
}

// Parties names the organizations and people involved in a delivery.
type Parties struct {
	Shipper          string `json:"shipper,omitempty"`
	Consignee        string `json:"consignee,omitempty"`
	ConsigneeAddress string `json:"consignee_address,omitempty"`
	Carrier          string `json:"carrier,omitempty"`
	VehiclePlate     string `json:"vehicle_plate,omitempty"`
	DriverName       string `json:"driver_name,omitempty"`
}

func (p Parties) merge(o Parties) Parties {
	return Parties{
		Shipper:          firstNonEmpty(p.Shipper, o.Shipper),
		Consignee:        firstNonEmpty(p.Consignee, o.Consignee),
		ConsigneeAddress: firstNonEmpty(p.ConsigneeAddress, o.ConsigneeAddress),
		Carrier:          firstNonEmpty(p.Carrier, o.Carrier),
		VehiclePlate:     firstNonEmpty(p.VehiclePlate, o.VehiclePlate),
		DriverName:       firstNonEmpty(p.DriverName, o.DriverName),
	}
}

// Extraction is the canonical result of interpreting one page or page group.
type Extraction struct {
	Page         int          `json:"page"`
	Pages        []int        `json:"pages,omitempty"`
	DocumentType DocumentType `json:"document_type"`
	References   References   `json:"references"`
	Parties      Parties      `json:"parties"`
	Records      []StopRecord `json:"records"`
	// Declared holds pallet counts stated without a locatable stop, such as
	// loading-list totals.
	Declared Movements `json:"declared"`
	// ReportedSaldo holds balances printed on the document per pallet type.
	ReportedSaldo map[PalletType]int `json:"reported_saldo,omitempty"`
	Confidence    float64            `json:"confidence"`
	Warnings      []string           `json:"warnings,omitempty"`
	// Failed marks a page group the oracle could not interpret. Only its
	// warnings are carried into the ledger.
	Failed bool `json:"failed,omitempty"`
}

// Ledger is the frozen aggregate of one source file or document group.
type Ledger struct {
	References References `json:"references"`
	Parties
	Stops             []Stop   `json:"stops"`
	Pages             []int    `json:"pages"`
	AverageConfidence float64  `json:"average_confidence"`
	Warnings          []string `json:"warnings"`
	Errors            []string `json:"errors"`
	GapFill           GapFill  `json:"gap_fill,omitempty"`
	TieBreak          bool     `json:"tie_break"`
}

// Outcome is the full result of correlating one ledger.
type Outcome struct {
	Ledger      Ledger      `json:"ledger"`
	Rows        []Row       `json:"rows"`
	Validations []Result    `json:"validations"`
	Disposition Disposition `json:"disposition"`
}

// WarningCount totals ledger and validation warnings.
func (o Outcome) WarningCount() int {
	n := len(o.Ledger.Warnings)
	for _, v := range o.Validations {
		n += len(v.Warnings())
	}
	return n
}

// ErrorCount totals ledger errors and uncorrected validation errors.
func (o Outcome) ErrorCount() int {
	n := len(o.Ledger.Errors)
	for _, v := range o.Validations {
		n += len(v.Unresolved())
	}
	return n
}

// Entries returns the adjusted validation entries in row order.
func (o Outcome) Entries() []Entry {
	entries := make([]Entry, len(o.Validations))
	for i, v := range o.Validations {
		entries[i] = v.Adjusted
	}
	return entries
}

type fold struct {
	references References
	parties    Parties
	stops      []Stop
	pages      []int
	declared   Movements
	reported   map[PalletType]int
	confidence []float64
	warnings   []string
	errors     []string
	tieBreak   bool
}

// Correlate folds page extractions, already in source page order, into one
// ledger. Each record is sanitized, resolved to the carrier's perspective,
// classified and merged; gaps are filled, rows computed, every row
// validated, and the ledger reviewed. Correlate performs no I/O.
func Correlate(extractions []Extraction, cfg Config) Outcome {
	tieBreak := cfg.TieBreak
	if tieBreak == "" {
		tieBreak = RoleDelivery
	}

	f := fold{reported: make(map[PalletType]int)}
	for _, ex := range extractions {
		f.add(ex, tieBreak)
	}

	stops := MergeStops(f.stops)

	stops, gap, warning := FillGaps(stops, f.parties, f.declared)
	if warning != "" {
		f.warnings = append(f.warnings, warning)
	}
	if len(stops) == 0 {
		f.warnings = append(f.warnings, "no usable stops found in any source page")
	}

	ledger := Ledger{
		References:        f.references,
		Parties:           f.parties,
		Stops:             stops,
		Pages:             f.pages,
		AverageConfidence: average(f.confidence),
		Warnings:          f.warnings,
		Errors:            f.errors,
		GapFill:           gap,
		TieBreak:          f.tieBreak,
	}
	if ledger.Stops == nil {
		ledger.Stops = []Stop{}
	}
	if ledger.Warnings == nil {
		ledger.Warnings = []string{}
	}
	if ledger.Errors == nil {
		ledger.Errors = []string{}
	}
	if ledger.Pages == nil {
		ledger.Pages = []int{}
	}

	rows := ComputeRows(stops)
	validations := make([]Result, 0, len(rows))
	for _, e := range buildEntries(rows, stops, f.parties, f.reported) {
		validations = append(validations, Validate(e, cfg))
	}

	out := Outcome{
		Ledger:      ledger,
		Rows:        rows,
		Validations: validations,
	}

	pickupReceived, deliveryGiven := 0, 0
	for _, r := range rows {
		pickupReceived += r.PickupReceived
		deliveryGiven += r.DeliveryGiven
	}

	out.Disposition = Review(ReviewInput{
		Confidence:     ledger.AverageConfidence,
		Errors:         out.ErrorCount(),
		Warnings:       out.WarningCount(),
		PickupReceived: pickupReceived,
		DeliveryGiven:  deliveryGiven,
		TieBreak:       ledger.TieBreak,
	}, cfg.ReviewThreshold)

	return out
}

func (f *fold) add(ex Extraction, tieBreak Role) {
	f.warnings = append(f.warnings, ex.Warnings...)
	if ex.Failed {
		return
	}

	pages := ex.Pages
	if len(pages) == 0 && ex.Page > 0 {
		pages = []int{ex.Page}
	}
	f.pages = unionOrdered(f.pages, pages)

	f.references = f.references.merge(ex.References)
	f.parties = f.parties.merge(ex.Parties)
	f.confidence = append(f.confidence, ex.Confidence)

	declared, negative := sanitize(ex.Declared)
	f.declared = Sum(f.declared, declared)
	f.rejectNegative(ex.Page, "declared", negative)

	for t, v := range ex.ReportedSaldo {
		if _, ok := f.reported[t]; !ok {
			f.reported[t] = v
		}
	}

	for _, rec := range ex.Records {
		f.addRecord(ex, rec, tieBreak)
	}
}

func (f *fold) addRecord(ex Extraction, rec StopRecord, tieBreak Role) {
	if rec.SourceDocumentType == "" {
		rec.SourceDocumentType = ex.DocumentType
	}
	if rec.Page == 0 {
		rec.Page = ex.Page
	}
	if rec.Confidence == 0 {
		rec.Confidence = ex.Confidence
	}

	var negative Movements
	rec.Received, negative = sanitize(rec.Received)
	f.rejectNegative(rec.Page, "received", negative)
	rec.Given, negative = sanitize(rec.Given)
	f.rejectNegative(rec.Page, "given", negative)

	// A record already in carrier viewpoint is used as is.
	if resolved, err := ResolvePerspective(rec); err == nil {
		rec = resolved
	}

	decision := ClassifyRole(rec, tieBreak)
	if decision.Skip {
		return
	}
	if decision.TieBreak {
		f.tieBreak = true
		f.warnings = append(f.warnings, fmt.Sprintf(
			"page %d: equal received and given totals at %q, role %s assigned by tie-break policy",
			rec.Page, rec.LocationName, decision.Role,
		))
	}

	f.stops = append(f.stops, StopFromRecord(rec, decision.Role))
}

func (f *fold) rejectNegative(page int, field string, negative Movements) {
	for _, m := range negative {
		f.errors = append(f.errors, fmt.Sprintf(
			"page %d: %s: negative quantity %d %s discarded",
			page, field, m.Quantity, m.Type,
		))
	}
}

func buildEntries(rows []Row, stops []Stop, parties Parties, reported map[PalletType]int) []Entry {
	carrier := firstNonEmpty(parties.Carrier, parties.VehiclePlate)

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e := Entry{
			PalletType: r.PalletType,
			Pickup:     sideFor(stops, RolePickup, r.PickupReceived, r.PickupGiven, carrier),
			Delivery:   sideFor(stops, RoleDelivery, r.DeliveryReceived, r.DeliveryGiven, carrier),
		}
		if v, ok := reported[r.PalletType]; ok {
			e.Saldo = &v
		}

		var exchanged []Tri
		for _, s := range stops {
			// Synthesized stops carry assumed evidence and never decide the
			// exchange or voucher state.
			if s.Role == RoleHandoff || s.Synthetic {
				continue
			}
			if s.Received.Quantity(r.PalletType) == 0 && s.Given.Quantity(r.PalletType) == 0 {
				continue
			}
			exchanged = append(exchanged, s.Exchanged)
			if s.Voucher.Issued {
				e.DPLIssued = true
				e.DPLNumber = firstNonEmpty(e.DPLNumber, s.Voucher.Number)
			}
		}
		e.Exchanged = foldTri(exchanged)

		entries = append(entries, e)
	}
	return entries
}

func sideFor(stops []Stop, role Role, received, given int, carrier string) Side {
	side := Side{Received: received, Given: given}
	found := false
	for _, s := range stops {
		if s.Role != role {
			continue
		}
		found = true
		side.Date = firstNonEmpty(side.Date, s.Date)
		side.Location = firstNonEmpty(side.Location, s.LocationName)
	}
	if found {
		side.CarrierID = carrier
	}
	return side
}

// foldTri applies the merge rule across many assertions: true when any is
// true, false only when all are false, unknown otherwise.
func foldTri(ts []Tri) Tri {
	if len(ts) == 0 {
		return TriUnknown
	}
	out := ts[0]
	for _, t := range ts[1:] {
		out = out.Or(t)
	}
	return out
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SortedPages returns the ledger's source pages in ascending order.
func (l Ledger) SortedPages() []int {
	pages := slices.Clone(l.Pages)
	slices.Sort(pages)
	return pages
}
