package reconcile

import (
	"slices"
	"strings"
)

const unknownLocation = "unknown"

// Stop is the canonical, merged view of one physical location in a
// delivery. Identity is (Role, lower-cased trimmed LocationName).
type Stop struct {
	Role            Role           `json:"role"`
	LocationName    string         `json:"location_name"`
	LocationAddress string         `json:"location_address,omitempty"`
	Date            string         `json:"date,omitempty"`
	Time            string         `json:"time,omitempty"`
	Received        Movements      `json:"received"`
	Given           Movements      `json:"given"`
	Exchanged       Tri            `json:"exchanged"`
	Signatures      Signatures     `json:"signatures"`
	Notes           []string       `json:"notes,omitempty"`
	Voucher         Voucher        `json:"voucher"`
	DocumentTypes   []DocumentType `json:"document_types"`
	Pages           []int          `json:"pages"`
	Confidence      float64        `json:"confidence"`
	Sources         int            `json:"sources"`
	Synthetic       bool           `json:"synthetic"`
}

// StopKey is the merge identity of a stop.
type StopKey struct {
	Role     Role
	Location string
}

// KeyFor builds the merge identity for a role and raw location name.
// Missing names collapse into a single "unknown" bucket per role.
func KeyFor(role Role, locationName string) StopKey {
	loc := strings.ToLower(strings.TrimSpace(locationName))
	if loc == "" {
		loc = unknownLocation
	}
	return StopKey{Role: role, Location: loc}
}

// Key returns the stop's merge identity.
func (s Stop) Key() StopKey {
	return KeyFor(s.Role, s.LocationName)
}

// HasMovements reports whether the stop carries any movement evidence.
func (s Stop) HasMovements() bool {
	return len(s.Received) > 0 || len(s.Given) > 0
}

// StopFromRecord lifts a classified record into a single-source stop.
func StopFromRecord(rec StopRecord, role Role) Stop {
	stop := Stop{
		Role:            role,
		LocationName:    strings.TrimSpace(rec.LocationName),
		LocationAddress: rec.LocationAddress,
		Date:            rec.Date,
		Time:            rec.Time,
		Received:        Sum(rec.Received),
		Given:           Sum(rec.Given),
		Exchanged:       rec.Exchanged,
		Signatures:      rec.Signatures,
		Notes:           slices.Clone(rec.Notes),
		Voucher:         rec.Voucher,
		Confidence:      rec.Confidence,
		Sources:         1,
	}
	if rec.SourceDocumentType != "" {
		stop.DocumentTypes = []DocumentType{rec.SourceDocumentType}
	}
	if rec.Page > 0 {
		stop.Pages = []int{rec.Page}
	}
	return stop
}

// MergeStops folds stops sharing an identity into one stop each, in
// first-seen order. Movement totals do not depend on input order; scalar
// metadata resolves first-non-empty-wins, so callers must pass stops in
// source page order. Merging an already merged list returns it unchanged.
func MergeStops(stops []Stop) []Stop {
	index := make(map[StopKey]int, len(stops))
	merged := make([]Stop, 0, len(stops))

	for _, s := range stops {
		key := s.Key()
		if i, ok := index[key]; ok {
			merged[i] = mergeStop(merged[i], s)
			continue
		}
		index[key] = len(merged)
		merged = append(merged, cloneStop(s))
	}

	return merged
}

func mergeStop(a, b Stop) Stop {
	out := a
	out.LocationName = firstNonEmpty(a.LocationName, b.LocationName)
	out.LocationAddress = firstNonEmpty(a.LocationAddress, b.LocationAddress)
	out.Date = firstNonEmpty(a.Date, b.Date)
	out.Time = firstNonEmpty(a.Time, b.Time)
	out.Received = Sum(a.Received, b.Received)
	out.Given = Sum(a.Given, b.Given)
	out.Exchanged = a.Exchanged.Or(b.Exchanged)
	out.Signatures = a.Signatures.Or(b.Signatures)
	out.Notes = append(slices.Clone(a.Notes), b.Notes...)
	out.Voucher = Voucher{
		Issued: a.Voucher.Issued || b.Voucher.Issued,
		Number: firstNonEmpty(a.Voucher.Number, b.Voucher.Number),
	}
	out.DocumentTypes = unionOrdered(a.DocumentTypes, b.DocumentTypes)
	out.Pages = unionOrdered(a.Pages, b.Pages)
	out.Sources = a.Sources + b.Sources
	out.Confidence = weightedConfidence(a, b)
	out.Synthetic = a.Synthetic && b.Synthetic
	return out
}

func weightedConfidence(a, b Stop) float64 {
	total := a.Sources + b.Sources
	if total == 0 {
		return 0
	}
	return (a.Confidence*float64(a.Sources) + b.Confidence*float64(b.Sources)) / float64(total)
}

func cloneStop(s Stop) Stop {
	s.Received = slices.Clone(s.Received)
	s.Given = slices.Clone(s.Given)
	s.Notes = slices.Clone(s.Notes)
	s.DocumentTypes = slices.Clone(s.DocumentTypes)
	s.Pages = slices.Clone(s.Pages)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func unionOrdered[T comparable](a, b []T) []T {
	out := slices.Clone(a)
	for _, v := range b {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
