package reconcile

import "fmt"

// GapFill names the synthesis branch applied to a ledger.
type GapFill string

const (
	GapFillNone            GapFill = ""
	GapFillAssumedExchange GapFill = "assumed_exchange"
	GapFillDeliveryOnly    GapFill = "delivery_only"
)

// FillGaps synthesizes a missing delivery stop from indirect evidence.
//
// With at least one pickup, no delivery, and a known consignee, a single
// delivery stop at the consignee is added that mirrors the aggregated
// pickup-received movements on both sides and is marked exchanged. This
// assumes a full 1:1 exchange at delivery.
//
// With neither pickups nor deliveries, a known consignee, and declared
// pallet counts, a delivery-only stop is added that gives the declared
// pallets and receives nothing, marked not exchanged.
//
// The branches are exclusive and never fire when a delivery stop with
// movements exists. Delivery stops without movements carry metadata only;
// they do not count as deliveries and are folded into the synthesized stop.
// The returned warning is empty when nothing was synthesized.
func FillGaps(stops []Stop, parties Parties, declared Movements) ([]Stop, GapFill, string) {
	pickups, deliveries := 0, 0
	var pickupReceived []Movements
	kept := make([]Stop, 0, len(stops)+1)
	var bare []Stop

	for _, s := range stops {
		switch {
		case s.Role == RolePickup:
			pickups++
			pickupReceived = append(pickupReceived, s.Received)
		case s.Role == RoleDelivery && s.HasMovements():
			deliveries++
		case s.Role == RoleDelivery:
			bare = append(bare, s)
			continue
		}
		kept = append(kept, s)
	}

	if deliveries > 0 || parties.Consignee == "" {
		return stops, GapFillNone, ""
	}

	if pickups > 0 {
		received := Sum(pickupReceived...)
		synthetic := Stop{
			Role:            RoleDelivery,
			LocationName:    parties.Consignee,
			LocationAddress: parties.ConsigneeAddress,
			Received:        received,
			Given:           Sum(received),
			Exchanged:       TriTrue,
			Synthetic:       true,
		}
		absorb(&synthetic, bare)
		warning := fmt.Sprintf(
			"no delivery evidence: synthesized delivery stop %q assuming a full 1:1 pallet exchange (%d pallets received and given)",
			parties.Consignee, received.Total(),
		)
		return append(kept, synthetic), GapFillAssumedExchange, warning
	}

	if len(declared) == 0 {
		return stops, GapFillNone, ""
	}

	synthetic := Stop{
		Role:            RoleDelivery,
		LocationName:    parties.Consignee,
		LocationAddress: parties.ConsigneeAddress,
		Given:           Sum(declared),
		Exchanged:       TriFalse,
		Synthetic:       true,
	}
	absorb(&synthetic, bare)
	warning := fmt.Sprintf(
		"no stop evidence: synthesized delivery-only stop %q from declared pallet counts (%d pallets, no exchange evidence)",
		parties.Consignee, synthetic.Given.Total(),
	)
	return append(kept, synthetic), GapFillDeliveryOnly, warning
}

// absorb carries the metadata of movement-free delivery stops into the
// synthesized stop. The synthesized location and movements are kept.
func absorb(synthetic *Stop, bare []Stop) {
	for _, s := range bare {
		synthetic.LocationAddress = firstNonEmpty(synthetic.LocationAddress, s.LocationAddress)
		synthetic.Date = firstNonEmpty(synthetic.Date, s.Date)
		synthetic.Time = firstNonEmpty(synthetic.Time, s.Time)
		synthetic.Signatures = synthetic.Signatures.Or(s.Signatures)
		synthetic.Notes = append(synthetic.Notes, s.Notes...)
		synthetic.DocumentTypes = unionOrdered(synthetic.DocumentTypes, s.DocumentTypes)
		synthetic.Pages = unionOrdered(synthetic.Pages, s.Pages)
		synthetic.Sources += s.Sources
	}
}
