package reconcile

// RoleDecision is the classifier's verdict for one record.
type RoleDecision struct {
	Role Role
	// Skip is set for records that never yield a stop (delivery notes carry
	// party and reference metadata only).
	Skip bool
	// TieBreak is set when both sides carried equal positive totals and the
	// role came from the configured tie-break policy.
	TieBreak bool
	// NoEvidence is set when the record has no movements. Such stops keep
	// their metadata but add nothing to the saldo.
	NoEvidence bool
}

// ClassifyRole infers the stop role of a carrier-viewpoint record. Loading
// lists are always pickups, delivery notes never form stops, and explicit
// roles are kept. Otherwise the side with the larger movement total wins;
// equal positive totals fall back to tieBreak.
func ClassifyRole(rec StopRecord, tieBreak Role) RoleDecision {
	received := rec.Received.Total()
	given := rec.Given.Total()
	noEvidence := received == 0 && given == 0

	switch rec.SourceDocumentType {
	case DocDeliveryNote:
		return RoleDecision{Skip: true, NoEvidence: noEvidence}
	case DocLoadingList:
		return RoleDecision{Role: RolePickup, NoEvidence: noEvidence}
	}

	if rec.Role != "" {
		return RoleDecision{Role: rec.Role, NoEvidence: noEvidence}
	}

	switch {
	case received > 0 && given == 0:
		return RoleDecision{Role: RolePickup}
	case given > 0 && received == 0:
		return RoleDecision{Role: RoleDelivery}
	case received > given:
		return RoleDecision{Role: RolePickup}
	case given > received:
		return RoleDecision{Role: RoleDelivery}
	case received > 0:
		return RoleDecision{Role: tieBreak, TieBreak: true}
	default:
		return RoleDecision{Role: RoleDelivery, NoEvidence: true}
	}
}
