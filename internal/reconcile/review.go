package reconcile

import "fmt"

// ReviewInput aggregates the ledger signals the review decision depends on.
type ReviewInput struct {
	Confidence     float64
	Errors         int
	Warnings       int
	PickupReceived int
	DeliveryGiven  int
	TieBreak       bool
}

// Disposition is the final review decision for a ledger.
type Disposition struct {
	NeedsReview bool     `json:"needs_review"`
	Reasons     []string `json:"reasons,omitempty"`
}

// Review decides whether a ledger needs human attention. Any one of the
// following suffices: confidence below threshold, at least one error, more
// than two warnings, no pallets received at pickup and none given at
// delivery, or a role that came from the tie-break policy.
func Review(in ReviewInput, threshold float64) Disposition {
	var reasons []string

	if in.Confidence < threshold {
		reasons = append(reasons, fmt.Sprintf("confidence %.2f below threshold %.2f", in.Confidence, threshold))
	}
	if in.Errors > 0 {
		reasons = append(reasons, fmt.Sprintf("%d validation error(s)", in.Errors))
	}
	if in.Warnings > 2 {
		reasons = append(reasons, fmt.Sprintf("%d warnings", in.Warnings))
	}
	if in.PickupReceived == 0 && in.DeliveryGiven == 0 {
		reasons = append(reasons, "no pallets received at pickup or given at delivery")
	}
	if in.TieBreak {
		reasons = append(reasons, "stop role assigned by tie-break policy")
	}

	return Disposition{
		NeedsReview: len(reasons) > 0,
		Reasons:     reasons,
	}
}
