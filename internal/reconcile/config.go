package reconcile

import "fmt"

// Config carries the engine's externally supplied policy.
type Config struct {
	// ReviewThreshold is the confidence below which a ledger needs review.
	ReviewThreshold float64
	// AutoCorrectSaldo replaces a mismatched reported saldo with the
	// computed value.
	AutoCorrectSaldo bool
	// AutoCorrectExchange repairs exchange inconsistencies and DPL
	// conflicts.
	AutoCorrectExchange bool
	// TieBreak is the role assigned when a record's received and given
	// totals are equal and positive.
	TieBreak Role
}

// DefaultConfig returns the engine policy used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		ReviewThreshold:     0.7,
		AutoCorrectSaldo:    true,
		AutoCorrectExchange: true,
		TieBreak:            RoleDelivery,
	}
}

// Validate checks that the policy is usable.
func (c Config) Validate() error {
	if c.ReviewThreshold < 0 || c.ReviewThreshold > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, c.ReviewThreshold)
	}
	if c.TieBreak != RolePickup && c.TieBreak != RoleDelivery {
		return fmt.Errorf("%w: %q", ErrInvalidTieBreak, c.TieBreak)
	}
	return nil
}
