package reconcile

import (
	"fmt"
	"strings"
)

// Check names one validation rule.
type Check string

const (
	CheckSaldoMismatch        Check = "saldo_mismatch"
	CheckExchangeInconsistent Check = "exchange_inconsistency"
	CheckDPLConflict          Check = "dpl_conflict"
	CheckMissingVoucherNumber Check = "missing_voucher_number"
	CheckCrossStopMismatch    Check = "cross_stop_mismatch"
	CheckMissingDate          Check = "missing_date"
	CheckMissingLocation      Check = "missing_location"
	CheckMissingCarrier       Check = "missing_carrier"
	CheckAllZeroMovements     Check = "all_zero_movements"
	CheckNegativeQuantity     Check = "negative_quantity"
	CheckUnknownPalletType    Check = "unknown_pallet_type"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one triggered check.
type Issue struct {
	Check     Check    `json:"check"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Corrected bool     `json:"corrected"`
}

// Side is one end of an entry: the pickup or the delivery.
type Side struct {
	Received  int    `json:"received"`
	Given     int    `json:"given"`
	Date      string `json:"date,omitempty"`
	Location  string `json:"location,omitempty"`
	CarrierID string `json:"carrier_id,omitempty"`
}

// Entry is the assembled pre-output record for one pallet type.
type Entry struct {
	PalletType PalletType `json:"pallet_type"`
	Pickup     Side       `json:"pickup"`
	Delivery   Side       `json:"delivery"`
	// Saldo is the balance reported on the source documents, if any.
	Saldo     *int   `json:"saldo,omitempty"`
	Exchanged Tri    `json:"exchanged"`
	DPLIssued bool   `json:"dpl_issued"`
	DPLNumber string `json:"dpl_number,omitempty"`
}

// ComputedSaldo returns the saldo implied by the pickup figures.
func (e Entry) ComputedSaldo() int {
	return Saldo(e.Pickup.Given, e.Pickup.Received)
}

// Result is the outcome of validating one entry. Original is never
// modified; Adjusted holds any auto-corrections.
type Result struct {
	Original  Entry   `json:"original"`
	Adjusted  Entry   `json:"adjusted"`
	Issues    []Issue `json:"issues"`
	Corrected bool    `json:"corrected"`
}

// Errors returns the error-severity issues.
func (r Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

// Unresolved returns the error-severity issues that were not corrected.
func (r Result) Unresolved() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityError && !i.Corrected {
			out = append(out, i)
		}
	}
	return out
}

func (r Result) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Validate runs every check against entry. Checks evaluate the original
// entry independently; corrections are applied to a copy as permitted by
// cfg. Negative quantities are reported but never corrected, and they
// suppress the saldo correction.
func Validate(entry Entry, cfg Config) Result {
	adjusted := entry
	if entry.Saldo != nil {
		v := *entry.Saldo
		adjusted.Saldo = &v
	}

	var issues []Issue
	add := func(check Check, sev Severity, corrected bool, format string, args ...any) {
		issues = append(issues, Issue{
			Check:     check,
			Severity:  sev,
			Message:   fmt.Sprintf(format, args...),
			Corrected: corrected,
		})
	}

	p, d := entry.Pickup, entry.Delivery

	negative := p.Received < 0 || p.Given < 0 || d.Received < 0 || d.Given < 0
	if negative {
		add(CheckNegativeQuantity, SeverityError, false,
			"%s: negative quantity (pickup %d/%d, delivery %d/%d)",
			entry.PalletType, p.Received, p.Given, d.Received, d.Given)
	}

	computed := entry.ComputedSaldo()
	if entry.Saldo != nil && *entry.Saldo != computed {
		// A saldo computed from negative figures is not trusted as a correction.
		fix := cfg.AutoCorrectSaldo && !negative
		if fix {
			adjusted.Saldo = &computed
		}
		add(CheckSaldoMismatch, SeverityError, fix,
			"%s: reported saldo %d, computed %d", entry.PalletType, *entry.Saldo, computed)
	}

	if entry.Exchanged == TriFalse && p.Received > 0 && !entry.DPLIssued {
		if cfg.AutoCorrectExchange {
			adjusted.Exchanged = TriTrue
		}
		add(CheckExchangeInconsistent, SeverityError, cfg.AutoCorrectExchange,
			"%s: marked not exchanged but %d pallets received at pickup", entry.PalletType, p.Received)
	}

	if entry.DPLIssued && entry.Exchanged == TriTrue {
		if cfg.AutoCorrectExchange {
			adjusted.Exchanged = TriFalse
		}
		add(CheckDPLConflict, SeverityError, cfg.AutoCorrectExchange,
			"%s: DPL voucher issued but marked fully exchanged", entry.PalletType)
	}

	if entry.DPLIssued && strings.TrimSpace(entry.DPLNumber) == "" {
		add(CheckMissingVoucherNumber, SeverityWarning, false,
			"%s: DPL voucher issued without a voucher number", entry.PalletType)
	}

	if d.Given != p.Received {
		add(CheckCrossStopMismatch, SeverityWarning, false,
			"%s: delivered %d but picked up %d", entry.PalletType, d.Given, p.Received)
	}

	if blank(p.Date) && blank(d.Date) {
		add(CheckMissingDate, SeverityWarning, false, "%s: no date on pickup or delivery", entry.PalletType)
	}
	if blank(p.Location) && blank(d.Location) {
		add(CheckMissingLocation, SeverityWarning, false, "%s: no location on pickup or delivery", entry.PalletType)
	}
	if blank(p.CarrierID) && blank(d.CarrierID) {
		add(CheckMissingCarrier, SeverityWarning, false, "%s: no carrier on pickup or delivery", entry.PalletType)
	}

	if p.Received == 0 && p.Given == 0 && d.Received == 0 && d.Given == 0 {
		add(CheckAllZeroMovements, SeverityWarning, false, "%s: no movements on pickup or delivery", entry.PalletType)
	}

	if entry.PalletType == PalletUnknown || entry.PalletType == "" {
		add(CheckUnknownPalletType, SeverityWarning, false, "pallet type could not be identified")
	}

	corrected := false
	for _, i := range issues {
		if i.Corrected {
			corrected = true
			break
		}
	}

	return Result{
		Original:  entry,
		Adjusted:  adjusted,
		Issues:    issues,
		Corrected: corrected,
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
