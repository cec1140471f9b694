package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-yaml"

	"github.com/JaimeStill/saldo/internal/reconcile"
)

const (
	formatSummary = "summary"
	formatJSON    = "json"
	formatYAML    = "yaml"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(12)
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	reviewStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

func render[T any](w io.Writer, format string, v T, summary func(T) string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		return writeYAML(w, v)
	default:
		_, err := fmt.Fprintln(w, summary(v))
		return err
	}
}

// writeYAML encodes through JSON so the output keys match the json tags.
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	out, err := yaml.MarshalWithOptions(generic, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func field(label, value string) string {
	if value == "" {
		value = "-"
	}
	return labelStyle.Render(label) + value
}

func summarizeOutcome(o reconcile.Outcome) string {
	l := o.Ledger
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Pallet ledger"))
	sb.WriteString("\n")

	details := []string{
		field("Delivery", l.References.DeliveryNumber),
		field("Order", l.References.OrderNumber),
		field("Tour", l.References.TourNumber),
		field("Carrier", l.Carrier),
		field("Consignee", l.Consignee),
		field("Pages", joinInts(l.SortedPages())),
		field("Confidence", strconv.FormatFloat(l.AverageConfidence, 'f', 2, 64)),
	}
	if l.GapFill != reconcile.GapFillNone {
		details = append(details, field("Gap fill", string(l.GapFill)))
	}
	sb.WriteString(boxStyle.Render(strings.Join(details, "\n")))
	sb.WriteString("\n")

	if len(l.Stops) > 0 {
		stops := newTable("Role", "Location", "Date", "Received", "Given", "Exchanged", "Pages")
		for _, s := range l.Stops {
			location := s.LocationName
			if s.Synthetic {
				location += " (assumed)"
			}
			stops.Row(
				string(s.Role), location, s.Date,
				strconv.Itoa(s.Received.Total()), strconv.Itoa(s.Given.Total()),
				s.Exchanged.String(), joinInts(s.Pages),
			)
		}
		sb.WriteString(stops.String())
		sb.WriteString("\n")
	}

	rows := newTable("Type", "Pickup recv", "Pickup given", "Delivery given", "Delivery recv", "Saldo")
	for _, r := range o.Rows {
		rows.Row(
			string(r.PalletType),
			strconv.Itoa(r.PickupReceived), strconv.Itoa(r.PickupGiven),
			strconv.Itoa(r.DeliveryGiven), strconv.Itoa(r.DeliveryReceived),
			strconv.Itoa(r.Saldo),
		)
	}
	sb.WriteString(rows.String())
	sb.WriteString("\n")

	writeMessages(&sb, l.Warnings, l.Errors)
	for _, v := range o.Validations {
		writeIssues(&sb, v.Issues)
	}

	if o.Disposition.NeedsReview {
		sb.WriteString(reviewStyle.Render("needs review"))
		for _, r := range o.Disposition.Reasons {
			sb.WriteString("\n  - " + r)
		}
	} else {
		sb.WriteString(okStyle.Render("OK"))
	}

	return sb.String()
}

func summarizeResult(r reconcile.Result) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Entry " + string(r.Original.PalletType)))
	sb.WriteString("\n")

	reported := "-"
	if r.Original.Saldo != nil {
		reported = strconv.Itoa(*r.Original.Saldo)
	}
	adjusted := "-"
	if r.Adjusted.Saldo != nil {
		adjusted = strconv.Itoa(*r.Adjusted.Saldo)
	}

	details := []string{
		field("Pickup", fmt.Sprintf("received %d, given %d", r.Original.Pickup.Received, r.Original.Pickup.Given)),
		field("Delivery", fmt.Sprintf("given %d, received %d", r.Original.Delivery.Given, r.Original.Delivery.Received)),
		field("Computed", strconv.Itoa(r.Original.ComputedSaldo())),
		field("Reported", reported),
		field("Adjusted", adjusted),
		field("Exchanged", r.Adjusted.Exchanged.String()),
	}
	sb.WriteString(boxStyle.Render(strings.Join(details, "\n")))
	sb.WriteString("\n")

	writeIssues(&sb, r.Issues)

	if len(r.Unresolved()) > 0 {
		sb.WriteString(reviewStyle.Render(fmt.Sprintf("%d unresolved errors", len(r.Unresolved()))))
	} else {
		sb.WriteString(okStyle.Render("OK"))
	}

	return sb.String()
}

func writeMessages(sb *strings.Builder, warnings, errs []string) {
	for _, w := range warnings {
		sb.WriteString(warningStyle.Render("warning: "+w) + "\n")
	}
	for _, e := range errs {
		sb.WriteString(errorStyle.Render("error: "+e) + "\n")
	}
}

func writeIssues(sb *strings.Builder, issues []reconcile.Issue) {
	for _, i := range issues {
		style := warningStyle
		if i.Severity == reconcile.SeverityError {
			style = errorStyle
		}
		line := fmt.Sprintf("%s: %s (%s)", i.Severity, i.Message, i.Check)
		if i.Corrected {
			line += " [corrected]"
		}
		sb.WriteString(style.Render(line) + "\n")
	}
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
