package reconcile_test

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/saldo/internal/reconcile"
)

func lagerNord() []reconcile.Extraction {
	return []reconcile.Extraction{
		{
			Page:         1,
			DocumentType: reconcile.DocPalletReceipt,
			Confidence:   0.9,
			Records: []reconcile.StopRecord{{
				LocationName: "Lager Nord",
				Given:        reconcile.Movements{mv(reconcile.PalletEUR, 10)},
			}},
		},
		{
			Page:         2,
			DocumentType: reconcile.DocPalletReceipt,
			Confidence:   0.8,
			Records: []reconcile.StopRecord{{
				LocationName: "LAGER NORD",
				Given:        reconcile.Movements{mv(reconcile.PalletEUR, 5)},
				Received:     reconcile.Movements{mv(reconcile.PalletCHEP, 2)},
			}},
		},
	}
}

func TestCorrelateMergesPerspectiveResolvedReceipts(t *testing.T) {
	out := reconcile.Correlate(lagerNord(), reconcile.DefaultConfig())

	require.Len(t, out.Ledger.Stops, 1)
	stop := out.Ledger.Stops[0]

	assert.Equal(t, reconcile.KeyFor(reconcile.RolePickup, "lager nord"), stop.Key())
	assert.Equal(t, reconcile.Movements{mv(reconcile.PalletEUR, 15)}, stop.Received)
	assert.Equal(t, reconcile.Movements{mv(reconcile.PalletCHEP, 2)}, stop.Given)
	assert.Equal(t, []int{1, 2}, stop.Pages)
	assert.InDelta(t, 0.85, out.Ledger.AverageConfidence, 1e-9)
}

func TestCorrelateInputOrderDoesNotChangeTotals(t *testing.T) {
	forward := lagerNord()
	reversed := slices.Clone(forward)
	slices.Reverse(reversed)

	a := reconcile.Correlate(forward, reconcile.DefaultConfig())
	b := reconcile.Correlate(reversed, reconcile.DefaultConfig())

	assert.Equal(t, a.Rows, b.Rows)
	assert.Equal(t, a.Ledger.Stops[0].Received, b.Ledger.Stops[0].Received)
}

func TestCorrelateGapFillFromConsignee(t *testing.T) {
	extractions := []reconcile.Extraction{
		{
			Page:         1,
			DocumentType: reconcile.DocLoadingList,
			Confidence:   0.95,
			Parties:      reconcile.Parties{Carrier: "Spedition Krause"},
			Records: []reconcile.StopRecord{{
				LocationName: "AL Bockenem",
				Received:     reconcile.Movements{mv(reconcile.PalletEUR, 33)},
			}},
		},
		{
			Page:         2,
			DocumentType: reconcile.DocDeliveryNote,
			Confidence:   0.9,
			References:   reconcile.References{DeliveryNumber: "LS-4711"},
			Parties:      reconcile.Parties{Consignee: "Müller GmbH"},
		},
	}

	out := reconcile.Correlate(extractions, reconcile.DefaultConfig())

	require.Len(t, out.Ledger.Stops, 2)
	assert.Equal(t, reconcile.GapFillAssumedExchange, out.Ledger.GapFill)
	assert.Equal(t, "LS-4711", out.Ledger.References.DeliveryNumber)
	assert.Equal(t, "Müller GmbH", out.Ledger.Consignee)

	delivery := out.Ledger.Stops[1]
	assert.True(t, delivery.Synthetic)
	assert.Equal(t, reconcile.RoleDelivery, delivery.Role)
	assert.Equal(t, "Müller GmbH", delivery.LocationName)
	assert.Equal(t, reconcile.Movements{mv(reconcile.PalletEUR, 33)}, delivery.Received)
	assert.Equal(t, reconcile.Movements{mv(reconcile.PalletEUR, 33)}, delivery.Given)
	assert.Equal(t, reconcile.TriTrue, delivery.Exchanged)
	require.NotEmpty(t, out.Ledger.Warnings)
	assert.Contains(t, out.Ledger.Warnings[0], "Müller GmbH")

	require.Len(t, out.Rows, 1)
	assert.Equal(t, reconcile.Row{
		PalletType:       reconcile.PalletEUR,
		PickupReceived:   33,
		DeliveryGiven:    33,
		DeliveryReceived: 33,
		Saldo:            -33,
	}, out.Rows[0])

	assert.False(t, out.Disposition.NeedsReview, out.Disposition.Reasons)
}

func TestCorrelateGapFillAbsorbsMovementFreeReceipt(t *testing.T) {
	extractions := []reconcile.Extraction{
		{
			Page:         1,
			DocumentType: reconcile.DocLoadingList,
			Confidence:   0.95,
			Parties:      reconcile.Parties{Carrier: "Spedition Krause"},
			Records: []reconcile.StopRecord{{
				LocationName: "AL Bockenem",
				Received:     reconcile.Movements{mv(reconcile.PalletEUR, 33)},
			}},
		},
		{
			Page:         2,
			DocumentType: reconcile.DocPalletReceipt,
			Confidence:   0.9,
			Records: []reconcile.StopRecord{{
				LocationName: "Müller GmbH",
				Date:         "2024-03-04",
				Signatures:   reconcile.Signatures{Driver: true, Customer: true},
			}},
		},
		{
			Page:         3,
			DocumentType: reconcile.DocDeliveryNote,
			Confidence:   0.9,
			Parties:      reconcile.Parties{Consignee: "Müller GmbH"},
		},
	}

	out := reconcile.Correlate(extractions, reconcile.DefaultConfig())

	assert.Equal(t, reconcile.GapFillAssumedExchange, out.Ledger.GapFill)
	require.Len(t, out.Ledger.Stops, 2)

	delivery := out.Ledger.Stops[1]
	assert.True(t, delivery.Synthetic)
	assert.Equal(t, "2024-03-04", delivery.Date)
	assert.Equal(t, []int{2}, delivery.Pages)
	assert.Contains(t, strings.Join(out.Ledger.Warnings, ";"), "1:1")

	require.Len(t, out.Rows, 1)
	assert.Equal(t, 33, out.Rows[0].DeliveryGiven)
	assert.Equal(t, 33, out.Rows[0].DeliveryReceived)
}

func TestCorrelateSyntheticStopIgnoredForExchange(t *testing.T) {
	extractions := []reconcile.Extraction{
		{
			Page:         1,
			DocumentType: reconcile.DocLoadingList,
			Confidence:   0.95,
			Parties:      reconcile.Parties{Carrier: "Spedition Krause"},
			Records: []reconcile.StopRecord{{
				LocationName: "AL Bockenem",
				Date:         "2024-03-01",
				Received:     reconcile.Movements{mv(reconcile.PalletEUR, 33)},
				Exchanged:    reconcile.TriFalse,
				Voucher:      reconcile.Voucher{Issued: true, Number: "DPL-1"},
			}},
		},
		{
			Page:         2,
			DocumentType: reconcile.DocDeliveryNote,
			Confidence:   0.9,
			Parties:      reconcile.Parties{Consignee: "Müller GmbH"},
		},
	}

	out := reconcile.Correlate(extractions, reconcile.DefaultConfig())

	require.Equal(t, reconcile.GapFillAssumedExchange, out.Ledger.GapFill)
	require.Len(t, out.Validations, 1)

	v := out.Validations[0]
	assert.Equal(t, reconcile.TriFalse, v.Original.Exchanged)
	assert.True(t, v.Original.DPLIssued)
	assert.Equal(t, "DPL-1", v.Original.DPLNumber)
	assert.NotContains(t, checks(v.Issues), reconcile.CheckDPLConflict)
	assert.NotContains(t, checks(v.Issues), reconcile.CheckExchangeInconsistent)
}

func TestCorrelateNegativeQuantityIsHardError(t *testing.T) {
	extractions := []reconcile.Extraction{{
		Page:         4,
		DocumentType: reconcile.DocLoadingList,
		Confidence:   0.99,
		Records: []reconcile.StopRecord{{
			LocationName: "AL Bockenem",
			Received: reconcile.Movements{
				mv(reconcile.PalletEUR, -4),
				mv(reconcile.PalletEUR, 6),
			},
		}},
	}}

	for _, cfg := range []reconcile.Config{
		reconcile.DefaultConfig(),
		{ReviewThreshold: 0.7, TieBreak: reconcile.RoleDelivery},
	} {
		out := reconcile.Correlate(extractions, cfg)

		require.Len(t, out.Ledger.Errors, 1)
		assert.Contains(t, out.Ledger.Errors[0], "negative")
		assert.True(t, out.Disposition.NeedsReview)
		require.Len(t, out.Rows, 1)
		assert.Equal(t, 6, out.Rows[0].PickupReceived)
	}
}

func TestCorrelateTieBreak(t *testing.T) {
	extractions := []reconcile.Extraction{{
		Page:         1,
		DocumentType: reconcile.DocPalletReceipt,
		Confidence:   0.9,
		Records: []reconcile.StopRecord{{
			LocationName: "Zentrallager",
			Given:        reconcile.Movements{mv(reconcile.PalletEUR, 4)},
			Received:     reconcile.Movements{mv(reconcile.PalletEUR, 4)},
		}},
	}}

	t.Run("default policy", func(t *testing.T) {
		out := reconcile.Correlate(extractions, reconcile.DefaultConfig())

		assert.True(t, out.Ledger.TieBreak)
		assert.Equal(t, reconcile.RoleDelivery, out.Ledger.Stops[0].Role)
		assert.True(t, out.Disposition.NeedsReview)
		assert.Contains(t, strings.Join(out.Disposition.Reasons, ";"), "tie-break")
	})

	t.Run("configured pickup policy", func(t *testing.T) {
		cfg := reconcile.DefaultConfig()
		cfg.TieBreak = reconcile.RolePickup

		out := reconcile.Correlate(extractions, cfg)
		assert.Equal(t, reconcile.RolePickup, out.Ledger.Stops[0].Role)
	})
}

func TestCorrelateFailedExtraction(t *testing.T) {
	extractions := append(lagerNord(), reconcile.Extraction{
		Page:     3,
		Failed:   true,
		Warnings: []string{"page 3: oracle exhausted"},
	})

	out := reconcile.Correlate(extractions, reconcile.DefaultConfig())

	assert.Contains(t, out.Ledger.Warnings, "page 3: oracle exhausted")
	assert.Equal(t, []int{1, 2}, out.Ledger.Pages)
	assert.InDelta(t, 0.85, out.Ledger.AverageConfidence, 1e-9)
}

func TestCorrelateFirstMetadataWins(t *testing.T) {
	extractions := []reconcile.Extraction{
		{Page: 1, DocumentType: reconcile.DocDeliveryNote, Parties: reconcile.Parties{Consignee: "Müller GmbH"}},
		{Page: 2, DocumentType: reconcile.DocDeliveryNote, Parties: reconcile.Parties{Consignee: "Mueller", Shipper: "Bauer AG"}},
	}

	out := reconcile.Correlate(extractions, reconcile.DefaultConfig())

	assert.Equal(t, "Müller GmbH", out.Ledger.Consignee)
	assert.Equal(t, "Bauer AG", out.Ledger.Shipper)
}

func TestCorrelateNoEvidence(t *testing.T) {
	out := reconcile.Correlate(nil, reconcile.DefaultConfig())

	assert.Empty(t, out.Ledger.Stops)
	assert.Empty(t, out.Rows)
	assert.Contains(t, out.Ledger.Warnings, "no usable stops found in any source page")
	assert.True(t, out.Disposition.NeedsReview)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stops":[]`)
}

func TestCorrelateSaldoLaw(t *testing.T) {
	extractions := append(lagerNord(), reconcile.Extraction{
		Page:         3,
		DocumentType: reconcile.DocGoodsReceipt,
		Confidence:   0.9,
		Records: []reconcile.StopRecord{{
			LocationName: "Filiale 12",
			Received:     reconcile.Movements{mv(reconcile.PalletEUR, 12), mv(reconcile.PalletH1, 3)},
			Given:        reconcile.Movements{mv(reconcile.PalletEUR, 1)},
		}},
	})

	out := reconcile.Correlate(extractions, reconcile.DefaultConfig())

	require.NotEmpty(t, out.Rows)
	for _, r := range out.Rows {
		assert.Equal(t, r.PickupGiven-r.PickupReceived, r.Saldo, r.PalletType)
	}
	assert.Len(t, out.Validations, len(out.Rows))
}
