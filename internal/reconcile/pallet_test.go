package reconcile_test

import (
	"encoding/json"
	"testing"

	"github.com/JaimeStill/saldo/internal/reconcile"
)

func TestNormalizePalletType(t *testing.T) {
	tests := []struct {
		label string
		want  reconcile.PalletType
	}{
		{"EUR", reconcile.PalletEUR},
		{"  eur  ", reconcile.PalletEUR},
		{"Euro-Palette", reconcile.PalletEUR},
		{"Europaletten", reconcile.PalletEUR},
		{"EPAL 1", reconcile.PalletEUR},
		{"FP", reconcile.PalletEUR},
		{"EUR-NT", reconcile.PalletEURNT},
		{"eur nt", reconcile.PalletEURNT},
		{"Nichttausch-Europaletten", reconcile.PalletEURNT},
		{"CHEP", reconcile.PalletCHEP},
		{"chep blau", reconcile.PalletCHEP},
		{"CHEP-HALB", reconcile.PalletCHEPHalb},
		{"CHEP 1/2", reconcile.PalletCHEPHalb},
		{"Chep Halbpalette", reconcile.PalletCHEPHalb},
		{"CHEP-VIERTEL", reconcile.PalletCHEPViertel},
		{"chep 1/4", reconcile.PalletCHEPViertel},
		{"Düsseldorfer", reconcile.PalletDuesseldorfer},
		{"Duesseldorfer Palette", reconcile.PalletDuesseldorfer},
		{"DUSSELDORFER", reconcile.PalletDuesseldorfer},
		{"DDP", reconcile.PalletDuesseldorfer},
		{"Gitterbox", reconcile.PalletGitterbox},
		{"Euro-Gitterbox", reconcile.PalletGitterbox},
		{"GiBo", reconcile.PalletGitterbox},
		{"Rollcontainer", reconcile.PalletRollcontainer},
		{"H1", reconcile.PalletH1},
		{"H1 Hygienepalette", reconcile.PalletH1},
		{"Kunststoffpalette", reconcile.PalletPlastik},
		{"Plastik", reconcile.PalletPlastik},
		{"Einwegpalette", reconcile.PalletEinweg},
		{"Industriepalette", reconcile.PalletIndustrie},
		{"", reconcile.PalletUnknown},
		{"   ", reconcile.PalletUnknown},
		{"Kartons", reconcile.PalletUnknown},
		{"unknown", reconcile.PalletUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := reconcile.NormalizePalletType(tt.label); got != tt.want {
				t.Errorf("NormalizePalletType(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestNormalizePalletTypeCanonicalRoundTrip(t *testing.T) {
	for _, pt := range reconcile.PalletTypes() {
		if got := reconcile.NormalizePalletType(string(pt)); got != pt {
			t.Errorf("NormalizePalletType(%q) = %q", pt, got)
		}
	}
}

func TestPalletTypeUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want reconcile.PalletType
	}{
		{"alias", `"Europalette"`, reconcile.PalletEUR},
		{"unrecognized", `"Holzkiste"`, reconcile.PalletUnknown},
		{"not a string", `42`, reconcile.PalletUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got reconcile.PalletType
			if err := json.Unmarshal([]byte(tt.data), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
