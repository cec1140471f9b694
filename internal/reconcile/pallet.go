// Package reconcile implements the correlation and reconciliation engine for
// pallet-exchange records. It folds per-page extractions produced by the
// vision oracle into a single delivery ledger, computes the carrier saldo per
// pallet type, validates the result, and decides whether a human has to
// review it. The package is pure compute: it performs no I/O and holds no
// configuration of its own.
package reconcile

import (
	"encoding/json"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PalletType is the closed set of load carriers tracked by the ledger.
type PalletType string

const (
	PalletEUR           PalletType = "EUR"
	PalletEURNT         PalletType = "EUR-NT"
	PalletEinweg        PalletType = "Einweg"
	PalletDuesseldorfer PalletType = "Düsseldorfer"
	PalletCHEP          PalletType = "CHEP"
	PalletCHEPHalb      PalletType = "CHEP-HALB"
	PalletCHEPViertel   PalletType = "CHEP-VIERTEL"
	PalletGitterbox     PalletType = "Gitterbox"
	PalletPlastik       PalletType = "Plastik"
	PalletH1            PalletType = "H1"
	PalletRollcontainer PalletType = "Rollcontainer"
	PalletIndustrie     PalletType = "Industrie"
	PalletUnknown       PalletType = "unknown"
)

var palletTypes = []PalletType{
	PalletEUR,
	PalletEURNT,
	PalletEinweg,
	PalletDuesseldorfer,
	PalletCHEP,
	PalletCHEPHalb,
	PalletCHEPViertel,
	PalletGitterbox,
	PalletPlastik,
	PalletH1,
	PalletRollcontainer,
	PalletIndustrie,
	PalletUnknown,
}

var palletOrdinals = func() map[PalletType]int {
	m := make(map[PalletType]int, len(palletTypes))
	for i, t := range palletTypes {
		m[t] = i
	}
	return m
}()

// PalletTypes returns every pallet type in canonical output order.
func PalletTypes() []PalletType {
	return palletTypes
}

func (t PalletType) ordinal() int {
	if i, ok := palletOrdinals[t]; ok {
		return i
	}
	return palletOrdinals[PalletUnknown]
}

// UnmarshalJSON normalizes any label, so decoding never fails on an
// unrecognized pallet name.
func (t *PalletType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = PalletUnknown
		return nil
	}
	*t = NormalizePalletType(raw)
	return nil
}

// labelKey is the folded form of a free-text pallet label. compact has every
// non-alphanumeric rune removed; tokens splits on them.
type labelKey struct {
	compact string
	tokens  []string
}

func (k labelKey) has(subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(k.compact, s) {
			return true
		}
	}
	return false
}

func (k labelKey) token(tokens ...string) bool {
	for _, want := range tokens {
		for _, tok := range k.tokens {
			if tok == want {
				return true
			}
		}
	}
	return false
}

func (k labelKey) exact(values ...string) bool {
	for _, v := range values {
		if k.compact == v {
			return true
		}
	}
	return false
}

type aliasRule struct {
	palletType PalletType
	match      func(labelKey) bool
}

// aliasRules is evaluated top to bottom. Specific variants precede the
// generic family they contain ("EUR-NT" before "EUR", "CHEP-HALB" before
// "CHEP").
var aliasRules = []aliasRule{
	{PalletEURNT, func(k labelKey) bool {
		return k.has("eurnt", "euront", "europalettent", "nichttausch", "nonexchange")
	}},
	{PalletCHEPViertel, func(k labelKey) bool {
		return k.has("chep") && (k.has("viertel", "quarter") || k.has("chep14"))
	}},
	{PalletCHEPHalb, func(k labelKey) bool {
		return k.has("chep") && (k.has("halb", "half") || k.has("chep12"))
	}},
	{PalletCHEP, func(k labelKey) bool {
		return k.has("chep")
	}},
	{PalletDuesseldorfer, func(k labelKey) bool {
		return k.has("dusseldorf", "duesseldorf") || k.token("ddp")
	}},
	{PalletGitterbox, func(k labelKey) bool {
		return k.has("gitterbox", "gibo") || k.token("gb")
	}},
	{PalletRollcontainer, func(k labelKey) bool {
		return k.has("rollcontainer", "rollwagen", "rollbox")
	}},
	{PalletH1, func(k labelKey) bool {
		return k.exact("h1") || k.token("h1") || k.has("hygienepalette")
	}},
	{PalletPlastik, func(k labelKey) bool {
		return k.has("plastik", "kunststoff", "plastic")
	}},
	{PalletEinweg, func(k labelKey) bool {
		return k.has("einweg", "oneway")
	}},
	{PalletIndustrie, func(k labelKey) bool {
		return k.has("industrie", "industry")
	}},
	{PalletEUR, func(k labelKey) bool {
		return k.token("eur", "eu", "epal", "fp") || k.has("euro", "epal", "eurpal")
	}},
}

// NormalizePalletType maps a free-text label onto the closed PalletType set.
// It is total: labels that match no alias rule yield PalletUnknown.
func NormalizePalletType(label string) PalletType {
	key := foldLabel(label)
	if key.compact == "" {
		return PalletUnknown
	}

	if t, ok := canonicalKeys[key.compact]; ok {
		return t
	}

	for _, rule := range aliasRules {
		if rule.match(key) {
			return rule.palletType
		}
	}

	return PalletUnknown
}

var canonicalKeys = func() map[string]PalletType {
	m := make(map[string]PalletType, len(palletTypes))
	for _, t := range palletTypes {
		if t == PalletUnknown {
			continue
		}
		m[foldLabel(string(t)).compact] = t
	}
	return m
}()

func foldLabel(label string) labelKey {
	s := cases.Fold().String(strings.TrimSpace(label))

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	var compact strings.Builder
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		compact.WriteString(tok)
	}

	return labelKey{compact: compact.String(), tokens: tokens}
}
