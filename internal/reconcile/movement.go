package reconcile

import (
	"cmp"
	"encoding/json"
	"slices"
)

// QualityGrade is the optional condition grade printed on exchange receipts.
type QualityGrade string

const (
	GradeA     QualityGrade = "A"
	GradeB     QualityGrade = "B"
	GradeMixed QualityGrade = "mixed"
)

// Movement is a quantity of one pallet type moving between carrier and stop.
// Damaged counts the subset of Quantity handed over in damaged condition.
type Movement struct {
	Type         PalletType   `json:"type"`
	Quantity     int          `json:"quantity"`
	Damaged      int          `json:"damaged,omitempty"`
	QualityGrade QualityGrade `json:"quality_grade,omitempty"`
}

// Movements is a list of pallet movements.
type Movements []Movement

// MarshalJSON encodes an empty list as [] rather than null.
func (ms Movements) MarshalJSON() ([]byte, error) {
	if ms == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Movement(ms))
}

// Total returns the summed quantity over all pallet types.
func (ms Movements) Total() int {
	total := 0
	for _, m := range ms {
		total += m.Quantity
	}
	return total
}

// Quantity returns the summed quantity for a single pallet type.
func (ms Movements) Quantity(t PalletType) int {
	total := 0
	for _, m := range ms {
		if m.Type == t {
			total += m.Quantity
		}
	}
	return total
}

// Types returns the distinct pallet types present, in canonical order.
func (ms Movements) Types() []PalletType {
	var types []PalletType
	for _, m := range ms {
		if !slices.Contains(types, m.Type) {
			types = append(types, m.Type)
		}
	}
	slices.SortFunc(types, func(a, b PalletType) int {
		return cmp.Compare(a.ordinal(), b.ordinal())
	})
	return types
}

// Sum combines movement lists by summing quantities within each pallet type.
// Damaged quantities are summed independently. The result is ordered by
// canonical pallet type, which makes Sum commutative and associative.
// Quality grades survive only when every contributing movement agrees;
// conflicting grades collapse to GradeMixed.
func Sum(lists ...Movements) Movements {
	byType := make(map[PalletType]*Movement)
	var order []PalletType

	for _, list := range lists {
		for _, m := range list {
			acc, ok := byType[m.Type]
			if !ok {
				copied := m
				byType[m.Type] = &copied
				order = append(order, m.Type)
				continue
			}
			acc.Quantity += m.Quantity
			acc.Damaged += m.Damaged
			acc.QualityGrade = mergeGrade(acc.QualityGrade, m.QualityGrade)
		}
	}

	if len(order) == 0 {
		return nil
	}

	slices.SortFunc(order, func(a, b PalletType) int {
		return cmp.Compare(a.ordinal(), b.ordinal())
	})

	result := make(Movements, 0, len(order))
	for _, t := range order {
		result = append(result, *byType[t])
	}
	return result
}

func mergeGrade(a, b QualityGrade) QualityGrade {
	switch {
	case a == b:
		return a
	case a == "":
		return b
	case b == "":
		return a
	default:
		return GradeMixed
	}
}

// sanitize drops zero-quantity movements and separates negative ones.
// Damaged counts are clamped into [0, Quantity].
func sanitize(ms Movements) (kept Movements, negative Movements) {
	for _, m := range ms {
		switch {
		case m.Quantity < 0:
			negative = append(negative, m)
		case m.Quantity == 0:
			continue
		default:
			m.Damaged = min(max(m.Damaged, 0), m.Quantity)
			kept = append(kept, m)
		}
	}
	return kept, negative
}
