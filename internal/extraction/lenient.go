package extraction

import (
	"bytes"
	"encoding/json"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/JaimeStill/saldo/internal/reconcile"
)

// The flex types decode oracle fields that are optional and frequently
// malformed. None of them ever returns an error: a value that cannot be
// interpreted decodes to the zero value.

var null = []byte("null")

func isNull(data []byte) bool {
	return len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), null)
}

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	*s = ""
	if isNull(data) {
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(strings.TrimSpace(str))
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = flexString(num.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*s = flexString(strconv.FormatBool(b))
	}
	return nil
}

func (s flexString) String() string { return string(s) }

var intPattern = regexp.MustCompile(`-?\d+`)

// flexInt accepts numbers, numeric strings, and strings with a leading
// count such as "33 Stk". Negative values are preserved so the engine can
// reject them.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	*n = 0
	if isNull(data) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = flexInt(math.Round(f))
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return nil
	}

	if m := intPattern.FindString(strings.ReplaceAll(str, ".", "")); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			*n = flexInt(v)
		}
	}
	return nil
}

// flexConfidence accepts fractions, percentages, and numeric strings,
// clamped into [0, 1].
type flexConfidence float64

func (c *flexConfidence) UnmarshalJSON(data []byte) error {
	*c = 0
	if isNull(data) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		str = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "%"))
		v, err := strconv.ParseFloat(strings.ReplaceAll(str, ",", "."), 64)
		if err != nil {
			return nil
		}
		f = v
	}

	if f > 1 && f <= 100 {
		f /= 100
	}
	*c = flexConfidence(min(max(f, 0), 1))
	return nil
}

// flexTri accepts booleans and common German and English yes/no words.
type flexTri reconcile.Tri

func (t *flexTri) UnmarshalJSON(data []byte) error {
	*t = flexTri(reconcile.TriUnknown)
	if isNull(data) {
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*t = flexTri(reconcile.TriOf(b))
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(str)) {
	case "true", "yes", "ja", "j", "x", "1":
		*t = flexTri(reconcile.TriTrue)
	case "false", "no", "nein", "n", "0":
		*t = flexTri(reconcile.TriFalse)
	}
	return nil
}

func (t flexTri) tri() reconcile.Tri { return reconcile.Tri(t) }

// flexBool is a flexTri that treats unknown as false.
type flexBool struct{ flexTri }

func (b flexBool) bool() bool { return b.tri() == reconcile.TriTrue }

// flexList accepts an array, a single element, or null. Elements that fail
// to decode are skipped.
type flexList[T any] []T

func (l *flexList[T]) UnmarshalJSON(data []byte) error {
	*l = nil
	if isNull(data) {
		return nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		raws = []json.RawMessage{data}
	}

	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			*l = append(*l, v)
		}
	}
	return nil
}

// lenient decodes a nested object, leaving the zero value when the field
// has the wrong shape.
type lenient[T any] struct{ v T }

func (l *lenient[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err == nil {
		l.v = v
	}
	return nil
}

func (l lenient[T]) get() T { return l.v }

// flexSaldo accepts a reported balance as a bare number, a map of pallet
// label to value, or a list of {type, value} pairs. A bare number is stored
// under the empty label.
type flexSaldo map[string]int

func (s *flexSaldo) UnmarshalJSON(data []byte) error {
	*s = nil
	if isNull(data) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = flexSaldo{"": int(math.Round(f))}
		return nil
	}

	var m map[string]flexInt
	if err := json.Unmarshal(data, &m); err == nil && !hasKey(m, "type") {
		out := make(flexSaldo, len(m))
		for k, v := range m {
			out[k] = int(v)
		}
		*s = out
		return nil
	}

	var pairs flexList[struct {
		Type  flexString `json:"type"`
		Value flexInt    `json:"value"`
		Saldo flexInt    `json:"saldo"`
	}]
	if err := json.Unmarshal(data, &pairs); err == nil && len(pairs) > 0 {
		out := make(flexSaldo, len(pairs))
		for _, p := range pairs {
			v := p.Value
			if v == 0 {
				v = p.Saldo
			}
			out[p.Type.String()] = int(v)
		}
		*s = out
	}
	return nil
}

func hasKey[V any](m map[string]V, key string) bool {
	_, ok := m[key]
	return ok
}

// resolve maps labels onto pallet types. A bare number applies only when
// the document names exactly one pallet type. Labels are visited in sorted
// order and the first label for a type wins; labelled values win over a
// bare number.
func (s flexSaldo) resolve(lines ...reconcile.Movements) map[reconcile.PalletType]int {
	if len(s) == 0 {
		return nil
	}

	out := make(map[reconcile.PalletType]int, len(s))
	for _, label := range slices.Sorted(maps.Keys(s)) {
		if label == "" {
			continue
		}
		t := reconcile.NormalizePalletType(label)
		if _, ok := out[t]; !ok {
			out[t] = s[label]
		}
	}

	if v, ok := s[""]; ok {
		if types := reconcile.Sum(lines...).Types(); len(types) == 1 {
			if _, set := out[types[0]]; !set {
				out[types[0]] = v
			}
		}
	}
	return out
}
