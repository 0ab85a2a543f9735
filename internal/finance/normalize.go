package finance

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Num is a loosely typed numeric JSON value. Providers send the same field as a
// number, a numeric string, null, or a {"raw": n, "fmt": "..."} object.
type Num struct {
	raw string
	set bool
}

// numOf builds a present Num from a float.
func numOf(v float64) Num {
	return Num{raw: strconv.FormatFloat(v, 'f', -1, 64), set: true}
}

func (n *Num) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*n = Num{}
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Num{raw: s, set: true}
	case b[0] == '{':
		var wrapped struct {
			Raw json.RawMessage `json:"raw"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil || len(wrapped.Raw) == 0 {
			*n = Num{raw: string(b), set: true}
			return nil
		}
		return n.UnmarshalJSON(wrapped.Raw)
	default:
		*n = Num{raw: string(b), set: true}
	}
	return nil
}

// Present reports whether the field was sent with a non-null value.
func (n Num) Present() bool {
	return n.set
}

// Float parses the value. It fails for absent, non-numeric and non-finite values.
func (n Num) Float() (float64, bool) {
	if !n.set {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(n.raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Text is the raw value as sent, or "" when absent.
func (n Num) Text() string {
	if !n.set {
		return ""
	}
	return n.raw
}

// String renders the raw value for error messages.
func (n Num) String() string {
	if !n.set {
		return "null"
	}
	return n.raw
}

// FirstFinite returns the first candidate that parses to a finite number.
func FirstFinite(candidates ...Num) (float64, bool) {
	for _, c := range candidates {
		if v, ok := c.Float(); ok {
			return v, true
		}
	}
	return 0, false
}

// FiniteOrZero is FirstFinite for secondary fields that default to 0 when absent.
func FiniteOrZero(candidates ...Num) float64 {
	v, _ := FirstFinite(candidates...)
	return v
}

// FirstNonEmpty returns the first candidate with non-blank content, trimmed.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return ""
}
