package tenderapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Value is an optional JSON scalar. The tender API is loose about types
// (codes arrive as numbers or digit strings, amounts may be null), so every
// field is decoded lazily and read through explicit accessors.
type Value struct {
	raw json.RawMessage
}

// IntValue builds a numeric Value.
func IntValue(n int64) Value {
	return Value{raw: json.RawMessage(strconv.FormatInt(n, 10))}
}

// StringValue builds a string Value.
func StringValue(s string) Value {
	b, _ := json.Marshal(s)
	return Value{raw: b}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		v.raw = nil
		return nil
	}
	v.raw = append(v.raw[:0:0], b...)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// Present reports whether the field was sent with a non-null value.
func (v Value) Present() bool {
	return len(v.raw) > 0
}

func (v Value) isString() bool {
	return len(v.raw) > 0 && v.raw[0] == '"'
}

func (v Value) isNumber() bool {
	if len(v.raw) == 0 {
		return false
	}
	c := v.raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

// String renders the value as text: strings unquoted, numbers verbatim,
// composite values as raw JSON, absent as "".
func (v Value) String() string {
	if !v.Present() {
		return ""
	}
	if v.isString() {
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	}
	return string(v.raw)
}

// Float returns the numeric value of a number or numeric string.
func (v Value) Float() (float64, bool) {
	switch {
	case v.isNumber():
		f, err := strconv.ParseFloat(string(v.raw), 64)
		return f, err == nil
	case v.isString():
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int returns an integer from a number or a string of digits.
func (v Value) Int() (int64, bool) {
	switch {
	case v.isNumber():
		f, err := strconv.ParseFloat(string(v.raw), 64)
		return int64(f), err == nil
	case v.isString():
		s := strings.TrimSpace(v.String())
		if s == "" || strings.TrimLeft(s, "0123456789") != "" {
			return 0, false
		}
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Millis returns a timestamp in Unix milliseconds, 0 when absent or not numeric.
func (v Value) Millis() int64 {
	n, ok := v.Int()
	if !ok {
		return 0
	}
	return n
}

// Blank reports absent, null or empty-string values.
func (v Value) Blank() bool {
	return !v.Present() || (v.isString() && v.String() == "")
}

// BlankOrZero is Blank or a numeric zero.
func (v Value) BlankOrZero() bool {
	if v.Blank() {
		return true
	}
	if v.isNumber() {
		f, _ := v.Float()
		return f == 0
	}
	return false
}
