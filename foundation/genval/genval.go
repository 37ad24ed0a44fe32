// Package genval models the dynamically shaped values found in the external
// ledger's block log. Entries arrive as a tagged union of maps, text, numbers
// and blobs; accessors report a missing or differently shaped field instead
// of panicking so callers can treat malformed fields as absent.
package genval

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which variant a Value carries.
type Kind int

// Set of possible value variants.
const (
	KindNull Kind = iota
	KindMap
	KindText
	KindNat
	KindBlob
	KindArray
)

// Value represents a single tagged value from the external log.
type Value struct {
	Kind  Kind
	Map   map[string]Value
	Text  string
	Nat   uint64
	Blob  []byte
	Array []Value
}

// =============================================================================
// Constructors, mainly useful to tests and the gateway fakes.

// NewMap constructs a map variant.
func NewMap(m map[string]Value) Value {
	return Value{Kind: KindMap, Map: m}
}

// NewText constructs a text variant.
func NewText(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// NewNat constructs a nat variant.
func NewNat(n uint64) Value {
	return Value{Kind: KindNat, Nat: n}
}

// NewBlob constructs a blob variant.
func NewBlob(b []byte) Value {
	return Value{Kind: KindBlob, Blob: b}
}

// NewArray constructs an array variant.
func NewArray(vs []Value) Value {
	return Value{Kind: KindArray, Array: vs}
}

// =============================================================================
// Accessors. Each reports false when the value holds a different variant.

// AsMap returns the map variant of the value.
func (v Value) AsMap() (map[string]Value, bool) {
	return v.Map, v.Kind == KindMap
}

// AsText returns the text variant of the value.
func (v Value) AsText() (string, bool) {
	return v.Text, v.Kind == KindText
}

// AsNat returns the nat variant of the value.
func (v Value) AsNat() (uint64, bool) {
	return v.Nat, v.Kind == KindNat
}

// AsBlob returns the blob variant of the value.
func (v Value) AsBlob() ([]byte, bool) {
	return v.Blob, v.Kind == KindBlob
}

// Field looks up a key inside a map variant.
func (v Value) Field(key string) (Value, bool) {
	m, ok := v.AsMap()
	if !ok {
		return Value{}, false
	}

	fv, ok := m[key]
	return fv, ok
}

// =============================================================================
// JSON wire format: a single-key object naming the variant, matching what the
// ledger gateway produces. {"Map":{...}} {"Text":"..."} {"Nat":1} {"Blob":""}

type wireValue struct {
	Map   map[string]Value `json:"Map,omitempty"`
	Text  *string          `json:"Text,omitempty"`
	Nat   *uint64          `json:"Nat,omitempty"`
	Blob  []byte           `json:"Blob,omitempty"`
	Array []Value          `json:"Array,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	var w wireValue

	switch v.Kind {
	case KindMap:
		w.Map = v.Map
	case KindText:
		w.Text = &v.Text
	case KindNat:
		w.Nat = &v.Nat
	case KindBlob:
		w.Blob = v.Blob
	case KindArray:
		w.Array = v.Array
	case KindNull:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}

	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}

	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch {
	case w.Map != nil:
		*v = Value{Kind: KindMap, Map: w.Map}
	case w.Text != nil:
		*v = Value{Kind: KindText, Text: *w.Text}
	case w.Nat != nil:
		*v = Value{Kind: KindNat, Nat: *w.Nat}
	case w.Blob != nil:
		*v = Value{Kind: KindBlob, Blob: w.Blob}
	case w.Array != nil:
		*v = Value{Kind: KindArray, Array: w.Array}
	default:
		*v = Value{}
	}

	return nil
}
