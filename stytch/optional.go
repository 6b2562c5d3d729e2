package stytch

import (
	"encoding/json"
	"fmt"
)

// OptionalString is a string field that the service sends as "" when it has no
// value. An empty string decodes to absent and absent encodes back to "",
// never to null or an omitted field.
type OptionalString struct {
	value string
	set   bool
}

// Some returns a present value. Some("") is the same as None().
func Some(s string) OptionalString {
	return OptionalString{value: s, set: s != ""}
}

// None returns an absent value
func None() OptionalString {
	return OptionalString{}
}

// Get returns the value and whether it is present
func (o OptionalString) Get() (string, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present
func (o OptionalString) IsSet() bool {
	return o.set
}

// OrElse returns the value, or def when absent
func (o OptionalString) OrElse(def string) string {
	if !o.set {
		return def
	}
	return o.value
}

// String returns the value or "" when absent
func (o OptionalString) String() string {
	return o.value
}

// MarshalJSON encodes absent as ""
func (o OptionalString) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes "" and null as absent
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("optional string: %w", err)
	}
	*o = Some(s)
	return nil
}

// String returns a pointer to s, for optional request fields
func String(s string) *string {
	return &s
}

// Int returns a pointer to i, for optional request fields
func Int(i int) *int {
	return &i
}

// Bool returns a pointer to b, for optional request fields
func Bool(b bool) *bool {
	return &b
}
