package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SelectedOptions holds the shopper's per-line choices (size, color, ...).
// The mapping is opaque to the cart; it is snapshotted into order items as-is.
type SelectedOptions map[string]string

// Value marshals the options into jsonb.
func (o SelectedOptions) Value() (driver.Value, error) {
	if o == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("selected options: marshal %w", err)
	}
	return string(raw), nil
}

// Scan decodes jsonb back into the options map.
func (o *SelectedOptions) Scan(value interface{}) error {
	if value == nil {
		*o = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("selected options: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*o = nil
		return nil
	}
	return json.Unmarshal(raw, o)
}

// Equal compares two option sets key by key.
func (o SelectedOptions) Equal(other SelectedOptions) bool {
	if len(o) != len(other) {
		return false
	}
	for k, v := range o {
		if other[k] != v {
			return false
		}
	}
	return true
}
