package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a record inside a collection.
//
// The backend emits integer identifiers for most records and string
// identifiers for logical transactions, and the two forms leak into each
// other through query strings and form inputs. Numbers are stored in
// their decimal form and strings are kept verbatim apart from surrounding
// spaces, so "007" is sent back as "007". Equal and Key compare the
// canonical form, where integer-looking values are normalized (5, "5"
// and "05" are the same ID).
type ID string

// NewID builds an ID from an integer, a string or a json.Number.
func NewID(v any) ID {
	switch t := v.(type) {
	case ID:
		return t.trimmed()
	case string:
		return ID(t).trimmed()
	case json.Number:
		return ID(t.String()).canonical()
	case int:
		return ID(strconv.FormatInt(int64(t), 10))
	case int64:
		return ID(strconv.FormatInt(t, 10))
	case int32:
		return ID(strconv.FormatInt(int64(t), 10))
	case uint:
		return ID(strconv.FormatUint(uint64(t), 10))
	case uint64:
		return ID(strconv.FormatUint(t, 10))
	case nil:
		return ""
	default:
		return ID(fmt.Sprint(t)).canonical()
	}
}

func (id ID) trimmed() ID {
	return ID(strings.TrimSpace(string(id)))
}

func (id ID) canonical() ID {
	s := strings.TrimSpace(string(id))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(strconv.FormatInt(n, 10))
	}
	return ID(s)
}

// Equal reports whether both IDs have the same canonical form.
func (id ID) Equal(other ID) bool {
	return id.canonical() == other.canonical()
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id.canonical() == ""
}

// Int returns the integer value of a numeric ID.
func (id ID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id.canonical()), 10, 64)
	return n, err == nil
}

func (id ID) String() string {
	return string(id.trimmed())
}

// Key is the canonical form, suitable as a map key.
func (id ID) Key() string {
	return string(id.canonical())
}

// MarshalJSON encodes IDs already in integer form as JSON numbers and
// everything else, zero padded digits included, as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	s := id.trimmed()
	if s == "" {
		return []byte("null"), nil
	}
	if s == s.canonical() {
		if _, ok := s.Int(); ok {
			return []byte(s), nil
		}
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*id = ""
		return nil
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("invalid id %s: %w", s, err)
		}
		*id = ID(str).trimmed()
		return nil
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("invalid id %s: %w", s, err)
		}
		*id = ID(num.String()).canonical()
		return nil
	}
}
