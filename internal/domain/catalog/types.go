package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// StringSet is an unordered set of strings persisted as a jsonb array.
// Storage order is normalized (sorted, deduplicated) so rows are
// deterministic; comparison is by set membership.
type StringSet []string

// NewStringSet builds a normalized set from the given values
func NewStringSet(values ...string) StringSet {
	seen := make(map[string]struct{}, len(values))
	out := make(StringSet, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether the set includes the given value
func (s StringSet) Contains(value string) bool {
	for _, v := range s {
		if v == value {
			return true
		}
	}
	return false
}

// Equal reports set equality, ignoring order and duplicates
func (s StringSet) Equal(other StringSet) bool {
	a := NewStringSet(s...)
	b := NewStringSet(other...)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Value implements driver.Valuer, serializing to a JSON array
func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(NewStringSet(s...))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner, accepting jsonb bytes or text
func (s *StringSet) Scan(src interface{}) error {
	if src == nil {
		*s = StringSet{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringSet", src)
	}
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewStringSet(raw...)
	return nil
}

// GormDataType tells GORM which column type to use
func (StringSet) GormDataType() string {
	return "jsonb"
}
