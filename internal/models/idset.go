// internal/models/idset.go
package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// IDSet is a normalized set of identifiers (gift, passion or skill ids).
// A nil IDSet is the empty set; callers never need to check for absence.
type IDSet []string

// NewIDSet trims, lower-cases, de-duplicates and sorts ids. Blank ids are dropped.
func NewIDSet(ids ...string) IDSet {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make(IDSet, 0, len(ids))
	for _, id := range ids {
		n := NormalizeID(id)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// NormalizeID applies the same folding NewIDSet uses, for comparing a single id
// (for example a ministry id) against a set.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func (s IDSet) Len() int { return len(s) }

func (s IDSet) IsEmpty() bool { return len(s) == 0 }

// Contains reports whether id is in the set. Sets built with NewIDSet are sorted, so
// this is a binary search.
func (s IDSet) Contains(id string) bool {
	id = NormalizeID(id)
	i := sort.SearchStrings(s, id)
	return i < len(s) && s[i] == id
}

// Intersect returns the members of s that are also in other, in sorted order.
func (s IDSet) Intersect(other IDSet) IDSet {
	var out IDSet
	for _, id := range s {
		if other.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

// Overlaps reports whether the two sets share at least one id.
func (s IDSet) Overlaps(other IDSet) bool {
	for _, id := range s {
		if other.Contains(id) {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts null, an array of strings, a single string, or an object whose
// keys are the identifiers. These are the shapes the upstream JSON columns hold.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*s = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = NewIDSet(list...)
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = NewIDSet(strings.Split(single, ",")...)
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		*s = NewIDSet(keys...)
		return nil
	}

	return fmt.Errorf("unsupported id set shape: %s", trimmed)
}

// MarshalJSON always emits an array so consumers see a single shape.
func (s IDSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}
