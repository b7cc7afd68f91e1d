package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// wireTimeLayout ISO-8601 in UTC with millisecond precision
const wireTimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime converts an instant to its persisted form
func FormatTime(t time.Time) string {
	return t.UTC().Format(wireTimeLayout)
}

// ParseTime accepts any RFC 3339 timestamp, with or without fractional seconds
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q: %v", ErrInvalidDocument, s, err)
	}
	return t, nil
}

// ParseOptionalTime returns the zero time for an empty string
func ParseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return ParseTime(s)
}

// Encode marshals a document
func Encode(v interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrInvalidDocument, err)
	}
	return data, nil
}

// Decode unmarshals a document
func Decode(data json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrInvalidDocument, err)
	}
	return nil
}

// MergePatch applies patch to a stored JSON object and returns the new object
func MergePatch(doc json.RawMessage, patch Patch) (json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &fields); err != nil {
			return nil, fmt.Errorf("%w: stored value is not an object: %v", ErrInvalidDocument, err)
		}
	}

	for k, v := range patch {
		if v == nil {
			delete(fields, k)
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: patch field %s: %v", ErrInvalidDocument, k, err)
		}
		fields[k] = raw
	}

	return json.Marshal(fields)
}

// FieldEquals reports whether the top-level field of doc is the string expected
func FieldEquals(doc json.RawMessage, field, expected string) (bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false, fmt.Errorf("%w: stored value is not an object: %v", ErrInvalidDocument, err)
	}

	raw, ok := fields[field]
	if !ok {
		return false, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		// поле есть, но это не строка
		return false, nil
	}
	return value == expected, nil
}

// SplitPatch separates fields to set from fields to remove (nil values)
func SplitPatch(patch Patch) (Patch, []string) {
	set := make(Patch, len(patch))
	removed := make([]string, 0)
	for k, v := range patch {
		if v == nil {
			removed = append(removed, k)
			continue
		}
		set[k] = v
	}
	sort.Strings(removed)
	return set, removed
}

// ValidateDocument accepts only JSON objects
func ValidateDocument(v json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(v, &fields); err != nil || fields == nil {
		return fmt.Errorf("%w: value must be a JSON object", ErrInvalidDocument)
	}
	return nil
}
