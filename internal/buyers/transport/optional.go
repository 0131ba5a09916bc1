package transport

import (
	"encoding/json"
	"strconv"
	"strings"
)

// OptionalInt64 distinguishes an absent budget from an explicit null or zero.
// Accepts JSON numbers and decimal strings; a value that cannot be coerced to
// a non-negative integer is recorded as invalid rather than failing the whole
// body parse, so it surfaces as a field-level validation error.
type OptionalInt64 struct {
	Value   *int64
	Set     bool
	Invalid bool
}

func (o OptionalInt64) IsZero() bool {
	return !o.Set
}

func (o *OptionalInt64) UnmarshalJSON(data []byte) error {
	o.Set = true
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		raw = text
	}

	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed < 0 {
		o.Invalid = true
		return nil
	}

	o.Value = &parsed
	return nil
}

// TagList accepts either a comma-separated string or an ordered list of
// strings and normalizes both to trimmed, non-empty values in input order.
type TagList struct {
	Values []string
	Set    bool
}

func (t TagList) IsZero() bool {
	return !t.Set
}

func (t *TagList) UnmarshalJSON(data []byte) error {
	t.Set = true
	if string(data) == "null" {
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		t.Values = SplitTags(text)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	t.Values = normalizeTags(list)
	return nil
}

// SplitTags turns a comma-delimited tag string into the normalized list form.
func SplitTags(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return normalizeTags(strings.Split(value, ","))
}

// JoinTags renders a tag list back to the stored delimited form.
// Returns nil for an empty list so the column stays NULL.
func JoinTags(tags []string) *string {
	normalized := normalizeTags(tags)
	if len(normalized) == 0 {
		return nil
	}
	joined := strings.Join(normalized, ",")
	return &joined
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
