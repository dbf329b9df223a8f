package records

import (
	"strings"
)

// CloneRecord returns a structurally independent copy of record.
func CloneRecord(record *Record) *Record {
	if record == nil {
		return nil
	}
	cloned := *record
	cloned.Fields = deepCloneMap(record.Fields)
	return &cloned
}

func cloneRecords(list []*Record) []*Record {
	out := make([]*Record, 0, len(list))
	for _, record := range list {
		if record == nil {
			continue
		}
		out = append(out, CloneRecord(record))
	}
	return out
}

func deepCloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = deepCloneValue(value)
	}
	return out
}

func deepCloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return deepCloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = deepCloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(typed))
		for i, item := range typed {
			out[i] = deepCloneMap(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}

func splitPath(path string) []string {
	trimmed := strings.Trim(strings.TrimSpace(path), ".")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ".")
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return nil
		}
	}
	return parts
}

// lookupPath reads a nested payload value addressed by dotted path.
func lookupPath(fields map[string]any, parts []string) (any, bool) {
	var current any = fields
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// assignPath writes value at the dotted path, creating intermediate maps.
// A nil value removes the leaf key.
func assignPath(fields map[string]any, parts []string, value any) error {
	current := fields
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok || next == nil {
			created := map[string]any{}
			current[part] = created
			current = created
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return ErrFieldPath
		}
		current = m
	}
	leaf := parts[len(parts)-1]
	if value == nil {
		delete(current, leaf)
		return nil
	}
	current[leaf] = deepCloneValue(value)
	return nil
}

func isBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	default:
		return false
	}
}
