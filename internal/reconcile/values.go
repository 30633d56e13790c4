package reconcile

import (
	"encoding/json"
	"strconv"
	"strings"

	"hospital-recruitment-backend/internal/domain"
)

// lookup resolves a dotted path ("department.name") through nested objects.
func lookup(record map[string]any, path string) (any, bool) {
	var cur any = record
	for _, part := range strings.Split(path, ".") {
		obj := object(cur)
		if obj == nil {
			return nil, false
		}
		v, ok := obj[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func object(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case domain.RawApplicantRecord:
		return m
	default:
		return nil
	}
}

// objects returns the object entries of an array value; anything else is skipped.
func objects(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if obj := object(item); obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

// text renders a scalar as a display string. Objects, arrays and nil become "".
func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// field returns the first non-empty text among keys.
func field(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := text(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

func flag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y", "on":
			return true
		}
	}
	return false
}
