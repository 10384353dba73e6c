package statusutil

import (
	"fmt"
	"strings"
)

const (
	Active   = "active"
	Inactive = "inactive"
)

// IsActive maps a raw backend status to the in-memory flag.
//
// Active values: the string "active", the number or string 1, boolean true.
// Everything else (including nil and "ACTIVE") is inactive. A bool input maps
// to itself, so re-normalizing an already normalized flag is a no-op.
func IsActive(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == Active || t == "1"
	case float64:
		return t == 1
	case float32:
		return t == 1
	case int:
		return t == 1
	case int64:
		return t == 1
	case int32:
		return t == 1
	case interface{ String() string }:
		// json.Number
		return t.String() == "1"
	default:
		return false
	}
}

// Label is the wire spelling of a normalized flag.
func Label(active bool) string {
	if active {
		return Active
	}
	return Inactive
}

// Flag is the numeric spelling some backends expect (is_active, isActive).
func Flag(active bool) int {
	if active {
		return 1
	}
	return 0
}

type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterInactive Filter = "inactive"
)

func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "inactive":
		return FilterInactive, nil
	default:
		return "", fmt.Errorf("invalid status filter: %q (want all|active|inactive)", s)
	}
}

// Match reports whether a normalized flag passes the filter.
func (f Filter) Match(active bool) bool {
	switch f {
	case FilterActive:
		return active
	case FilterInactive:
		return !active
	default:
		return true
	}
}

// Next cycles all -> active -> inactive -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll, "":
		return FilterActive
	case FilterActive:
		return FilterInactive
	default:
		return FilterAll
	}
}
