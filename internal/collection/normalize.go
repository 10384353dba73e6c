package collection

import (
	"strings"

	"catalog-admin/internal/model"
	"catalog-admin/internal/statusutil"
)

// statusKeys are read in order; the first present one decides.
var statusKeys = []string{"status", "active", "is_active", "isActive"}

// IDKeys returns the id fields consulted for kind, highest priority first.
func IDKeys(kind model.Kind, extra ...string) []string {
	k := string(kind)
	keys := []string{"id", "ID", k + "_id", "id_" + k}
	return append(keys, extra...)
}

// CanonicalID derives the single identifier of a raw record. The first
// defined value among IDKeys wins; a record carrying none of them (or only a
// zero) gets the empty ID and never matches an id lookup.
func CanonicalID(rec model.Record, kind model.Kind, extra ...string) model.ID {
	for _, key := range IDKeys(kind, extra...) {
		v, ok := rec.First(key)
		if !ok {
			continue
		}
		s := strings.TrimSpace(model.Stringify(v))
		if s == "" || s == "0" {
			continue
		}
		return model.ID(s)
	}
	return ""
}

// Active reads the normalized status of a raw record, consulting the
// alternative spellings when "status" is absent.
func Active(rec model.Record) bool {
	v, ok := rec.First(statusKeys...)
	if !ok {
		return false
	}
	return statusutil.IsActive(v)
}

// hasStatus reports whether the record carries any status field at all.
func hasStatus(rec model.Record) bool {
	_, ok := rec.First(statusKeys...)
	return ok
}

// str returns the first non-empty string among keys.
func str(rec model.Record, keys ...string) string {
	v, ok := rec.First(keys...)
	if !ok {
		return ""
	}
	return model.Stringify(v)
}

func has(rec model.Record, keys ...string) bool {
	_, ok := rec.First(keys...)
	return ok
}
