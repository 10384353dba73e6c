package collection

import (
	"catalog-admin/internal/model"
)

// DecodeList unwraps a list response: a bare array, or an object holding the
// array under "data" or the plural kind name. ok is false when body has none
// of those shapes.
func DecodeList(body any, kind model.Kind) (recs []model.Record, ok bool) {
	switch t := body.(type) {
	case nil:
		return nil, true
	case []any:
		return records(t), true
	case map[string]any:
		for _, key := range []string{"data", kind.Plural()} {
			if arr, isArr := t[key].([]any); isArr {
				return records(arr), true
			}
		}
		// {"data": {"users": [...]}} shows up on paginated deployments.
		if inner, isObj := t["data"].(map[string]any); isObj {
			if arr, isArr := inner[kind.Plural()].([]any); isArr {
				return records(arr), true
			}
			if arr, isArr := inner["data"].([]any); isArr {
				return records(arr), true
			}
		}
	}
	return nil, false
}

// DecodeOne unwraps a single-entity response: the entity under "data" or the
// singular kind name, or the object itself when it carries an id. Bare
// acknowledgements like {"status":"success"} are not entities.
func DecodeOne(body any, kind model.Kind) (model.Record, bool) {
	obj, isObj := body.(map[string]any)
	if !isObj {
		return nil, false
	}
	for _, key := range []string{"data", string(kind)} {
		if inner, ok := obj[key].(map[string]any); ok {
			return model.Record(inner), true
		}
	}
	rec := model.Record(obj)
	if CanonicalID(rec, kind, "_id").Valid() {
		return rec, true
	}
	return nil, false
}

func records(arr []any) []model.Record {
	out := make([]model.Record, 0, len(arr))
	for _, v := range arr {
		if obj, ok := v.(map[string]any); ok {
			out = append(out, model.Record(obj))
		}
	}
	return out
}
