package format

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
)

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - table (values implementing Tabler only)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "table":
		t, ok := v.(Tabler)
		if !ok {
			return fmt.Errorf("table output is not available here; use --format json")
		}
		return WriteTable(w, t.Table())
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON with sorted object keys.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = sonic.ConfigStd.MarshalIndent(v, "", "  ")
	} else {
		b, err = sonic.ConfigStd.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}
