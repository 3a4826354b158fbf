package serializer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/bitinglip/bitinglip-cli/pkg/result"
)

// Writer renders Results into a fixed format on a pair of streams.
type Writer struct {
	format Format
	out    io.Writer
	errOut io.Writer
}

// NewWriter creates a Writer bound to the given streams. Unknown formats
// fall back to JSON.
func NewWriter(format Format, out, errOut io.Writer) *Writer {
	if format.IsUnknown() {
		format = FormatJSON
	}
	return &Writer{format: format, out: out, errOut: errOut}
}

// NewStdoutWriter creates a Writer on stdout/stderr.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout, os.Stderr)
}

// Render writes a Result. Failures always render as a single
// "<Kind>: <message>" line on the error stream, regardless of format.
func (w *Writer) Render(res result.Result) error {
	if res.IsErr() {
		_, err := fmt.Fprintf(w.errOut, "%s\n", res.Err.Error())
		return err
	}

	switch w.format {
	case FormatJSON:
		return w.renderJSON(res.Data)
	case FormatYAML:
		return w.renderYAML(res.Data)
	case FormatCSV:
		return w.renderCSV(res.Data)
	default:
		return w.renderTable(res.Data)
	}
}

func (w *Writer) renderJSON(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize to json: %w", err)
	}
	_, err = fmt.Fprintln(w.out, string(out))
	return err
}

func (w *Writer) renderYAML(data any) error {
	out, err := yaml.Marshal(convertNumbers(data))
	if err != nil {
		return fmt.Errorf("failed to serialize to yaml: %w", err)
	}
	_, err = w.out.Write(out)
	return err
}

// convertNumbers rewrites json.Number values into native ints/floats so the
// yaml encoder emits them as numbers rather than quoted strings.
func convertNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = convertNumbers(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = convertNumbers(item)
		}
		return out
	default:
		return v
	}
}

// formatValue renders a single JSON value as a cell. Nested structures
// collapse to compact JSON.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case map[string]any, []any:
		out, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(out)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// objectRows interprets data as a sequence of JSON objects. It returns the
// rows plus the union of their keys, rows first, new keys appended in the
// order rows introduce them (keys within a row sorted for determinism).
func objectRows(data any) ([]map[string]any, []string, bool) {
	list, ok := data.([]any)
	if !ok || len(list) == 0 {
		return nil, nil, false
	}

	rows := make([]map[string]any, 0, len(list))
	var keys []string
	seen := make(map[string]bool)

	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, nil, false
		}
		rows = append(rows, obj)

		rowKeys := make([]string, 0, len(obj))
		for k := range obj {
			rowKeys = append(rowKeys, k)
		}
		sort.Strings(rowKeys)
		for _, k := range rowKeys {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return rows, keys, true
}

// sortedKeys returns the keys of a JSON object in stable order.
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
