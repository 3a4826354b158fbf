package serializer

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var headerCaser = cases.Title(language.English)

// renderTable writes data as a human-aligned table. A homogeneous object
// list becomes a column table, a single object becomes key/value lines, and
// anything else is printed as-is.
func (w *Writer) renderTable(data any) error {
	if rows, keys, ok := objectRows(data); ok {
		return w.renderListTable(rows, keys)
	}

	switch val := data.(type) {
	case map[string]any:
		return w.renderObjectTable(val)
	case []any:
		if len(val) == 0 {
			_, err := fmt.Fprintln(w.out, "No data available")
			return err
		}
		for _, item := range val {
			if _, err := fmt.Fprintln(w.out, formatValue(item)); err != nil {
				return err
			}
		}
		return nil
	case nil:
		_, err := fmt.Fprintln(w.out, "No data available")
		return err
	default:
		_, err := fmt.Fprintln(w.out, formatValue(val))
		return err
	}
}

func (w *Writer) renderListTable(rows []map[string]any, keys []string) error {
	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)

	headers := make([]string, len(keys))
	for i, k := range keys {
		headers[i] = headerCaser.String(strings.ReplaceAll(k, "_", " "))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, row := range rows {
		cells := make([]string, len(keys))
		for i, k := range keys {
			cells[i] = formatValue(row[k]) // missing keys render empty
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func (w *Writer) renderObjectTable(obj map[string]any) error {
	tw := tabwriter.NewWriter(w.out, 0, 4, 1, ' ', 0)
	for _, k := range sortedKeys(obj) {
		fmt.Fprintf(tw, "%s:\t%s\n", k, formatValue(obj[k]))
	}
	return tw.Flush()
}
