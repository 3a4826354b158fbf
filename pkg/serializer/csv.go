package serializer

import (
	"encoding/csv"
	"fmt"
)

// renderCSV writes data as CSV with a header row built from the union of
// object keys. Values containing the delimiter or quotes are escaped per
// standard CSV quoting.
func (w *Writer) renderCSV(data any) error {
	cw := csv.NewWriter(w.out)

	if rows, keys, ok := objectRows(data); ok {
		if err := cw.Write(keys); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		for _, row := range rows {
			record := make([]string, len(keys))
			for i, k := range keys {
				record[i] = formatValue(row[k])
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()
	}

	switch val := data.(type) {
	case map[string]any:
		keys := sortedKeys(val)
		record := make([]string, len(keys))
		for i, k := range keys {
			record[i] = formatValue(val[k])
		}
		if err := cw.Write(keys); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	case []any:
		if err := cw.Write([]string{"value"}); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		for _, item := range val {
			if err := cw.Write([]string{formatValue(item)}); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	case nil:
		// nothing to write
	default:
		if err := cw.Write([]string{"value"}); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		if err := cw.Write([]string{formatValue(val)}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
