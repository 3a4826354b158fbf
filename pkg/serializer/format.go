// Package serializer renders call results in the user-selected output
// format. Rendering is pure text production: success payloads go to the
// output stream, failures go to the error stream as a single line.
package serializer

// Format selects the output representation.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatYAML  Format = "yaml"
)

// IsUnknown reports whether the format is not one of the supported values.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatTable, FormatJSON, FormatCSV, FormatYAML:
		return false
	}
	return true
}

// SupportedFormats lists the valid format names for error messages.
func SupportedFormats() []Format {
	return []Format{FormatTable, FormatJSON, FormatCSV, FormatYAML}
}
