package templates

// SampleData is the record substituted into a template for preview.
// Values are keyed by data path ("booking.guest_name"), not by placeholder,
// so field mappings can repoint a placeholder without touching the data.
type SampleData struct {
	Source      string            `json:"source"` // "database" or "placeholder"
	RecordCount int64             `json:"record_count"`
	Values      map[string]string `json:"values"`
}

// Render substitutes sample data into template content. Every known
// placeholder of the category is resolved through its data path (with
// tenant field-mapping overrides applied); placeholders without a value
// are left as-is so the administrator can spot incomplete mappings.
// Pure transformation, no I/O. Output is display-only and must be shown
// inside a sandboxed context by the caller.
func Render(content string, def *Definition, data *SampleData, mappings map[string]string) string {
	if data == nil || len(data.Values) == 0 {
		return content
	}

	out := content
	for placeholder := range def.Fields {
		path, ok := def.ResolvePath(placeholder, mappings)
		if !ok {
			continue
		}
		value, ok := data.Values[path]
		if !ok {
			continue
		}
		out = placeholderPattern(placeholder).ReplaceAllLiteralString(out, value)
	}
	return out
}
