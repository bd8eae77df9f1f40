package console

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var templateFuncs = sprig.TxtFuncMap()

// ExpandTemplate expands tmplStr with data.
func ExpandTemplate(tmplStr string, data any) (string, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

const (
	summaryTemplate = `Map: {{ .Rooms }} {{ if eq .Rooms 1 }}room{{ else }}rooms{{ end }}, ` +
		`{{ .Marks }} {{ if eq .Marks 1 }}mark{{ else }}marks{{ end }}` +
		`{{ if .Dirty }} (unsaved changes){{ end }}.
Undo: {{ .Undo }}, redo: {{ .Redo }}.
`

	updateTemplate = `{{ .Action | title }} batch {{ .Batch | trunc 8 }}: ` +
		`{{ .Changes }} {{ if eq .Changes 1 }}change{{ else }}changes{{ end }}, {{ .Rooms }} rooms` +
		`{{ with .Flags }} [{{ join ", " . }}]{{ end }}.
`

	historyTemplate = `{{ range . }}{{ .Time.UTC.Format "2006-01-02 15:04:05" }}  ` +
		`{{ .Action | printf "%-6s" }}  {{ .Source | default "-" | printf "%-10s" }}  ` +
		`{{ .Changes | printf "%4d" }} changes  {{ .Rooms | printf "%6d" }} rooms` +
		`{{ with .Flags }}  {{ join "," . }}{{ end }}
{{ else }}No history recorded.
{{ end }}`
)

type summaryData struct {
	Rooms int
	Marks int
	Dirty bool
	Undo  int
	Redo  int
}

type updateData struct {
	Action  string
	Batch   string
	Changes int
	Rooms   int
	Flags   []string
}
