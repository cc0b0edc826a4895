package export

import (
	"bytes"
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var documentTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time, layout string) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		},
	}

	content, err := templateFS.ReadFile("templates/document.html")
	if err != nil {
		documentTemplate = template.Must(template.New("document").Funcs(funcMap).Parse(fallbackTemplate))
		return
	}
	documentTemplate = template.Must(template.New("document").Funcs(funcMap).Parse(string(content)))
}

// TemplateData holds data for document template rendering. ContentHTML must
// already be sanitized.
type TemplateData struct {
	Title        string
	OwnerName    string
	OwnerEmail   string
	LastEditedBy string
	UpdatedAt    time.Time
	ContentHTML  template.HTML
	History      []TemplateRevision
}

// TemplateRevision is one line of the version history appendix.
type TemplateRevision struct {
	ID        string
	Author    string
	CreatedAt time.Time
	Changes   string
	Current   bool
}

func RenderDocumentHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const fallbackTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">{{.OwnerName}} | {{formatDate .UpdatedAt "Jan 2, 2006"}}</div>
  <div>{{.ContentHTML}}</div>
  {{if .History}}
  <h2>Version history</h2>
  <ul>{{range .History}}<li>{{.Author}}: {{.Changes}}</li>{{end}}</ul>
  {{end}}
</body>
</html>`
