package invoice

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTmpl = template.Must(template.New("email.html").Funcs(template.FuncMap{
	"money":        money,
	"longDate":     longDate,
	"longDateTime": longDateTime,
}).ParseFS(templateFS, "templates/email.html"))

// RenderHTML renders the email body for v.
func RenderHTML(v View) (string, error) {
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("invoice: render html: %w", err)
	}
	return buf.String(), nil
}
