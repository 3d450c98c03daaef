package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/polyhx/hackatown-backend/internal/models"
)

// Rendered is a template expanded with variables.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Render expands the subject, HTML and text parts of t. Missing variables render empty.
// HTML values are escaped.
func Render(t *models.EmailTemplate, vars map[string]string) (Rendered, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	var out Rendered
	var err error
	if out.Subject, err = renderText(t.Name+":subject", t.Subject, vars); err != nil {
		return Rendered{}, err
	}
	if out.Text, err = renderText(t.Name+":text", t.Text, vars); err != nil {
		return Rendered{}, err
	}
	if t.HTML != "" {
		tmpl, err := htmltemplate.New(t.Name + ":html").Option("missingkey=zero").Parse(t.HTML)
		if err != nil {
			return Rendered{}, fmt.Errorf("parse html: %w", err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, vars); err != nil {
			return Rendered{}, fmt.Errorf("render html: %w", err)
		}
		out.HTML = buf.String()
	}
	return out, nil
}

func renderText(name, src string, vars map[string]string) (string, error) {
	if src == "" {
		return "", nil
	}
	tmpl, err := texttemplate.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
