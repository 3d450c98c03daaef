package mail

import (
	"strings"
	"testing"

	"github.com/polyhx/hackatown-backend/internal/models"
)

func TestRender(t *testing.T) {
	tmpl := &models.EmailTemplate{
		Name:    "hackatown2018-selection",
		Subject: "Welcome {{.name}}",
		HTML:    "<h1>Congrats {{.name}}!</h1>",
		Text:    "Congrats {{.name}}! {{.missing}}done",
	}
	out, err := Render(tmpl, map[string]string{"name": "<Ada>"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Subject != "Welcome <Ada>" {
		t.Fatalf("subject = %q", out.Subject)
	}
	if !strings.Contains(out.HTML, "Congrats &lt;Ada&gt;!") {
		t.Fatalf("html not escaped: %q", out.HTML)
	}
	if out.Text != "Congrats <Ada>! done" {
		t.Fatalf("text = %q", out.Text)
	}
}

func TestRenderParseError(t *testing.T) {
	if _, err := Render(&models.EmailTemplate{Name: "broken", Text: "{{.name"}, nil); err == nil {
		t.Fatal("expected parse error")
	}
}
