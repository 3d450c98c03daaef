package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/apperr"
	"github.com/polyhx/hackatown-backend/pkg/queue"
)

type memTemplates map[string]*models.EmailTemplate

func (m memTemplates) GetByName(ctx context.Context, name string) (*models.EmailTemplate, error) {
	t, ok := m[name]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}

type memLogs struct {
	created []*models.EmailLog
	failed  map[uuid.UUID]bool
}

func (m *memLogs) Create(ctx context.Context, el *models.EmailLog) error {
	el.ID = uuid.New()
	el.Status = models.EmailLogStatusPending
	m.created = append(m.created, el)
	return nil
}

func (m *memLogs) MarkFailed(ctx context.Context, id uuid.UUID, reason string, final bool) error {
	m.failed[id] = final
	return nil
}

type memQueue struct {
	payloads []queue.EmailPayload
	err      error
}

func (q *memQueue) EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error {
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, payload)
	return nil
}

func newSendRouter(logs *memLogs, q *memQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	templates := memTemplates{"hackatown2018-selection": {
		Name:    "hackatown2018-selection",
		Subject: "Selection",
		HTML:    "<p>Hi {{.name}}</p>",
		Text:    "Hi {{.name}}",
	}}
	h := NewHandler(templates, logs, q, nil)
	r := gin.New()
	r.POST("/email", h.Send)
	return r
}

func post(r http.Handler, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/email", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendTemplate(t *testing.T) {
	logs := &memLogs{failed: map[uuid.UUID]bool{}}
	q := &memQueue{}
	r := newSendRouter(logs, q)

	w := post(r, models.Email{
		From:      "PolyHx <info@polyhx.io>",
		To:        []string{"ada@example.com"},
		Subject:   "Hackatown 2018 - Selection",
		Template:  "hackatown2018-selection",
		Variables: map[string]string{"name": "Ada"},
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if len(logs.created) != 1 || len(q.payloads) != 1 || q.payloads[0].EmailLogID != logs.created[0].ID {
		t.Fatalf("logs %d, payloads %+v", len(logs.created), q.payloads)
	}
	el := logs.created[0]
	if el.Subject != "Hackatown 2018 - Selection" || el.Text != "Hi Ada" || el.HTML != "<p>Hi Ada</p>" {
		t.Fatalf("log = %+v", el)
	}
}

func TestSendValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    models.Email
		want     int
		wantCode string
	}{
		{"no recipients", models.Email{From: "a@b.c", Subject: "s", Text: "t"}, http.StatusBadRequest, ""},
		{"bad recipient", models.Email{From: "a@b.c", To: []string{"nope"}, Subject: "s", Text: "t"}, http.StatusBadRequest, ""},
		{"no body", models.Email{From: "a@b.c", To: []string{"x@y.z"}, Subject: "s"}, http.StatusBadRequest, ""},
		{"no subject", models.Email{From: "a@b.c", To: []string{"x@y.z"}, Text: "t"}, http.StatusBadRequest, ""},
		{"unknown template", models.Email{From: "a@b.c", To: []string{"x@y.z"}, Template: "nope"}, http.StatusNotFound, apperr.CodeTemplateNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := &memLogs{failed: map[uuid.UUID]bool{}}
			q := &memQueue{}
			w := post(newSendRouter(logs, q), tt.email)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if tt.wantCode != "" {
				var body struct {
					Code string `json:"code"`
				}
				_ = json.Unmarshal(w.Body.Bytes(), &body)
				if body.Code != tt.wantCode {
					t.Fatalf("code = %q", body.Code)
				}
			}
			if len(logs.created) != 0 || len(q.payloads) != 0 {
				t.Fatal("invalid request was recorded")
			}
		})
	}
}

func TestSendQueueDown(t *testing.T) {
	logs := &memLogs{failed: map[uuid.UUID]bool{}}
	q := &memQueue{err: errors.New("redis down")}
	w := post(newSendRouter(logs, q), models.Email{From: "a@b.c", To: []string{"x@y.z"}, Subject: "s", Text: "t"})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
	if len(logs.created) != 1 || !logs.failed[logs.created[0].ID] {
		t.Fatalf("log not marked failed: %+v", logs.failed)
	}
}
