package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polyhx/hackatown-backend/internal/models"
)

type memStore struct {
	memQuestions
}

func (m memStore) Create(ctx context.Context, q *models.Question) error {
	q.ID = uuid.New()
	cp := *q
	m.memQuestions[q.ID] = &cp
	return nil
}

func (m memStore) List(ctx context.Context) ([]models.Question, error) {
	var out []models.Question
	for _, q := range m.memQuestions {
		out = append(out, *q)
	}
	return out, nil
}

func (m memStore) Update(ctx context.Context, q *models.Question) error {
	if _, ok := m.memQuestions[q.ID]; !ok {
		return ErrNotFound
	}
	cp := *q
	m.memQuestions[q.ID] = &cp
	return nil
}

func (m memStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.memQuestions[id]; !ok {
		return ErrNotFound
	}
	delete(m.memQuestions, id)
	return nil
}

func newTestRouter(store memStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, NewValidator(store, &countingChecker{}, nil), nil)
	r := gin.New()
	r.POST("/questions", h.Create)
	r.GET("/questions/:id", h.Get)
	r.PUT("/questions/:id", h.Update)
	r.DELETE("/questions/:id", h.Delete)
	r.POST("/questions/:id/validate", h.Validate)
	return r
}

func send(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndValidate(t *testing.T) {
	store := memStore{memQuestions{}}
	r := newTestRouter(store)

	w := send(r, http.MethodPost, "/questions", gin.H{
		"label":           "Caesar",
		"description":     gin.H{"fr": "Chiffre", "en": "Cipher"},
		"type":            "crypto",
		"validation_type": "string",
		"answer":          "flag{abc}",
		"score":           20,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Data models.Question `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	path := "/questions/" + created.Data.ID.String() + "/validate"

	w = send(r, http.MethodPost, path, gin.H{"answer": "flag{abc}"})
	if w.Code != http.StatusOK {
		t.Fatalf("validate: %d %s", w.Code, w.Body.String())
	}
	var scored struct {
		Data struct {
			Score int `json:"score"`
		} `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &scored)
	if scored.Data.Score != 20 {
		t.Fatalf("score = %d", scored.Data.Score)
	}

	w = send(r, http.MethodPost, path, gin.H{"answer": "nope"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong answer: %d", w.Code)
	}
	w = send(r, http.MethodPost, "/questions/"+uuid.NewString()+"/validate", gin.H{"answer": "x"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing question: %d", w.Code)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	r := newTestRouter(memStore{memQuestions{}})
	base := func() gin.H {
		return gin.H{"label": "l", "description": gin.H{}, "type": "gaming", "validation_type": "regex", "answer": "^a$", "score": 1}
	}
	tests := []struct {
		name   string
		mutate func(gin.H)
	}{
		{"unknown type", func(b gin.H) { b["type"] = "upload" }},
		{"unknown validation", func(b gin.H) { b["validation_type"] = "oracle" }},
		{"missing score", func(b gin.H) { delete(b, "score") }},
		{"broken pattern", func(b gin.H) { b["answer"] = "([" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := base()
			tt.mutate(body)
			if w := send(r, http.MethodPost, "/questions", body); w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestDeleteUnknown(t *testing.T) {
	r := newTestRouter(memStore{memQuestions{}})
	if w := send(r, http.MethodDelete, "/questions/"+uuid.NewString(), nil); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
