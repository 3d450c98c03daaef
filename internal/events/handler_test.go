package events

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polyhx/hackatown-backend/internal/middleware"
	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/apperr"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func newTestRouter(f *fixture, userID uuid.UUID, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f.svc, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, string(role))
		c.Next()
	})
	r.GET("/events/:id", h.Get)
	r.POST("/events/:id/attendees", h.Register)
	r.PUT("/events/:id/attendees/me/confirm", h.Confirm)
	r.GET("/events/:id/attendees/me/status", h.MyStatus)
	r.GET("/events/:id/attendees", h.ListAttendees)
	r.PUT("/events/:id/selection", h.Select)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
	}
	return w, env
}

func TestConfirmEndpoint(t *testing.T) {
	f := newFixture()
	selected, _ := f.registered(true, false, false)
	pending, _ := f.registered(false, false, false)
	path := "/events/" + f.eventID.String() + "/attendees/me/confirm"

	w, env := doJSON(t, newTestRouter(f, pending.ID, models.RoleAttendee), http.MethodPut, path, gin.H{"attending": true})
	if w.Code != http.StatusPreconditionFailed || env.Code != apperr.CodeAttendeeNotSelected {
		t.Fatalf("not selected: status %d code %q", w.Code, env.Code)
	}

	w, env = doJSON(t, newTestRouter(f, selected.ID, models.RoleAttendee), http.MethodPut, path, gin.H{"attending": false})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, env.Error)
	}
	var data struct {
		Status models.AttendeeStatus `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Status != models.StatusDeclined {
		t.Fatalf("data = %s, err = %v", env.Data, err)
	}

	w, _ = doJSON(t, newTestRouter(f, selected.ID, models.RoleAttendee), http.MethodPut, path, gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing attending: status = %d, want 400", w.Code)
	}
}

func TestMyStatusEndpoint(t *testing.T) {
	f := newFixture()
	u, _ := f.registered(true, false, false)

	w, env := doJSON(t, newTestRouter(f, u.ID, models.RoleAttendee), http.MethodGet, "/events/"+f.eventID.String()+"/attendees/me/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var data struct {
		Status models.AttendeeStatus `json:"status"`
	}
	_ = json.Unmarshal(env.Data, &data)
	if data.Status != models.StatusSelected {
		t.Fatalf("status = %q", data.Status)
	}

	w, env = doJSON(t, newTestRouter(f, uuid.New(), models.RoleAttendee), http.MethodGet, "/events/"+f.eventID.String()+"/attendees/me/status", nil)
	if w.Code != http.StatusPreconditionFailed || env.Code != apperr.CodeUserNotAttendee {
		t.Fatalf("non attendee: status %d code %q", w.Code, env.Code)
	}
}

func TestRegisterEndpointUnknownEvent(t *testing.T) {
	f := newFixture()
	u, _ := f.newUser("ada@example.com", "Ada")
	w, env := doJSON(t, newTestRouter(f, u.ID, models.RoleAttendee), http.MethodPost, "/events/"+uuid.NewString()+"/attendees", nil)
	if w.Code != http.StatusNotFound || env.Code != apperr.CodeEventNotFound {
		t.Fatalf("status %d code %q", w.Code, env.Code)
	}
	w, _ = doJSON(t, newTestRouter(f, u.ID, models.RoleAttendee), http.MethodPost, "/events/not-a-uuid/attendees", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status = %d", w.Code)
	}
}

func TestListAttendeesEndpoint(t *testing.T) {
	f := newFixture()
	f.registered(true, true, false)
	f.registered(false, false, false)

	w, env := doJSON(t, newTestRouter(f, uuid.New(), models.RoleOrganizer), http.MethodGet,
		"/events/"+f.eventID.String()+"/attendees?search=Confirmed&page=1&per_page=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, env.Error)
	}
	var page struct {
		Data       []models.AttendeeListItem `json:"data"`
		TotalCount int64                     `json:"total_count"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalCount != 1 || len(page.Data) != 1 || page.Data[0].Status != models.StatusConfirmed {
		t.Fatalf("page = %+v", page)
	}
	if f.attendees.filterParams.PerPage != 10 {
		t.Fatalf("per_page = %d", f.attendees.filterParams.PerPage)
	}
}

func TestSelectEndpoint(t *testing.T) {
	f := newFixture()
	u, _ := f.registered(false, false, false)
	path := "/events/" + f.eventID.String() + "/selection"

	w, env := doJSON(t, newTestRouter(f, uuid.New(), models.RoleAdmin), http.MethodPut, path, gin.H{"user_ids": []uuid.UUID{u.ID}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, env.Error)
	}
	var results []SelectionResult
	if err := json.Unmarshal(env.Data, &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 1 || !results[0].Selected || !results[0].Notified {
		t.Fatalf("results = %+v", results)
	}

	w, _ = doJSON(t, newTestRouter(f, uuid.New(), models.RoleAdmin), http.MethodPut, path, gin.H{"user_ids": []string{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty ids: status = %d", w.Code)
	}
}

func TestGetEventHidesRegistrationsFromAttendees(t *testing.T) {
	f := newFixture()
	f.registered(false, false, false)
	path := "/events/" + f.eventID.String()

	_, env := doJSON(t, newTestRouter(f, uuid.New(), models.RoleAttendee), http.MethodGet, path, nil)
	var e models.Event
	_ = json.Unmarshal(env.Data, &e)
	if len(e.Attendees) != 0 {
		t.Fatalf("attendee sees %d registrations", len(e.Attendees))
	}
	_, env = doJSON(t, newTestRouter(f, uuid.New(), models.RoleAdmin), http.MethodGet, path, nil)
	e = models.Event{}
	_ = json.Unmarshal(env.Data, &e)
	if len(e.Attendees) != 1 {
		t.Fatalf("admin sees %d registrations", len(e.Attendees))
	}
}
