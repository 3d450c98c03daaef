package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polyhx/hackatown-backend/internal/auth"
	"github.com/polyhx/hackatown-backend/internal/models"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/x", handlers...)
	return r
}

func do(r http.Handler, header, value string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAndRole(t *testing.T) {
	svc := auth.NewJWTService("secret", 1)
	adminToken, _ := svc.Generate(uuid.New(), "admin@polyhx.io", string(models.RoleAdmin))
	attendeeToken, _ := svc.Generate(uuid.New(), "hacker@polyhx.io", string(models.RoleAttendee))
	r := newRouter(JWT(svc), RequireRole(models.RoleAdmin, models.RoleOrganizer))

	if w := do(r, "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status %d", w.Code)
	}
	if w := do(r, "Authorization", "Bearer garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d", w.Code)
	}
	if w := do(r, "Authorization", "Bearer "+attendeeToken); w.Code != http.StatusForbidden {
		t.Fatalf("attendee: status %d", w.Code)
	}
	w := do(r, "Authorization", "Bearer "+adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("admin: status %d", w.Code)
	}
	if w.Header().Get(HeaderRequestID) == "" {
		t.Fatal("expected request id header")
	}
}

func TestAPIKey(t *testing.T) {
	r := newRouter(APIKey("k"))
	if w := do(r, HeaderAPIKey, "nope"); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key: status %d", w.Code)
	}
	if w := do(r, HeaderAPIKey, "k"); w.Code != http.StatusOK {
		t.Fatalf("right key: status %d", w.Code)
	}
	if w := do(newRouter(APIKey("")), "", ""); w.Code != http.StatusOK {
		t.Fatalf("disabled: status %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("http://localhost:4200"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:4200" {
		t.Fatalf("allow origin %q", got)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
