package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/polyhx/hackatown-backend/pkg/apperr"
)

func TestErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not found", err: apperr.NotFound(apperr.CodeEventNotFound, "event not found"), wantStatus: http.StatusNotFound, wantCode: apperr.CodeEventNotFound},
		{name: "precondition", err: apperr.ErrAttendeeNotSelected, wantStatus: http.StatusPreconditionFailed, wantCode: apperr.CodeAttendeeNotSelected},
		{name: "bad request", err: apperr.ErrInvalidAnswer, wantStatus: http.StatusBadRequest, wantCode: apperr.CodeInvalidAnswer},
		{name: "unclassified", err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Error(c, tt.err, "failed")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body Body
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Success {
				t.Fatal("expected success=false")
			}
			if body.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}
