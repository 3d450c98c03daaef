package mail

import (
	"testing"

	"github.com/polyhx/hackatown-backend/internal/models"
)

func TestBuildMessage(t *testing.T) {
	el := &models.EmailLog{
		Sender:     "PolyHx <info@polyhx.io>",
		Recipients: []string{"ada@example.com", "grace@example.com"},
		Subject:    "Selection",
		Text:       "Hi",
		HTML:       "<p>Hi</p>",
	}
	msg, err := BuildMessage(el)
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}
	rcpts, err := msg.GetRecipients()
	if err != nil {
		t.Fatalf("GetRecipients: %v", err)
	}
	if len(rcpts) != 2 {
		t.Fatalf("recipients = %v", rcpts)
	}

	el.Sender = "not an address"
	if _, err := BuildMessage(el); err == nil {
		t.Fatal("expected invalid sender error")
	}
}
