package storage

import "testing"

func TestValidateCVType(t *testing.T) {
	tests := map[string]bool{
		"application/pdf":               true,
		"Application/PDF; charset=x":    true,
		"image/png":                     false,
		"":                              false,
		"application/x-msdownload":      false,
	}
	for ct, want := range tests {
		if got := ValidateCVType(ct); got != want {
			t.Errorf("ValidateCVType(%q) = %v, want %v", ct, got, want)
		}
	}
}

func TestCVKey(t *testing.T) {
	if got := CVKey("abc"); got != "cvs/abc.pdf" {
		t.Fatalf("CVKey = %q", got)
	}
}

func TestPresignExpireDefault(t *testing.T) {
	s := &S3{}
	if s.PresignExpire().Minutes() != 15 {
		t.Fatalf("default presign = %v", s.PresignExpire())
	}
}
