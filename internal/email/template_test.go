package email

import (
	"context"
	"strings"
	"testing"
)

func TestRenderLinkEmail(t *testing.T) {
	html := renderLinkEmail(
		"https://copilot.example.com/signup/pending/abc",
		"Verify your email address",
		"Please verify.",
		"Verify email address",
	)

	for _, marker := range []string{"[URL]", "[TITLE]", "[CONTENT]", "[BTN_NAME]"} {
		if strings.Contains(html, marker) {
			t.Fatalf("placeholder %s not substituted", marker)
		}
	}
	if !strings.Contains(html, `href="https://copilot.example.com/signup/pending/abc"`) {
		t.Fatalf("link missing from body")
	}
	if !strings.Contains(html, "Verify your email address") {
		t.Fatalf("title missing from body")
	}
}

func TestRenderOTPEmail(t *testing.T) {
	html := renderOTPEmail("4821")
	if !strings.Contains(html, "Your OTP is: 4821") {
		t.Fatalf("code missing from body")
	}
	if strings.Contains(html, "[OTP]") {
		t.Fatalf("placeholder not substituted")
	}
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("noreply@example.com", "GE CoPilot", "user@example.com", "Subject line", "<p>hi</p>")

	if !strings.HasPrefix(msg, "From: GE CoPilot <noreply@example.com>\r\n") {
		t.Fatalf("from header wrong: %q", msg)
	}
	if !strings.Contains(msg, "To: user@example.com\r\n") {
		t.Fatalf("to header missing")
	}
	if !strings.Contains(msg, "Content-Type: text/html") {
		t.Fatalf("expected html content type")
	}
	if !strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>") {
		t.Fatalf("body not appended: %q", msg)
	}
}

func TestDisabledSender(t *testing.T) {
	s := NewDisabledSender("smtp not configured")
	if err := s.SendOTP(context.Background(), "a@b.com", "1234"); err == nil || err.Error() != "smtp not configured" {
		t.Fatalf("unexpected error: %v", err)
	}
}
