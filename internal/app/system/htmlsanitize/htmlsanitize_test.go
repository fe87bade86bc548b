package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/commonshub/internal/app/system/htmlsanitize"
)

func TestSanitize_PlainTextUnchanged(t *testing.T) {
	result := htmlsanitize.Sanitize("Hello, World!")
	if result != "Hello, World!" {
		t.Errorf("expected plain text unchanged, got %q", result)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	input := "<p>Hello</p><script>alert('xss')</script>"
	result := htmlsanitize.Sanitize(input)
	if result != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", result)
	}
}

func TestSanitize_RemovesOnclick(t *testing.T) {
	input := `<button onclick="alert('xss')">Click</button>`
	result := htmlsanitize.Sanitize(input)
	if result == input {
		t.Error("expected onclick attribute to be removed")
	}
}

func TestSanitize_AllowsSafeLinks(t *testing.T) {
	input := `<a href="https://example.com">Link</a>`
	result := htmlsanitize.Sanitize(input)
	if !strings.Contains(result, "https://example.com") {
		t.Errorf("expected safe link preserved, got %q", result)
	}
}

func TestPlainText_StripsAllMarkup(t *testing.T) {
	input := "<p><strong>Bold</strong> comment</p>"
	result := htmlsanitize.PlainText(input)
	if result != "Bold comment" {
		t.Errorf("expected markup stripped, got %q", result)
	}
}
