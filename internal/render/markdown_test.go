package render

import (
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"emphasis", "**done**", "<strong>done</strong>"},
		{"strikethrough", "~~old~~", "<del>old</del>"},
		{"hard wraps", "one\ntwo", "<br>"},
		{"link", "https://example.com", `<a href="https://example.com">`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Markdown(tc.src); !strings.Contains(got, tc.want) {
				t.Fatalf("Markdown(%q) = %q, want substring %q", tc.src, got, tc.want)
			}
		})
	}
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	got := Markdown("<script>alert(1)</script>")
	if strings.Contains(got, "<script>") {
		t.Fatalf("raw html passed through: %q", got)
	}
}

func TestMarkdownEmpty(t *testing.T) {
	if got := Markdown("   "); got != "" {
		t.Fatalf("got %q", got)
	}
}
