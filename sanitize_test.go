package sitebridge

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<b>bold</b> text", "bold text"},
		{"<script>alert(1)</script>hi", "hi"},
		{"multi\n  line\t text", "multi line text"},
		{"  padded  ", "padded"},
		{"a &amp; b", "a & b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeText(tt.in); got != tt.want {
			t.Errorf("sanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizePostHTML(t *testing.T) {
	in := `<p>Hello <strong>world</strong></p>` +
		`<script>alert(1)</script>` +
		`<img src="http://example.com/a.jpg" alt="pic">` +
		`<figure class="wide"><figcaption>cap</figcaption></figure>` +
		`<a href="http://example.com" onclick="steal()">link</a>`
	got := sanitizePostHTML(in)

	for _, want := range []string{"<p>", "<strong>world</strong>", "<img", "<figure", "<figcaption>cap</figcaption>"} {
		if !strings.Contains(got, want) {
			t.Errorf("sanitized output missing %q: %q", want, got)
		}
	}
	for _, banned := range []string{"<script", "onclick"} {
		if strings.Contains(got, banned) {
			t.Errorf("sanitized output still contains %q: %q", banned, got)
		}
	}
}
