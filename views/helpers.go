package views

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// page wraps a render function into a templ.Component. Pages are written
// with a buffer so a failed render never sends half a document.
func page(fn func(buf *bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		fn(&buf)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func esc(s string) string {
	return html.EscapeString(s)
}

// PostJsonLD produces a Schema.org BlogPosting JSON-LD block for a post page.
func PostJsonLD(site Site, post PostData) string {
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Excerpt,
		"datePublished": post.Date,
		"url":           post.Permalink,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   post.Permalink,
		},
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// head writes shared page chrome.
func head(buf *bytes.Buffer, title string) {
	buf.WriteString("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">")
	buf.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
	buf.WriteString("<title>" + esc(title) + "</title>")
	buf.WriteString("<style>body{font-family:system-ui,sans-serif;max-width:42rem;margin:2rem auto;padding:0 1rem;color:#222}" +
		"table{border-collapse:collapse;width:100%}td,th{border-bottom:1px solid #ddd;padding:.4rem;text-align:left;font-size:.9rem}" +
		"input[type=text],input[type=password]{padding:.4rem;width:100%;max-width:24rem}" +
		".status-on{color:darkgreen;font-weight:bold}.status-off{color:darkred;font-weight:bold}" +
		"button,input[type=submit]{padding:.4rem 1rem;cursor:pointer}</style>")
	buf.WriteString("</head><body>")
}

func foot(buf *bytes.Buffer) {
	buf.WriteString("</body></html>")
}
