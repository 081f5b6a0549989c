package sitebridge

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy = bluemonday.StrictPolicy()
	postPolicy = newPostPolicy()

	collapseWS = regexp.MustCompile(`[ \t\r\n]+`)
)

// newPostPolicy builds the allowlist applied to submitted post bodies. It
// mirrors the tag set WordPress allows in post content: common formatting,
// links, lists, tables, media and figure markup.
func newPostPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AllowElements("figure", "figcaption", "video", "audio", "source", "picture")
	p.AllowAttrs("controls", "poster", "src", "type").OnElements("video", "audio", "source")
	p.AllowAttrs("class", "id").Globally()
	p.AllowAttrs("target", "rel").OnElements("a")
	p.AllowStandardURLs()
	return p
}

// sanitizeText strips all markup and collapses whitespace, leaving a single
// line of plain text.
func sanitizeText(s string) string {
	s = textPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.TrimSpace(collapseWS.ReplaceAllString(s, " "))
}

// sanitizePostHTML filters rich content against the post body allowlist.
func sanitizePostHTML(s string) string {
	return postPolicy.Sanitize(s)
}
