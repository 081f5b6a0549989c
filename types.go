package sitebridge

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PostPayload is one content item as submitted by the Docswrite dashboard.
// Field names match the wire format the dashboard has always sent.
type PostPayload struct {
	ID                   flexInt        `json:"id"`
	Title                string         `json:"title"`
	Slug                 string         `json:"slug"`
	Tags                 flexStrings    `json:"tags"`
	State                string         `json:"state"`
	Author               int64          `json:"author"`
	Date                 string         `json:"date"`
	Excerpt              string         `json:"excerpt"`
	PostType             string         `json:"post_type"`
	Categories           flexStrings    `json:"categories"`
	Content              string         `json:"content"`
	FeaturedImageURL     string         `json:"featured_image_url"`
	FeaturedImageAltText string         `json:"featured_image_alt_text"`
	FeaturedImageCaption string         `json:"featured_image_caption"`
	YoastSettings        map[string]any `json:"yoast_settings"`
	RankmathSettings     map[string]any `json:"rankmath_settings"`
	NewspackSettings     map[string]any `json:"newspack_settings"`
}

// Post is a content record as stored in SQLite.
type Post struct {
	ID       int64
	Title    string
	Slug     string
	Status   string
	AuthorID int64
	Date     string // normalized "2006-01-02 15:04:05"
	Excerpt  string
	Type     string
	Content  string
	Tags     []string
}

// Attachment is an image resource owned by a post (a sideloaded featured image).
type Attachment struct {
	ID         int64
	PostID     int64
	Filename   string
	Title      string
	Caption    string
	Width      int
	Height     int
	Size       int
	UploadedAt string
}

// Author is the projection returned by the get_authors command.
type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Term is the projection returned by get_categories and get_tags.
type Term struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Count       int64  `json:"count"`
}

// TaxonomyTerm is the (ID-capitalized) projection used by get_taxonomies_terms.
type TaxonomyTerm struct {
	ID   int64  `json:"ID"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Taxonomy is a registered term group (built-in category/post_tag plus
// anything added through configuration).
type Taxonomy struct {
	Name         string
	Label        string
	Hierarchical bool
}

// flexInt accepts a JSON number or a numeric string. The dashboard has sent
// both over the years; non-numeric input decodes as zero rather than failing
// the whole request.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// flexStrings accepts a JSON array of strings or numbers, or a single
// comma-separated string.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" || trimmed == "null" {
		*f = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var raw []any
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			switch t := v.(type) {
			case string:
				out = append(out, t)
			case float64:
				out = append(out, strconv.FormatInt(int64(t), 10))
			}
		}
		*f = out
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*f = strings.Split(s, ",")
	return nil
}
