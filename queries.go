package sitebridge

import (
	"encoding/json"
	"fmt"

	"github.com/labstack/echo/v4"
)

type searchRequest struct {
	Search    string `json:"search"`
	HideEmpty any    `json:"hide_empty"`
}

func decodeSearchRequest(data []byte) searchRequest {
	var req searchRequest
	_ = json.Unmarshal(data, &req)
	req.Search = sanitizeText(req.Search)
	return req
}

// hideEmptyEnabled is true only for the literal string "true", matching the
// dashboard's long-standing strict comparison.
func (r searchRequest) hideEmptyEnabled() bool {
	s, ok := r.HideEmpty.(string)
	return ok && s == "true"
}

func (a *App) cmdGetAuthors(c echo.Context, data []byte) error {
	req := decodeSearchRequest(data)
	authors, err := a.Store.SearchAuthors(req.Search)
	if err != nil {
		return err
	}
	if len(authors) == 0 {
		return sendError(c, 0, "No authors found")
	}
	return sendSuccess(c, respData{
		"message": fmt.Sprintf("Authors found: %d", len(authors)),
		"authors": authors,
	})
}

func (a *App) cmdGetCategories(c echo.Context, data []byte) error {
	req := decodeSearchRequest(data)
	terms, err := a.Store.ListTerms("category", TermFilter{Search: req.Search, HideEmpty: req.hideEmptyEnabled()})
	if err != nil {
		return err
	}
	if len(terms) == 0 {
		return sendError(c, 0, "No categories found")
	}
	return sendSuccess(c, respData{
		"message":    "Categories retrieved successfully",
		"categories": terms,
	})
}

func (a *App) cmdGetTags(c echo.Context, data []byte) error {
	req := decodeSearchRequest(data)
	terms, err := a.Store.ListTerms("post_tag", TermFilter{Search: req.Search, HideEmpty: req.hideEmptyEnabled()})
	if err != nil {
		return err
	}
	if len(terms) == 0 {
		return sendError(c, 0, "No tags found")
	}
	return sendSuccess(c, respData{
		"message": "Tags retrieved successfully",
		"tags":    terms,
	})
}

// cmdGetTaxonomiesTerms lists every term of every registered taxonomy
// (including empty terms), grouped under the taxonomy's display label.
func (a *App) cmdGetTaxonomiesTerms(c echo.Context, _ []byte) error {
	taxonomies, err := a.Store.Taxonomies()
	if err != nil {
		return err
	}
	grouped := make(map[string][]TaxonomyTerm)
	for _, tax := range taxonomies {
		terms, err := a.Store.ListTerms(tax.Name, TermFilter{})
		if err != nil {
			return err
		}
		entries := make([]TaxonomyTerm, 0, len(terms))
		for _, t := range terms {
			entries = append(entries, TaxonomyTerm{ID: t.ID, Name: t.Name, Slug: t.Slug})
		}
		grouped[tax.Label] = entries
	}
	if len(grouped) == 0 {
		return sendError(c, 0, "No taxonomies or terms found")
	}
	return sendSuccess(c, respData{
		"message":    "Taxonomies and terms found",
		"taxonomies": grouped,
	})
}
