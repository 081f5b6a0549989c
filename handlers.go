package sitebridge

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/docswrite/sitebridge/views"
)

// handlePost serves a published post at its permalink.
func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Cache.GetPost(slug)
	if err != nil {
		if err == ErrNotFound {
			return renderStatus(c, http.StatusNotFound, views.NotFound())
		}
		return err
	}
	author, err := a.Store.AuthorName(post.AuthorID)
	if err != nil {
		return err
	}
	return render(c, views.Post(a.viewSite(), views.PostData{
		Title:     post.Title,
		Date:      post.Date,
		Tags:      post.Tags,
		Excerpt:   post.Excerpt,
		Author:    author,
		HTML:      post.Content,
		Permalink: a.permalink(post.Slug),
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\nSitemap: "+a.Config.URL+"/sitemap.xml\n")
}

func (a *App) viewSite() views.Site {
	return views.Site{
		Name:        a.siteName(),
		URL:         a.Config.URL,
		Description: a.Config.Description,
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if isAPIPath(c.Request().URL.Path) {
		if code >= 500 {
			a.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		}
		_ = sendError(c, code, http.StatusText(code))
		return
	}
	if ok && code == http.StatusNotFound {
		_ = renderStatus(c, http.StatusNotFound, views.NotFound())
		return
	}
	if code >= 500 {
		a.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = renderStatus(c, code, views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func isAPIPath(path string) bool {
	return len(path) >= 5 && path[:5] == "/api/"
}
