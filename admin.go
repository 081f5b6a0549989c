package sitebridge

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/docswrite/sitebridge/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !a.isAdmin(c) {
		return render(c, views.AdminLogin(false, csrfToken(c)))
	}
	return a.renderSettings(c)
}

func (a *App) renderSettings(c echo.Context) error {
	entries, err := a.Store.RecentActivity(20)
	if err != nil {
		return err
	}
	activity := make([]views.ActivityRow, 0, len(entries))
	for _, e := range entries {
		detail := e.Detail
		if detail == "" {
			detail = "-"
		}
		activity = append(activity, views.ActivityRow{
			Command: e.Command,
			Detail:  detail,
			IP:      e.RemoteIP,
			At:      e.CreatedAt,
		})
	}
	return render(c, views.Settings(views.SettingsData{
		SiteName:   a.siteName(),
		SiteURL:    a.Config.URL,
		WebsiteID:  a.websiteID(),
		Connected:  a.isConnected(),
		ConnectURL: a.connectionURL(),
		Activity:   activity,
		CSRFToken:  csrfToken(c),
	}))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(c.RealIP())
	return render(c, views.AdminLogin(true, csrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleSEOYoast and handleSEORankmath are the secondary write surface: a
// separate, simpler trust boundary gated by the admin session instead of
// the shared identifier. They accept a flat JSON map of fields written as
// post meta for one post.

func (a *App) handleSEOYoast(c echo.Context) error {
	return a.handleSEOFields(c, func(k string) string {
		return "_yoast_wpseo_" + strings.ReplaceAll(k, "yoast_", "")
	})
}

func (a *App) handleSEORankmath(c echo.Context) error {
	return a.handleSEOFields(c, func(k string) string { return k })
}

func (a *App) handleSEOFields(c echo.Context, keyFn func(string) string) error {
	if !a.isAdmin(c) {
		return sendError(c, http.StatusForbidden, "Insufficient permissions")
	}
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || postID <= 0 {
		return sendError(c, http.StatusBadRequest, "Invalid post id")
	}
	if _, err := a.Store.GetPost(postID); err != nil {
		if err == ErrNotFound {
			return sendError(c, http.StatusNotFound, "Post not found")
		}
		return err
	}

	var fields map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&fields); err != nil || len(fields) == 0 {
		return sendError(c, http.StatusBadRequest, "Invalid JSON format.")
	}
	for k, v := range fields {
		if err := a.Store.SetPostMeta(postID, keyFn(k), metaString(v)); err != nil {
			return err
		}
	}
	return sendSuccess(c, respData{"message": fmt.Sprintf("Fields updated: %d", len(fields))})
}
