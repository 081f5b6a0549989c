package sitebridge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

// adminSession logs in through the real form flow (CSRF cookie and all) and
// returns the cookies an authenticated request needs.
func adminSession(t *testing.T, app *App) []*http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /admin/: code = %d", rec.Code)
	}
	var csrf *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			csrf = c
		}
	}
	if csrf == nil {
		t.Fatal("login page should set the _csrf cookie")
	}

	form := url.Values{"password": {"secret"}, "_csrf": {csrf.Value}}
	req = httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(csrf)
	rec = httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login: code = %d, body = %s", rec.Code, rec.Body.String())
	}

	return append(rec.Result().Cookies(), csrf)
}

// loginAttempt runs one password attempt through the real form flow and
// returns the response.
func loginAttempt(t *testing.T, app *App, password string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	var csrf *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			csrf = c
		}
	}
	if csrf == nil {
		t.Fatal("no csrf cookie")
	}

	form := url.Values{"password": {password}, "_csrf": {csrf.Value}}
	req = httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(csrf)
	rec = httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func TestAdminLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)

	rec := loginAttempt(t, app, "wrong")
	if rec.Code != http.StatusOK {
		t.Errorf("code = %d, want 200 with the login form again", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Wrong password.") {
		t.Error("response should show the wrong-password notice")
	}
}

func TestRepeatedSuccessfulLoginsAreNotRateLimited(t *testing.T) {
	app := newTestApp(t)

	// Well past the failure budget: only failed attempts count.
	for i := 0; i < 8; i++ {
		rec := loginAttempt(t, app, "secret")
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("login %d: code = %d, want 303", i+1, rec.Code)
		}
	}
}

func TestFailedLoginsLockOut(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 5; i++ {
		rec := loginAttempt(t, app, "wrong")
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: code = %d, want 200", i+1, rec.Code)
		}
	}

	// The gate is checked on entry, so even the right password is refused
	// until the window expires.
	rec := loginAttempt(t, app, "secret")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("code = %d, want 429 after five failures", rec.Code)
	}
}

func TestAdminSettingsPage(t *testing.T) {
	app := newTestApp(t)
	cookies := adminSession(t, app)

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	body := rec.Body.String()
	id, _ := app.Store.Option(websiteIDOption)
	if !strings.Contains(body, id) {
		t.Error("settings page should show the website id")
	}
	if !strings.Contains(body, "Disconnected") {
		t.Error("fresh install should read as disconnected")
	}
}

func TestSEOEndpointsRequireAdmin(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/api/seo/yoast/1", strings.NewReader(`{"yoast_title":"X"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %d, want 403", rec.Code)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.message() != "Insufficient permissions" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestSEOFieldWrites(t *testing.T) {
	app := newTestApp(t)
	cookies := adminSession(t, app)

	postID, err := app.Store.CreatePost(Post{Title: "P", Slug: "p", Status: "publish", Date: "2024-01-01 00:00:00"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	postJSON := func(path, body string) (*httptest.ResponseRecorder, envelope) {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		app.Echo.ServeHTTP(rec, req)
		var env envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
		return rec, env
	}

	rec, env := postJSON("/admin/api/seo/yoast/"+itoa(postID), `{"yoast_title":"My Title","metadesc":"D"}`)
	if rec.Code != http.StatusOK || !env.Success || env.message() != "Fields updated: 2" {
		t.Fatalf("yoast write: code=%d env=%+v", rec.Code, env)
	}
	// Yoast keys are stored prefixed, with the submitted prefix stripped.
	if v, _ := app.Store.PostMeta(postID, "_yoast_wpseo_title"); v != "My Title" {
		t.Errorf("_yoast_wpseo_title = %q", v)
	}
	if v, _ := app.Store.PostMeta(postID, "_yoast_wpseo_metadesc"); v != "D" {
		t.Errorf("_yoast_wpseo_metadesc = %q", v)
	}

	rec, env = postJSON("/admin/api/seo/rankmath/"+itoa(postID), `{"rank_math_title":"R"}`)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("rankmath write: code=%d env=%+v", rec.Code, env)
	}
	// Rankmath keys go in verbatim.
	if v, _ := app.Store.PostMeta(postID, "rank_math_title"); v != "R" {
		t.Errorf("rank_math_title = %q", v)
	}

	rec, env = postJSON("/admin/api/seo/yoast/999999", `{"yoast_title":"X"}`)
	if rec.Code != http.StatusNotFound || env.message() != "Post not found" {
		t.Errorf("missing post: code=%d env=%+v", rec.Code, env)
	}

	rec, env = postJSON("/admin/api/seo/yoast/abc", `{"yoast_title":"X"}`)
	if rec.Code != http.StatusBadRequest || env.message() != "Invalid post id" {
		t.Errorf("bad id: code=%d env=%+v", rec.Code, env)
	}
}

func TestAdminDisconnectForm(t *testing.T) {
	app := newTestApp(t)
	id := connect(t, app)
	cookies := adminSession(t, app)

	var csrf string
	for _, c := range cookies {
		if c.Name == "_csrf" {
			csrf = c.Value
		}
	}
	form := url.Values{"disconnect": {"1"}, "_csrf": {csrf}}
	req := httptest.NewRequest(http.MethodPost, "/admin/disconnect/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	if app.isConnected() {
		t.Error("site should be disconnected")
	}

	// The identifier is dead until the dashboard reconnects.
	_, env := runCommand(t, app, "check_connection_status", map[string]any{"uuid": id})
	if env.Success {
		t.Errorf("status after admin disconnect: %+v", env)
	}
}
