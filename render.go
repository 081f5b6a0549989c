package sitebridge

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// render writes a templ component as an HTTP 200 HTML response.
func render(c echo.Context, cmp templ.Component) error {
	return renderStatus(c, http.StatusOK, cmp)
}

// renderStatus writes a templ component with a specific HTTP status code.
func renderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
