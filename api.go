package sitebridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// commandFunc handles one named command. data is the raw JSON of the
// request's data object.
type commandFunc func(c echo.Context, data []byte) error

// respData is the payload half of the response envelope.
type respData map[string]any

type apiResponse struct {
	Success bool     `json:"success"`
	Data    respData `json:"data"`
}

func sendSuccess(c echo.Context, data respData) error {
	return c.JSON(http.StatusOK, apiResponse{Success: true, Data: data})
}

// sendError writes a failure envelope. status 0 means "no explicit status":
// the response goes out as 200 with success=false, which is what soft errors
// (authorization, validation, empty results) have always looked like on the
// wire.
func sendError(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, apiResponse{Success: false, Data: respData{"message": message}})
}

// commandTable maps the closed set of command names to handlers. The table
// is fixed at startup; there is no reflective lookup.
func (a *App) commandTable() map[string]commandFunc {
	return map[string]commandFunc{
		"connect":                 a.cmdConnect,
		"publish_posts":           a.cmdPublishPosts,
		"disconnect":              a.cmdDisconnect,
		"update_posts":            a.cmdUpdatePosts,
		"delete_posts":            a.cmdDeletePosts,
		"get_authors":             a.cmdGetAuthors,
		"get_taxonomies_terms":    a.cmdGetTaxonomiesTerms,
		"get_categories":          a.cmdGetCategories,
		"get_tags":                a.cmdGetTags,
		"check_connection_status": a.cmdConnectionStatus,
	}
}

// handleCommand is the single dispatch endpoint for the Docswrite dashboard:
// it validates the transport, checks the shared identifier, and routes the
// command to its handler.
func (a *App) handleCommand(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return sendError(c, http.StatusMethodNotAllowed, "Invalid request method. Only POST allowed.")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return sendError(c, http.StatusBadRequest, "Invalid JSON format.")
	}

	var req struct {
		Command string          `json:"command"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return sendError(c, http.StatusBadRequest, "Invalid JSON format.")
	}
	if req.Command == "" || !isJSONObject(req.Data) {
		// The WordPress plugin silently dropped these requests; answering
		// with a body keeps the dashboard out of guesswork.
		return sendError(c, http.StatusBadRequest, "Invalid request body.")
	}

	if req.Command != "connect" && !a.checkUUID(req.Data) {
		a.logActivity(c, req.Command, "rejected: bad uuid")
		return sendError(c, 0, "Wrong UUID or manually disconnected")
	}

	fn, ok := a.commands[req.Command]
	if !ok {
		return sendError(c, http.StatusBadRequest, "Invalid command.")
	}
	if fn == nil {
		return sendError(c, http.StatusInternalServerError, "Method not found.")
	}

	err = fn(c, req.Data)
	a.logActivity(c, req.Command, activityDetail(c))
	return err
}

// isJSONObject reports whether raw is a JSON object (the required shape of
// the data field).
func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

const activityDetailKey = "sync_activity_detail"

// setActivityDetail lets a handler annotate the activity log entry for the
// current request (e.g. item counts).
func setActivityDetail(c echo.Context, format string, args ...any) {
	c.Set(activityDetailKey, fmt.Sprintf(format, args...))
}

func activityDetail(c echo.Context) string {
	detail, _ := c.Get(activityDetailKey).(string)
	return detail
}

func (a *App) logActivity(c echo.Context, command, detail string) {
	if err := a.Store.RecordActivity(command, detail, c.RealIP()); err != nil {
		a.Log.Warn().Err(err).Str("command", command).Msg("record activity")
	}
}
