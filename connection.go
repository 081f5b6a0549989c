package sitebridge

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Option names and meta keys shared with the Docswrite dashboard. These are
// part of the wire contract and must not change.
const (
	connectionOption = "docswrite_connection"
	websiteIDOption  = "docswrite_website_id"
	postIDMetaKey    = "docswrite_post_id"
	rawPostMetaKey   = "docswrite_raw_post_object"

	connectionEndpoint = "https://docswrite.com/dashboard/integrations/wordpress_plugin?uuid={website_id}&name={name}&url={url}"
)

// ensureWebsiteID generates and persists the site identifier on first boot.
// Once set it is never regenerated.
func (a *App) ensureWebsiteID() error {
	id, err := a.Store.Option(websiteIDOption)
	if err != nil {
		return err
	}
	if id != "" {
		return nil
	}
	sum := md5.Sum([]byte(a.Config.URL + uuid.NewString()))
	_, err = a.Store.SetOption(websiteIDOption, hex.EncodeToString(sum[:]))
	return err
}

func (a *App) websiteID() string {
	id, err := a.Store.Option(websiteIDOption)
	if err != nil {
		a.Log.Error().Err(err).Msg("read website id option")
		return ""
	}
	return id
}

// isConnected reports whether the connection flag is truthy.
func (a *App) isConnected() bool {
	v, err := a.Store.Option(connectionOption)
	if err != nil {
		a.Log.Error().Err(err).Msg("read connection option")
		return false
	}
	return v != "" && v != "0"
}

// checkUUID validates the shared identifier carried by every command except
// connect: the site must be connected and data.uuid must equal the stored id.
func (a *App) checkUUID(data []byte) bool {
	var payload struct {
		UUID string `json:"uuid"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return false
	}
	id := a.websiteID()
	return a.isConnected() && payload.UUID != "" && payload.UUID == id
}

func (a *App) cmdConnect(c echo.Context, data []byte) error {
	var payload struct {
		UUID string `json:"uuid"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.UUID == "" || payload.UUID != a.websiteID() {
		// The WordPress plugin ended these requests with no body at all;
		// an explicit error is strictly more useful to the dashboard.
		return sendError(c, 0, "Wrong UUID or manually disconnected")
	}
	changed, err := a.Store.SetOption(connectionOption, payload.UUID)
	if err != nil {
		return err
	}
	if !changed {
		return sendError(c, 0, "Already connected")
	}
	return sendSuccess(c, respData{"message": "Connected successfully"})
}

func (a *App) cmdDisconnect(c echo.Context, _ []byte) error {
	if _, err := a.Store.SetOption(connectionOption, "0"); err != nil {
		return err
	}
	return sendSuccess(c, respData{"message": "successfully disconnected"})
}

func (a *App) cmdConnectionStatus(c echo.Context, _ []byte) error {
	status := "Disconnected"
	if a.isConnected() {
		status = "Connected"
	}
	return sendSuccess(c, respData{"message": status})
}

// siteName returns the configured site name, or an invented one so the
// connect handshake always carries something presentable.
func (a *App) siteName() string {
	if a.Config.Name != "" {
		return a.Config.Name
	}
	return randomSiteName()
}

var (
	nameAdjectives = []string{
		"Eternal", "Boundless", "Infinite", "Endless", "Timeless",
		"Limitless", "Celestial", "Everlasting", "Mystic", "Galactic",
		"Stellar", "Luminous", "Ethereal", "Quantum", "Radiant",
		"Majestic", "Serene", "Vibrant", "Enigmatic", "Harmonic",
	}
	nameNouns = []string{
		"Horizons", "Visions", "Dreams", "Realms", "Adventures",
		"Journeys", "Expanses", "Odysseys", "Chronicles", "Legends",
		"Phenomena", "Sagas", "Echoes", "Mysteries", "Voyages",
		"Frontiers", "Dimensions", "Worlds", "Galaxies",
	}
)

func randomSiteName() string {
	return nameAdjectives[rand.Intn(len(nameAdjectives))] + " " + nameNouns[rand.Intn(len(nameNouns))]
}

// connectionURL builds the dashboard link the admin page's Connect button
// points at.
func (a *App) connectionURL() string {
	r := strings.NewReplacer(
		"{website_id}", a.websiteID(),
		"{name}", url.QueryEscape(a.siteName()),
		"{url}", url.QueryEscape(a.Config.URL),
	)
	return r.Replace(connectionEndpoint)
}

// handleDisconnect serves the admin settings form's disconnect action.
func (a *App) handleDisconnect(c echo.Context) error {
	if !a.isAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if c.FormValue("disconnect") == "1" {
		if _, err := a.Store.SetOption(connectionOption, "0"); err != nil {
			return err
		}
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}
