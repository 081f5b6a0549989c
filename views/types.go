package views

// Site holds the site-wide values templates render into page chrome.
type Site struct {
	Name        string
	URL         string
	Description string
}

// PostData is a published post prepared for rendering. HTML is sanitized
// before it reaches the view layer.
type PostData struct {
	Title     string
	Date      string
	Tags      []string
	Excerpt   string
	Author    string
	HTML      string
	Permalink string
}

// SettingsData feeds the admin settings page.
type SettingsData struct {
	SiteName   string
	SiteURL    string
	WebsiteID  string
	Connected  bool
	ConnectURL string
	Activity   []ActivityRow
	CSRFToken  string
}

// ActivityRow is one sync activity entry shown on the settings page.
type ActivityRow struct {
	Command string
	Detail  string
	IP      string
	At      string
}
