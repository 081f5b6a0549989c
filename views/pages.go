package views

import (
	"bytes"
	"strings"

	"github.com/a-h/templ"
)

// Post renders a published post page.
func Post(site Site, post PostData) templ.Component {
	return page(func(buf *bytes.Buffer) {
		head(buf, post.Title+" - "+site.Name)
		buf.WriteString(`<script type="application/ld+json">` + PostJsonLD(site, post) + `</script>`)
		buf.WriteString("<article><h1>" + esc(post.Title) + "</h1>")
		buf.WriteString(`<p><time>` + esc(post.Date) + `</time>`)
		if post.Author != "" {
			buf.WriteString(" &middot; " + esc(post.Author))
		}
		buf.WriteString("</p>")
		// Content is sanitized upstream against the post body allowlist.
		buf.WriteString(post.HTML)
		if len(post.Tags) > 0 {
			buf.WriteString("<p>Tags: " + esc(strings.Join(post.Tags, ", ")) + "</p>")
		}
		buf.WriteString("</article>")
		foot(buf)
	})
}

// AdminLogin renders the admin login form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return page(func(buf *bytes.Buffer) {
		head(buf, "Admin Login")
		buf.WriteString("<h2>Admin Login</h2>")
		if showError {
			buf.WriteString(`<p class="status-off">Wrong password.</p>`)
		}
		buf.WriteString(`<form action="/admin/login/" method="post">`)
		buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `">`)
		buf.WriteString(`<p><label for="password">Password</label><br>`)
		buf.WriteString(`<input type="password" id="password" name="password" autofocus></p>`)
		buf.WriteString(`<p><input type="submit" value="Log in"></p>`)
		buf.WriteString("</form>")
		foot(buf)
	})
}

// Settings renders the Docswrite settings page: website id, connection
// status, connect/disconnect controls and recent sync activity.
func Settings(d SettingsData) templ.Component {
	return page(func(buf *bytes.Buffer) {
		head(buf, "Docswrite Settings")
		buf.WriteString("<h2>Docswrite Settings</h2>")

		buf.WriteString(`<p><label for="website-id">Website ID</label><br>`)
		buf.WriteString(`<input type="text" id="website-id" name="website-id" size="32" value="` + esc(d.WebsiteID) + `" readonly></p>`)

		buf.WriteString("<p><label>Connection</label><br>")
		if d.Connected {
			buf.WriteString(`<span class="status-on">Connected</span></p>`)
			buf.WriteString(`<form action="/admin/disconnect/" method="post" onsubmit="return confirm('Do you really want to disconnect the website? Your content synchronization will be stopped.')">`)
			buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(d.CSRFToken) + `">`)
			buf.WriteString(`<input type="hidden" name="disconnect" value="1">`)
			buf.WriteString(`<input type="submit" value="Disconnect">`)
			buf.WriteString("</form>")
		} else {
			buf.WriteString(`<span class="status-off">Disconnected</span></p>`)
			buf.WriteString(`<p><a href="` + esc(d.ConnectURL) + `" target="_blank"><button>Connect</button></a></p>`)
		}

		if len(d.Activity) > 0 {
			buf.WriteString("<h3>Recent sync activity</h3>")
			buf.WriteString("<table><tr><th>When</th><th>Command</th><th>Detail</th><th>IP</th></tr>")
			for _, row := range d.Activity {
				buf.WriteString("<tr><td>" + esc(row.At) + "</td><td>" + esc(row.Command) + "</td><td>" +
					esc(row.Detail) + "</td><td>" + esc(row.IP) + "</td></tr>")
			}
			buf.WriteString("</table>")
		}

		buf.WriteString(`<form action="/admin/logout/" method="post">`)
		buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(d.CSRFToken) + `">`)
		buf.WriteString(`<p><input type="submit" value="Log out"></p>`)
		buf.WriteString("</form>")
		foot(buf)
	})
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return page(func(buf *bytes.Buffer) {
		head(buf, "Not Found")
		buf.WriteString("<h1>404</h1><p>This page does not exist.</p>")
		foot(buf)
	})
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return page(func(buf *bytes.Buffer) {
		head(buf, "Server Error")
		buf.WriteString("<h1>500</h1><p>Something went wrong. Try again later.</p>")
		foot(buf)
	})
}
