package handlers

import (
	"net/http"
)

/*
 * OauthHandler redirects the caller to the Spotify accounts service
 * authorization endpoint, adding the scope and show_dialog query
 * string values that the connector needs but the Smartthings oauth
 * client does not include
 */

// The scopes the connector needs: read devices and playback state,
// control the player, read private playlists
const spotifyOauthScopes string = "user-read-playback-state user-modify-playback-state playlist-read-private"

type oauthHandler struct {
	scopes string
}

func NewOauthHandler() oauthHandler {
	return oauthHandler{
		scopes: spotifyOauthScopes,
	}
}

func (h *oauthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	// Copy of the request URL (so we don't modify the original)
	u := *r.URL

	// Set required query parameters
	queryValues := u.Query()
	queryValues.Set("scope", h.scopes)
	queryValues.Set("show_dialog", "false")
	u.RawQuery = queryValues.Encode()

	// Set the URI path
	u.Scheme = "https"
	u.Host = "accounts.spotify.com"
	u.Path = "/authorize"

	http.Redirect(w, r, u.String(), http.StatusMovedPermanently)
}
