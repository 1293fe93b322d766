package spotifyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/jake-scott/smartthings-spotify/internal/pkg/logging"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// playlistsPageSize is the Web API maximum for /me/playlists
const playlistsPageSize = 50

type Live struct {
	baseURL     string
	accessToken string
	timeout     time.Duration
}

func NewLiveClient() *Live {
	return &Live{
		baseURL: defaultBaseURL,
	}
}

// WithBaseURL overrides the Web API endpoint, for tests
func (c *Live) WithBaseURL(u string) *Live {
	nc := *c
	nc.baseURL = u
	return &nc
}

func (c *Live) WithAccessToken(token string) WebPlayer {
	nc := *c
	nc.accessToken = token
	return &nc
}

func (c *Live) WithTimeout(d time.Duration) WebPlayer {
	nc := *c
	nc.timeout = d
	return &nc
}

func (c *Live) MakeContext() (context.Context, context.CancelFunc) {
	var ctx = context.Background()
	var cancel context.CancelFunc = func() {}
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.timeout)
	}

	return ctx, cancel
}

// APIError is the Spotify Web API regular error body
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error %d: %s", e.Status, e.Message)
}

// AsAPIError unwraps err and returns the underlying APIError if there
// is one
func AsAPIError(err error) (*APIError, bool) {
	apiErr, ok := errors.Cause(err).(*APIError)
	return apiErr, ok
}

type apiErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

/*  Wire representations of the Web API objects we consume  */

type spotifyDevice struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	IsActive     bool   `json:"is_active"`
	IsRestricted bool   `json:"is_restricted"`
}

type devicesResponse struct {
	Devices []spotifyDevice `json:"devices"`
}

type spotifyPlaylist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type playlistsResponse struct {
	Items []spotifyPlaylist `json:"items"`
	Next  string            `json:"next"`
}

type playerResponse struct {
	IsPlaying  bool `json:"is_playing"`
	ProgressMs int  `json:"progress_ms"`
	Device     struct {
		ID string `json:"id"`
	} `json:"device"`
	Context *struct {
		URI string `json:"uri"`
	} `json:"context"`
}

type playBody struct {
	ContextURI string `json:"context_uri,omitempty"`
}

// do issues one Web API call with the client's bearer token.  A 204
// response leaves out untouched (the player endpoints answer 204 both
// for success and for "no active playback").
func (c *Live) do(method string, path string, query url.Values, body interface{}, out interface{}) error {
	ctx, cancel := c.MakeContext()
	defer cancel()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.accessToken})
	httpClient := oauth2.NewClient(ctx, ts)

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshaling request body")
		}
		bodyReader = bytes.NewReader(jsonBody)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.Logger(nil).Debugf("spotify API call: %s %s", method, u)

	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling the spotify API")
	}
	defer resp.Body.Close()

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response body")
	}

	if resp.StatusCode >= 400 {
		var errBody apiErrorBody
		if err := json.Unmarshal(respBody, &errBody); err == nil && errBody.Error.Message != "" {
			return &APIError{Status: errBody.Error.Status, Message: errBody.Error.Message}
		}
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if resp.StatusCode == http.StatusNoContent || out == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "parsing response body")
	}

	return nil
}

func (c *Live) Devices() ([]Device, error) {
	var resp devicesResponse
	if err := c.do(http.MethodGet, "/me/player/devices", nil, nil, &resp); err != nil {
		return nil, errors.Wrap(err, "listing devices")
	}

	var items []Device
	for _, d := range resp.Devices {
		item := Device{
			ID:           d.ID,
			Name:         d.Name,
			DeviceType:   d.Type,
			IsActive:     d.IsActive,
			IsRestricted: d.IsRestricted,
		}

		items = append(items, item)
	}

	return items, nil
}

func (c *Live) Playlists() ([]Playlist, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", playlistsPageSize))

	var resp playlistsResponse
	if err := c.do(http.MethodGet, "/me/playlists", query, nil, &resp); err != nil {
		return nil, errors.Wrap(err, "listing playlists")
	}

	var items []Playlist
	for _, p := range resp.Items {
		item := Playlist{
			ID:   p.ID,
			Name: p.Name,
			URI:  p.URI,
		}

		items = append(items, item)
	}

	return items, nil
}

func (c *Live) PlaybackState() (*PlaybackState, error) {
	var resp playerResponse
	if err := c.do(http.MethodGet, "/me/player", nil, nil, &resp); err != nil {
		return nil, errors.Wrap(err, "fetching playback state")
	}

	// A 204 from /me/player means nothing is playing anywhere; the
	// zero-value response already reports is_playing=false
	state := &PlaybackState{
		IsPlaying:  resp.IsPlaying,
		ProgressMs: resp.ProgressMs,
		DeviceID:   resp.Device.ID,
	}
	if resp.Context != nil {
		state.ContextURI = resp.Context.URI
	}

	return state, nil
}

func deviceQuery(deviceID string) url.Values {
	query := url.Values{}
	if deviceID != "" {
		query.Set("device_id", deviceID)
	}
	return query
}

func (c *Live) Play(deviceID string, contextURI string) error {
	body := playBody{ContextURI: contextURI}
	if err := c.do(http.MethodPut, "/me/player/play", deviceQuery(deviceID), &body, nil); err != nil {
		return errors.Wrapf(err, "starting playback of %s", contextURI)
	}

	return nil
}

func (c *Live) Pause(deviceID string) error {
	if err := c.do(http.MethodPut, "/me/player/pause", deviceQuery(deviceID), nil, nil); err != nil {
		return errors.Wrap(err, "pausing playback")
	}

	return nil
}

func (c *Live) SkipNext() error {
	if err := c.do(http.MethodPost, "/me/player/next", nil, nil, nil); err != nil {
		return errors.Wrap(err, "skipping to next track")
	}

	return nil
}

func (c *Live) SkipPrevious() error {
	if err := c.do(http.MethodPost, "/me/player/previous", nil, nil, nil); err != nil {
		return errors.Wrap(err, "skipping to previous track")
	}

	return nil
}
