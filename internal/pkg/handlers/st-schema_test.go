package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jake-scott/smartthings-spotify/internal/pkg/spotifyapi"
	"github.com/jake-scott/smartthings-spotify/internal/pkg/stschema"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlayer implements spotifyapi.WebPlayer.  Command dispatch is
// concurrent, so the call records are mutex guarded.
type fakePlayer struct {
	mu sync.Mutex

	devices   []spotifyapi.Device
	playlists []spotifyapi.Playlist
	state     *spotifyapi.PlaybackState

	devicesErr error
	playErr    error
	pauseErr   error

	token      string
	playCalls  [][2]string
	pauseCalls []string
	nextCalls  int
	prevCalls  int
}

func (f *fakePlayer) WithAccessToken(token string) spotifyapi.WebPlayer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	return f
}

func (f *fakePlayer) WithTimeout(d time.Duration) spotifyapi.WebPlayer { return f }

func (f *fakePlayer) Devices() ([]spotifyapi.Device, error) {
	return f.devices, f.devicesErr
}

func (f *fakePlayer) Playlists() ([]spotifyapi.Playlist, error) {
	return f.playlists, nil
}

func (f *fakePlayer) PlaybackState() (*spotifyapi.PlaybackState, error) {
	return f.state, nil
}

func (f *fakePlayer) Play(deviceID string, contextURI string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playCalls = append(f.playCalls, [2]string{deviceID, contextURI})
	return f.playErr
}

func (f *fakePlayer) Pause(deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauseCalls = append(f.pauseCalls, deviceID)
	return f.pauseErr
}

func (f *fakePlayer) SkipNext() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextCalls++
	return nil
}

func (f *fakePlayer) SkipPrevious() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prevCalls++
	return nil
}

func inventory() *fakePlayer {
	return &fakePlayer{
		devices: []spotifyapi.Device{
			{ID: "dev1", Name: "Kitchen", DeviceType: "Speaker"},
			{ID: "dev2", Name: "Lounge", DeviceType: "Speaker"},
		},
		playlists: []spotifyapi.Playlist{
			{ID: "pl1", Name: "Focus", URI: "spotify:playlist:pl1"},
			{ID: "pl2", Name: "Dinner", URI: "spotify:playlist:pl2"},
		},
		state: &spotifyapi.PlaybackState{IsPlaying: true},
	}
}

func doRequest(t *testing.T, h *SpotifyHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/spotify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func envelope(interactionType string, extra string) string {
	body := `{
		"headers": {
			"schema": "st-schema",
			"version": "1.0",
			"interactionType": "` + interactionType + `",
			"requestId": "req-1"
		},
		"authentication": {"tokenType": "Bearer", "token": "tok-123"}`
	if extra != "" {
		body += "," + extra
	}
	return body + "}"
}

func TestDiscovery(t *testing.T) {
	c := inventory()
	h := NewSpotifyHandler(c, "Speaker")

	rec := doRequest(t, &h, envelope("discoveryRequest", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stschema.DiscoveryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, stschema.InteractionTypeDiscoveryResponse, resp.Headers.InteractionType)
	assert.Equal(t, "req-1", resp.Headers.RequestID)
	require.Len(t, resp.Devices, 4)

	first := resp.Devices[0]
	assert.Equal(t, "dev1|spotify:playlist:pl1", first.ExternalDeviceID)
	assert.Equal(t, "Focus on Kitchen", first.FriendlyName)
	assert.Equal(t, StSpotifyPlayerDeviceProfileID, first.DeviceHandlerType)
	require.NotNil(t, first.ManufacturerInfo)
	assert.Equal(t, "Spotify", *first.ManufacturerInfo.ManufacturerName)
	assert.Equal(t, "Speaker", *first.ManufacturerInfo.ModelName)

	// The handler authenticated with the request's token
	assert.Equal(t, "tok-123", c.token)
}

func TestDiscoveryIsIdempotent(t *testing.T) {
	h := NewSpotifyHandler(inventory(), "Speaker")

	rec1 := doRequest(t, &h, envelope("discoveryRequest", ""))
	rec2 := doRequest(t, &h, envelope("discoveryRequest", ""))

	require.Equal(t, http.StatusOK, rec1.Code)
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.JSONEq(t, rec1.Body.String(), rec2.Body.String())
}

func TestDiscoveryProviderFailure(t *testing.T) {
	c := inventory()
	c.devicesErr = errors.New("spotify is down")
	h := NewSpotifyHandler(c, "Speaker")

	rec := doRequest(t, &h, envelope("discoveryRequest", ""))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDiscoveryExpiredToken(t *testing.T) {
	c := inventory()
	c.devicesErr = &spotifyapi.APIError{Status: 401, Message: "The access token expired"}
	h := NewSpotifyHandler(c, "Speaker")

	rec := doRequest(t, &h, envelope("discoveryRequest", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stschema.InteractionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.GlobalError)
	assert.Equal(t, stschema.GlobalErrorErrorEnumTOKENEXPIRED, *resp.GlobalError.ErrorEnum)
}

func TestStateRefreshStatusIsUniform(t *testing.T) {
	h := NewSpotifyHandler(inventory(), "Speaker")

	rec := doRequest(t, &h, envelope("stateRefreshRequest", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stschema.DeviceStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, stschema.InteractionTypeStateRefreshResponse, resp.Headers.InteractionType)
	require.Len(t, resp.DeviceState, 4)

	for _, ds := range resp.DeviceState {
		require.Len(t, ds.States, 2)

		var status interface{}
		for _, s := range ds.States {
			assert.Equal(t, "main", s.Component)
			assert.Equal(t, "st.mediaPlayback", s.Capability)
			if s.Attribute == "playbackStatus" {
				status = s.Value
			}
		}

		// One account-wide flag: every device reports the same value
		assert.Equal(t, "playing", status)
	}
}

func commandEnvelope(externalID, capability, command string) string {
	return envelope("commandRequest", `
		"devices": [{
			"externalDeviceId": "`+externalID+`",
			"commands": [{"component": "main", "capability": "`+capability+`", "command": "`+command+`"}]
		}]`)
}

func TestCommandPlay(t *testing.T) {
	c := inventory()
	h := NewSpotifyHandler(c, "Speaker")

	rec := doRequest(t, &h, commandEnvelope("dev1|spotify:playlist:pl1", "st.mediaPlayback", "play"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stschema.CommandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, stschema.InteractionTypeCommandResponse, resp.Headers.InteractionType)

	require.Len(t, c.playCalls, 1)
	assert.Equal(t, [2]string{"dev1", "spotify:playlist:pl1"}, c.playCalls[0])

	require.Len(t, resp.DeviceState, 1)
	ds := resp.DeviceState[0]
	assert.Equal(t, "dev1|spotify:playlist:pl1", ds.ExternalDeviceID)
	require.Len(t, ds.States, 1)
	assert.Equal(t, "main", ds.States[0].Component)
	assert.Equal(t, "playbackStatus", ds.States[0].Attribute)
	assert.Equal(t, "playing", ds.States[0].Value)
}

func TestCommandPlayFailurePropagates(t *testing.T) {
	c := inventory()
	c.playErr = errors.New("no such device")
	h := NewSpotifyHandler(c, "Speaker")

	rec := doRequest(t, &h, commandEnvelope("dev1|spotify:playlist:pl1", "st.mediaPlayback", "play"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCommandPauseFailureIsOptimistic(t *testing.T) {
	c := inventory()
	c.pauseErr = errors.New("device went away")
	h := NewSpotifyHandler(c, "Speaker")

	rec := doRequest(t, &h, commandEnvelope("dev1|ctx1", "st.mediaPlayback", "pause"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stschema.CommandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.DeviceState, 1)
	ds := resp.DeviceState[0]
	assert.Equal(t, "dev1|ctx1", ds.ExternalDeviceID)
	require.Len(t, ds.States, 1)
	assert.Equal(t, "main", ds.States[0].Component)
	assert.Equal(t, "paused", ds.States[0].Value)

	require.Len(t, c.pauseCalls, 1)
	assert.Equal(t, "dev1", c.pauseCalls[0])
}

func TestCommandUnknownCapability(t *testing.T) {
	c := inventory()
	h := NewSpotifyHandler(c, "Speaker")

	rec := doRequest(t, &h, commandEnvelope("dev1|ctx1", "st.switch", "on"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stschema.CommandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// The addressed device still answers, with no state added
	require.Len(t, resp.DeviceState, 1)
	assert.Equal(t, "dev1|ctx1", resp.DeviceState[0].ExternalDeviceID)
	assert.Empty(t, resp.DeviceState[0].States)

	assert.Empty(t, c.playCalls)
	assert.Empty(t, c.pauseCalls)
}

func TestCommandBatchFanOut(t *testing.T) {
	c := inventory()
	h := NewSpotifyHandler(c, "Speaker")

	body := envelope("commandRequest", `
		"devices": [
			{"externalDeviceId": "dev1|ctx1", "commands": [
				{"capability": "st.mediaPlayback", "command": "fastForward"}
			]},
			{"externalDeviceId": "dev2|ctx2", "commands": [
				{"capability": "st.mediaPlayback", "command": "rewind"}
			]}
		]`)

	rec := doRequest(t, &h, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stschema.CommandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.DeviceState, 2)

	assert.Equal(t, 1, c.nextCalls)
	assert.Equal(t, 1, c.prevCalls)

	byID := make(map[string]*stschema.DeviceState)
	for _, ds := range resp.DeviceState {
		byID[ds.ExternalDeviceID] = ds
	}
	require.Contains(t, byID, "dev1|ctx1")
	require.Contains(t, byID, "dev2|ctx2")
	assert.Equal(t, "playing", byID["dev1|ctx1"].States[0].Value)
	assert.Equal(t, "playing", byID["dev2|ctx2"].States[0].Value)
}

func TestMalformedBody(t *testing.T) {
	h := NewSpotifyHandler(inventory(), "Speaker")

	rec := doRequest(t, &h, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMissingHeadersFailsValidation(t *testing.T) {
	h := NewSpotifyHandler(inventory(), "Speaker")

	rec := doRequest(t, &h, `{"authentication": {"token": "tok"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownInteractionType(t *testing.T) {
	h := NewSpotifyHandler(inventory(), "Speaker")

	rec := doRequest(t, &h, envelope("somethingElse", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stschema.InteractionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.GlobalError)
	assert.Equal(t, stschema.GlobalErrorErrorEnumINVALIDINTERACTIONTYPE, *resp.GlobalError.ErrorEnum)
}

func TestInteractionResultIsAcknowledged(t *testing.T) {
	h := NewSpotifyHandler(inventory(), "Speaker")

	body := envelope("interactionResult", `
		"originatingInteractionType": "commandRequest",
		"globalError": {"errorEnum": "BAD-REQUEST", "detail": "something was off"}`)

	rec := doRequest(t, &h, body)
	// Diagnostics only: logged, empty 200 back
	assert.Equal(t, http.StatusOK, rec.Code)
}
