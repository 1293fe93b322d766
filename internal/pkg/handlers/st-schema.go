package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/jake-scott/smartthings-spotify/internal/pkg/logging"
	"github.com/jake-scott/smartthings-spotify/internal/pkg/spotifyapi"
	"github.com/jake-scott/smartthings-spotify/internal/pkg/stschema"
	"github.com/jake-scott/smartthings-spotify/internal/pkg/virtualdevices"
	"github.com/korovkin/limiter"
	"github.com/sirupsen/logrus"
)

const (
	StSpotifyPlayerDeviceProfileID string = "c3b0a1d2-54cf-40c7-9d92-1b673cbe5d5f"

	stManufacturerName string = "Spotify"

	// Upper bound on concurrent Spotify calls while fanning out a
	// command batch
	commandConcurrencyLimit int = 10
)

type SpotifyHandler struct {
	spotifyClient    spotifyapi.WebPlayer
	deviceTypeFilter string
}

func NewSpotifyHandler(cli spotifyapi.WebPlayer, deviceTypeFilter string) SpotifyHandler {
	return SpotifyHandler{
		spotifyClient:    cli,
		deviceTypeFilter: deviceTypeFilter,
	}
}

func (h *SpotifyHandler) sendJSONResponse(w http.ResponseWriter, r *http.Request, d interface{}) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	if err := enc.Encode(d); err != nil {
		logging.Logger(r.Context()).WithError(err).Error("sending json response")
	}
}

func (h *SpotifyHandler) sendAPIErrorResponse(w http.ResponseWriter, r *http.Request, req stschema.SmartthingsRequest, err error) {
	logging.Logger(r.Context()).WithError(err).Errorf("querying the Spotify API : %s", err)

	if apiErr, ok := spotifyapi.AsAPIError(err); ok && apiErr.Status == http.StatusUnauthorized {
		// Assume token has expired, we can't tell..
		h.sendJSONResponse(w, r, NewGlobalErrorResponse(req, stschema.GlobalErrorErrorEnumTOKENEXPIRED, "token error"))
		return
	}

	http.Error(w, "Down-stream API error", http.StatusBadGateway)
}

// clientForRequest returns a copy of the Spotify client that uses the
// bearer token carried in the request.  Every invocation authenticates
// on its own - no session survives past the request.
func (h *SpotifyHandler) clientForRequest(req stschema.SmartthingsRequest) (spotifyapi.WebPlayer, error) {
	if req.Authentication == nil || req.Authentication.Token == nil {
		return nil, fmt.Errorf("request carries no authentication token")
	}

	return h.spotifyClient.WithAccessToken(*req.Authentication.Token), nil
}

func (h *SpotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req stschema.SmartthingsRequest
	ctxLogger := logging.Logger(r.Context())

	err := decodeJSONBody(w, r, &req)
	if err != nil {
		ctxLogger.WithError(err).Errorf("decoding JSON")
		http.Error(w, "unable to parse JSON", http.StatusBadRequest)
		return
	}

	if err := req.Validate(formats); err != nil {
		ctxLogger.WithError(err).Errorf("request validation failure")
		http.Error(w, "input validation failed", http.StatusBadRequest)
		return
	}

	switch req.Headers.InteractionType {
	case stschema.InteractionTypeDiscoveryRequest:
		h.HandleDiscoveryRequest(w, r, req)
	case stschema.InteractionTypeStateRefreshRequest:
		h.HandleStateRefreshRequest(w, r, req)
	case stschema.InteractionTypeCommandRequest:
		h.HandleCommandRequest(w, r, req)
	case stschema.InteractionTypeInteractionResult:
		h.HandleInteractionResult(w, r, req)
	case stschema.InteractionTypeGrantCallbackAccess, stschema.InteractionTypeIntegrationDeleted:
		// The connector is stateless: it stores no callback tokens, so
		// there is nothing to grant or delete
		ctxLogger.Warnf("unimplemented request type: %s", req.Headers.InteractionType)
		h.sendJSONResponse(w, r,
			NewGlobalErrorResponse(req, stschema.GlobalErrorErrorEnumINVALIDINTERACTIONTYPE, "Unimplemented Interaction Type"),
		)
	default:
		ctxLogger.Errorf("unsupported request type: %s", req.Headers.InteractionType)
		h.sendJSONResponse(w, r,
			NewGlobalErrorResponse(req, stschema.GlobalErrorErrorEnumINVALIDINTERACTIONTYPE, "Unknown Interaction Type"),
		)
	}
}

// Interaction result type requests indicate a problem with data that we sent
// back to Smartthings from a previous request
//
func (h *SpotifyHandler) HandleInteractionResult(w http.ResponseWriter, r *http.Request, req stschema.SmartthingsRequest) {
	ctxLogger := logging.Logger(r.Context())

	var msgs []string

	if req.DeviceState != nil {
		var devStrings []string
		for _, d := range req.DeviceState {
			var errStrings []string
			if d.DeviceError != nil {
				for i, e := range d.DeviceError {
					errString := fmt.Sprintf("%d: %s, Detail: %s", i, *e.ErrorEnum, e.Detail)
					errStrings = append(errStrings, errString)
				}
			}
			devString := fmt.Sprintf("{id: %s, errors: %s}", d.ExternalDeviceID, strings.Join(errStrings, ", "))
			devStrings = append(devStrings, devString)
		}

		msgs = append(msgs, "Devices: "+strings.Join(devStrings, ", "))
	}

	if req.GlobalError != nil {
		msgs = append(msgs, "Global error: "+req.GlobalError.Detail)
	}

	ctxLogger.Warnf("Received interaction result.  Originating Interaction: %s.  Details: %s",
		req.OriginatingInteractionType,
		strings.Join(msgs, ",  "),
	)
}

func (h *SpotifyHandler) HandleDiscoveryRequest(w http.ResponseWriter, r *http.Request, req stschema.SmartthingsRequest) {
	ctxLogger := logging.Logger(r.Context())

	c, err := h.clientForRequest(req)
	if err != nil {
		ctxLogger.WithError(err).Error("authenticating request")
		http.Error(w, "missing authentication", http.StatusBadRequest)
		return
	}

	vdevs, err := virtualdevices.List(c, h.deviceTypeFilter)
	if err != nil {
		h.sendAPIErrorResponse(w, r, req, err)
		return
	}
	ctxLogger.Infof("Virtual devices: %+v", vdevs)

	manufacturer := stManufacturerName

	var stDevices []*stschema.Device
	for _, vdev := range vdevs {
		model := vdev.ModelName
		externalID := vdev.ID.Encode()

		stDevice := stschema.Device{
			DeviceHandlerType: StSpotifyPlayerDeviceProfileID,
			DeviceUniqueID:    externalID,
			ExternalDeviceID:  externalID,
			FriendlyName:      vdev.DisplayName,
			ManufacturerInfo: &stschema.Manufacturer{
				ManufacturerName: &manufacturer,
				ModelName:        &model,
			},
		}

		stDevices = append(stDevices, &stDevice)
	}

	resp := newDiscoveryResponse(req)
	resp.Devices = stDevices

	h.sendJSONResponse(w, r, resp)
}

func (h *SpotifyHandler) HandleStateRefreshRequest(w http.ResponseWriter, r *http.Request, req stschema.SmartthingsRequest) {
	ctxLogger := logging.Logger(r.Context())

	c, err := h.clientForRequest(req)
	if err != nil {
		ctxLogger.WithError(err).Error("authenticating request")
		http.Error(w, "missing authentication", http.StatusBadRequest)
		return
	}

	vdevs, err := virtualdevices.List(c, h.deviceTypeFilter)
	if err != nil {
		h.sendAPIErrorResponse(w, r, req, err)
		return
	}

	// Spotify reports one playback state for the whole account, so
	// every virtual device carries the same status
	playback, err := c.PlaybackState()
	if err != nil {
		h.sendAPIErrorResponse(w, r, req, err)
		return
	}

	var states []*stschema.DeviceState
	for _, vdev := range vdevs {
		deviceInfo := stschema.DeviceState{
			ExternalDeviceID: vdev.ID.Encode(),
			States:           playback.ToSmartthingsState(),
		}

		states = append(states, &deviceInfo)
	}

	resp := NewDeviceStateResponse(req)
	resp.DeviceState = states

	h.sendJSONResponse(w, r, resp)
}

func (h *SpotifyHandler) HandleCommandRequest(w http.ResponseWriter, r *http.Request, req stschema.SmartthingsRequest) {
	ctxLogger := logging.Logger(r.Context())

	c, err := h.clientForRequest(req)
	if err != nil {
		ctxLogger.WithError(err).Error("authenticating request")
		http.Error(w, "missing authentication", http.StatusBadRequest)
		return
	}

	// One response entry per addressed device, built up front so every
	// device answers even when all of its commands are no-ops
	states := make([]*stschema.DeviceState, 0, len(req.Devices))
	for _, reqDevice := range req.Devices {
		states = append(states, &stschema.DeviceState{
			ExternalDeviceID: *reqDevice.ExternalDeviceID,
		})
	}

	var mu sync.Mutex
	var firstErr error

	limit := limiter.NewConcurrencyLimiter(commandConcurrencyLimit)
	for i, reqDevice := range req.Devices {
		reqDevice := reqDevice
		deviceInfo := states[i]

		limit.Execute(func() {
			h.dispatchDeviceCommands(ctxLogger, c, reqDevice, deviceInfo, &mu, &firstErr)
		})
	}
	limit.Wait()

	if firstErr != nil {
		h.sendAPIErrorResponse(w, r, req, firstErr)
		return
	}

	resp := NewCommandResponse(req)
	resp.DeviceState = states

	h.sendJSONResponse(w, r, resp)
}

// dispatchDeviceCommands fans the commands of one addressed device out
// concurrently and joins them.  Ordering between commands is
// unspecified; the device's reported state keeps the last write.
func (h *SpotifyHandler) dispatchDeviceCommands(ctxLogger *logrus.Entry, c spotifyapi.WebPlayer,
	reqDevice *stschema.RequestDevice, deviceInfo *stschema.DeviceState,
	mu *sync.Mutex, firstErr *error) {

	id := virtualdevices.Decode(*reqDevice.ExternalDeviceID)

	var wg sync.WaitGroup
	for _, cmd := range reqDevice.Commands {
		pc := spotifyapi.StCommandToPlaybackCommand(cmd)
		if pc == nil {
			ctxLogger.Debugf("Ignoring command %s/%s, no Spotify equivalent", cmd.Capability, cmd.Command)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := pc.Invoke(c, id.DeviceID, id.PlaylistURI); err != nil {
				if pc.PropagateFailure {
					mu.Lock()
					if *firstErr == nil {
						*firstErr = err
					}
					mu.Unlock()
					return
				}

				// Best-effort transition: report the state we asked for
				ctxLogger.WithError(err).Warnf("ignoring failed %s command for %s", pc.Name, deviceInfo.ExternalDeviceID)
			}

			mu.Lock()
			deviceInfo.States = []*stschema.DeviceStateItem{spotifyapi.StatusStateItem(pc.ReportedStatus)}
			mu.Unlock()
		}()
	}

	wg.Wait()
}
