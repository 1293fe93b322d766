package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-openapi/runtime/middleware/header"
	"github.com/go-openapi/strfmt"
	"github.com/jake-scott/smartthings-spotify/internal/pkg/stschema"
)

// For request validation routines
var formats strfmt.Registry

func init() {
	// Default validators
	formats = strfmt.NewFormats()
}

func newDiscoveryResponse(req stschema.SmartthingsRequest) stschema.DiscoveryResponse {
	var h stschema.Headers = *req.Headers
	h.InteractionType = stschema.InteractionTypeDiscoveryResponse

	return stschema.DiscoveryResponse{
		Headers: &h,
	}
}

func NewDeviceStateResponse(req stschema.SmartthingsRequest) stschema.DeviceStateResponse {
	var h stschema.Headers = *req.Headers
	h.InteractionType = stschema.InteractionTypeStateRefreshResponse

	return stschema.DeviceStateResponse{
		Headers: &h,
	}
}

func NewCommandResponse(req stschema.SmartthingsRequest) stschema.CommandResponse {
	var h stschema.Headers = *req.Headers
	h.InteractionType = stschema.InteractionTypeCommandResponse

	return stschema.CommandResponse{
		Headers: &h,
	}
}

func NewGlobalErrorResponse(req stschema.SmartthingsRequest, errEnum string, detail string) stschema.InteractionResult {
	var h stschema.Headers = *req.Headers
	h.InteractionType = responseTypeFromRequestType(h.InteractionType)

	return stschema.InteractionResult{
		Headers: &h,
		GlobalError: &stschema.GlobalError{
			ErrorEnum: &errEnum,
			Detail:    detail,
		},
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Header.Get("Content-Type") != "" {
		value, _ := header.ParseValueAndParams(r.Header, "Content-Type")
		if value != "application/json" {
			return fmt.Errorf("expected JSON request, got %s", value)
		}
	}

	// 100kb max body
	reader := http.MaxBytesReader(w, r.Body, 100*1024)
	dec := json.NewDecoder(reader)

	if err := dec.Decode(&dst); err != nil {
		return err
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must only contain a single JSON object")
	}

	return nil
}

func responseTypeFromRequestType(in stschema.InteractionType) stschema.InteractionType {
	switch in {
	case stschema.InteractionTypeDiscoveryRequest:
		return stschema.InteractionTypeDiscoveryResponse
	case stschema.InteractionTypeStateRefreshRequest:
		return stschema.InteractionTypeStateRefreshResponse
	case stschema.InteractionTypeCommandRequest:
		return stschema.InteractionTypeCommandResponse
	}

	return stschema.InteractionTypeInteractionResult
}
