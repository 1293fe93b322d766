package stschema

import (
	"fmt"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

/*
 *  Hand-written models for the Smartthings schema connector protocol,
 *  replacing generated swagger definitions.  Only the fields this
 *  connector reads or writes are modelled; unknown fields in inbound
 *  envelopes are ignored by the JSON decoder.
 */

// Headers are common to every schema interaction
type Headers struct {
	Schema          string          `json:"schema,omitempty"`
	Version         string          `json:"version,omitempty"`
	InteractionType InteractionType `json:"interactionType"`
	RequestID       string          `json:"requestId"`
}

func (m *Headers) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("interactionType", "body", string(m.InteractionType)); err != nil {
		res = append(res, err)
	}

	if err := validate.RequiredString("requestId", "body", m.RequestID); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// Authentication carries the third-party bearer token that Smartthings
// obtained on behalf of the user
type Authentication struct {
	TokenType string  `json:"tokenType,omitempty"`
	Token     *string `json:"token"`
}

func (m *Authentication) Validate(formats strfmt.Registry) error {
	if err := validate.Required("authentication.token", "body", m.Token); err != nil {
		return err
	}
	return nil
}

// DeviceCommand is one command addressed to a component of a device
type DeviceCommand struct {
	Component  string        `json:"component,omitempty"`
	Capability string        `json:"capability"`
	Command    string        `json:"command"`
	Arguments  []interface{} `json:"arguments,omitempty"`
}

// RequestDevice identifies a device addressed by a state refresh or
// command request
type RequestDevice struct {
	ExternalDeviceID *string          `json:"externalDeviceId"`
	DeviceCookie     interface{}      `json:"deviceCookie,omitempty"`
	Commands         []*DeviceCommand `json:"commands,omitempty"`
}

func (m *RequestDevice) Validate(formats strfmt.Registry) error {
	if err := validate.Required("devices.externalDeviceId", "body", m.ExternalDeviceID); err != nil {
		return err
	}
	return nil
}

// CallbackAuthentication and CallbackUrls arrive with grantCallbackAccess
// interactions.  This connector is stateless and does not use them, but
// they are modelled so the envelope decodes cleanly.
type CallbackAuthentication struct {
	GrantType string `json:"grantType,omitempty"`
	ClientID  string `json:"clientId,omitempty"`
	Scope     string `json:"scope,omitempty"`
	Code      string `json:"code,omitempty"`
}

type CallbackUrls struct {
	OauthToken    *string `json:"oauthToken,omitempty"`
	StateCallback *string `json:"stateCallback,omitempty"`
}

// SmartthingsRequest is the inbound envelope for every interaction type
type SmartthingsRequest struct {
	Headers                    *Headers                `json:"headers"`
	Authentication             *Authentication         `json:"authentication,omitempty"`
	Devices                    []*RequestDevice        `json:"devices,omitempty"`
	CallbackAuthentication     *CallbackAuthentication `json:"callbackAuthentication,omitempty"`
	CallbackUrls               *CallbackUrls           `json:"callbackUrls,omitempty"`
	DeviceState                []*DeviceState          `json:"deviceState,omitempty"`
	GlobalError                *GlobalError            `json:"globalError,omitempty"`
	OriginatingInteractionType InteractionType         `json:"originatingInteractionType,omitempty"`
}

func (m *SmartthingsRequest) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("headers", "body", m.Headers); err != nil {
		res = append(res, err)
	} else if err := m.Headers.Validate(formats); err != nil {
		res = append(res, err)
	}

	if m.Authentication != nil {
		if err := m.Authentication.Validate(formats); err != nil {
			res = append(res, err)
		}
	}

	for i, d := range m.Devices {
		if d == nil {
			res = append(res, errors.Required(fmt.Sprintf("devices.%d", i), "body", nil))
			continue
		}
		if err := d.Validate(formats); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// Manufacturer describes the maker of a discovered device
type Manufacturer struct {
	ManufacturerName *string `json:"manufacturerName"`
	ModelName        *string `json:"modelName"`
	HwVersion        string  `json:"hwVersion,omitempty"`
	SwVersion        string  `json:"swVersion,omitempty"`
}

// Device is one discovery announcement
type Device struct {
	ExternalDeviceID  string        `json:"externalDeviceId"`
	FriendlyName      string        `json:"friendlyName"`
	DeviceHandlerType string        `json:"deviceHandlerType"`
	DeviceUniqueID    string        `json:"deviceUniqueId,omitempty"`
	ManufacturerInfo  *Manufacturer `json:"manufacturerInfo,omitempty"`
}

// DeviceStateItem is one capability/attribute/value tuple of a state report
type DeviceStateItem struct {
	Component  string      `json:"component"`
	Capability string      `json:"capability"`
	Attribute  string      `json:"attribute"`
	Value      interface{} `json:"value"`
}

// DeviceErrorItem reports a device level problem back to Smartthings
type DeviceErrorItem struct {
	ErrorEnum *string `json:"errorEnum"`
	Detail    string  `json:"detail,omitempty"`
}

// DeviceState is the per-device element of state refresh and command
// responses
type DeviceState struct {
	ExternalDeviceID string             `json:"externalDeviceId"`
	DeviceCookie     interface{}        `json:"deviceCookie,omitempty"`
	States           []*DeviceStateItem `json:"states,omitempty"`
	DeviceError      []*DeviceErrorItem `json:"deviceError,omitempty"`
}

// GlobalError reports a request level problem back to Smartthings
type GlobalError struct {
	ErrorEnum *string `json:"errorEnum"`
	Detail    string  `json:"detail,omitempty"`
}

// DiscoveryResponse answers a discoveryRequest
type DiscoveryResponse struct {
	Headers *Headers  `json:"headers"`
	Devices []*Device `json:"devices"`
}

// DeviceStateResponse answers a stateRefreshRequest
type DeviceStateResponse struct {
	Headers     *Headers       `json:"headers"`
	DeviceState []*DeviceState `json:"deviceState"`
}

// CommandResponse answers a commandRequest
type CommandResponse struct {
	Headers     *Headers       `json:"headers"`
	DeviceState []*DeviceState `json:"deviceState"`
}

// InteractionResult carries a global error back to Smartthings
type InteractionResult struct {
	Headers     *Headers     `json:"headers"`
	GlobalError *GlobalError `json:"globalError,omitempty"`
}
