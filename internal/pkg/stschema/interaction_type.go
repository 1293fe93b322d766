package stschema

// InteractionType identifies the kind of schema interaction carried by
// an envelope, per the Smartthings cloud connector schema
type InteractionType string

const (
	InteractionTypeDiscoveryRequest     InteractionType = "discoveryRequest"
	InteractionTypeDiscoveryResponse    InteractionType = "discoveryResponse"
	InteractionTypeStateRefreshRequest  InteractionType = "stateRefreshRequest"
	InteractionTypeStateRefreshResponse InteractionType = "stateRefreshResponse"
	InteractionTypeCommandRequest       InteractionType = "commandRequest"
	InteractionTypeCommandResponse      InteractionType = "commandResponse"
	InteractionTypeGrantCallbackAccess  InteractionType = "grantCallbackAccess"
	InteractionTypeIntegrationDeleted   InteractionType = "integrationDeleted"
	InteractionTypeInteractionResult    InteractionType = "interactionResult"
)

// Global error enum values understood by Smartthings
const (
	GlobalErrorErrorEnumTOKENEXPIRED           string = "TOKEN-EXPIRED"
	GlobalErrorErrorEnumINVALIDINTERACTIONTYPE string = "INVALID-INTERACTION-TYPE"
	GlobalErrorErrorEnumBADREQUEST             string = "BAD-REQUEST"
	GlobalErrorErrorEnumINTEGRATIONDELETED     string = "INTEGRATION-DELETED"
)
