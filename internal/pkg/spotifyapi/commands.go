package spotifyapi

import (
	"github.com/jake-scott/smartthings-spotify/internal/pkg/stschema"
)

const (
	CapabilityMediaPlayback string = "st.mediaPlayback"

	PlaybackStatusPlaying string = "playing"
	PlaybackStatusPaused  string = "paused"
)

// PlaybackCommand maps one Smartthings (capability, command) pair onto
// a Spotify player action.  ReportedStatus is the playbackStatus value
// reported after dispatch.  PropagateFailure marks the actions whose
// errors must surface to Smartthings; the rest are best-effort and are
// reported optimistically.
type PlaybackCommand struct {
	Name             string
	ReportedStatus   string
	PropagateFailure bool

	invoke func(c WebPlayer, deviceID string, contextURI string) error
}

// Invoke dispatches the command to the player.  The device and context
// ids come from the decoded virtual device identity; the skip commands
// ignore both (they act on the whole account).
func (pc PlaybackCommand) Invoke(c WebPlayer, deviceID string, contextURI string) error {
	return pc.invoke(c, deviceID, contextURI)
}

var playbackCommands = map[string]PlaybackCommand{
	"play": {
		Name:             "play",
		ReportedStatus:   PlaybackStatusPlaying,
		PropagateFailure: true,
		invoke: func(c WebPlayer, deviceID string, contextURI string) error {
			return c.Play(deviceID, contextURI)
		},
	},
	"pause": {
		Name:             "pause",
		ReportedStatus:   PlaybackStatusPaused,
		PropagateFailure: false,
		invoke: func(c WebPlayer, deviceID string, contextURI string) error {
			return c.Pause(deviceID)
		},
	},
	"fastForward": {
		Name:             "fastForward",
		ReportedStatus:   PlaybackStatusPlaying,
		PropagateFailure: false,
		invoke: func(c WebPlayer, deviceID string, contextURI string) error {
			return c.SkipNext()
		},
	},
	"rewind": {
		Name:             "rewind",
		ReportedStatus:   PlaybackStatusPlaying,
		PropagateFailure: false,
		invoke: func(c WebPlayer, deviceID string, contextURI string) error {
			return c.SkipPrevious()
		},
	},
}

// StCommandToPlaybackCommand looks up the player action for one
// Smartthings command.  Pairs with no Spotify equivalent return nil -
// the caller treats them as no-ops, never as errors.
func StCommandToPlaybackCommand(cmd *stschema.DeviceCommand) *PlaybackCommand {
	if cmd.Capability != CapabilityMediaPlayback {
		return nil
	}

	pc, ok := playbackCommands[cmd.Command]
	if !ok {
		return nil
	}

	return &pc
}
