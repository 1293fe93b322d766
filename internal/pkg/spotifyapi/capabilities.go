package spotifyapi

import (
	"github.com/jake-scott/smartthings-spotify/internal/pkg/stschema"
)

const stComponentMain string = "main"

// The player commands every virtual device advertises
var supportedPlaybackCommands = []string{"pause", "play", "fastForward", "rewind"}

// PlaybackStatus folds Spotify's account-wide is_playing flag into the
// Smartthings mediaPlayback status vocabulary
func (s PlaybackState) PlaybackStatus() string {
	if s.IsPlaying {
		return PlaybackStatusPlaying
	}

	return PlaybackStatusPaused
}

// ToSmartthingsState expresses the playback snapshot as mediaPlayback
// attribute states.  Spotify reports one state for the whole account,
// so every virtual device derived from it carries the same values.
func (s PlaybackState) ToSmartthingsState() []*stschema.DeviceStateItem {
	model1 := stschema.DeviceStateItem{
		Component:  stComponentMain,
		Capability: CapabilityMediaPlayback,
		Attribute:  "supportedPlaybackCommands",
		Value:      supportedPlaybackCommands,
	}
	model2 := stschema.DeviceStateItem{
		Component:  stComponentMain,
		Capability: CapabilityMediaPlayback,
		Attribute:  "playbackStatus",
		Value:      s.PlaybackStatus(),
	}

	return []*stschema.DeviceStateItem{&model1, &model2}
}

// StatusStateItem is the single attribute state reported after a
// command dispatch
func StatusStateItem(status string) *stschema.DeviceStateItem {
	return &stschema.DeviceStateItem{
		Component:  stComponentMain,
		Capability: CapabilityMediaPlayback,
		Attribute:  "playbackStatus",
		Value:      status,
	}
}
