package spotifyapi

import "time"

// Device is a playback endpoint registered with the user's Spotify
// account (the Web API "device" object)
type Device struct {
	ID           string
	Name         string
	DeviceType   string
	IsActive     bool
	IsRestricted bool
}

// Playlist is an ordered playable collection owned by or followed by
// the user
type Playlist struct {
	ID   string
	Name string
	URI  string
}

// PlaybackState is a snapshot of the account's player.  Spotify reports
// one state for the whole account, not one per device.
type PlaybackState struct {
	IsPlaying  bool
	ProgressMs int
	ContextURI string
	DeviceID   string
}

type WebPlayer interface {
	WithAccessToken(token string) WebPlayer
	WithTimeout(d time.Duration) WebPlayer
	Devices() ([]Device, error)
	Playlists() ([]Playlist, error)
	PlaybackState() (*PlaybackState, error)
	Play(deviceID string, contextURI string) error
	Pause(deviceID string) error
	SkipNext() error
	SkipPrevious() error
}
