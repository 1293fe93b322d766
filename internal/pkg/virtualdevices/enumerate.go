package virtualdevices

import (
	"github.com/jake-scott/smartthings-spotify/internal/pkg/spotifyapi"
	"github.com/pkg/errors"
)

// VirtualDevice is one (playback device, playlist) pair as presented
// to Smartthings.  Instances are rebuilt on every enumeration and
// never cached.
type VirtualDevice struct {
	ID          ID
	DisplayName string
	ModelName   string
}

// List enumerates the virtual devices for the account behind the
// client: the cross product of its playback devices and its playlists.
// Devices outer, playlists inner, both in provider order.  Devices
// without an id, or whose Spotify type differs from deviceTypeFilter,
// are skipped.  Either provider read failing fails the enumeration;
// there is no retry and no partial result.
func List(c spotifyapi.WebPlayer, deviceTypeFilter string) ([]VirtualDevice, error) {
	devices, err := c.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "enumerating playback devices")
	}

	playlists, err := c.Playlists()
	if err != nil {
		return nil, errors.Wrap(err, "enumerating playlists")
	}

	var items []VirtualDevice
	for _, device := range devices {
		if device.ID == "" || device.DeviceType != deviceTypeFilter {
			continue
		}

		for _, playlist := range playlists {
			item := VirtualDevice{
				ID: ID{
					DeviceID:    device.ID,
					PlaylistURI: playlist.URI,
				},
				DisplayName: playlist.Name + " on " + device.Name,
				ModelName:   device.DeviceType,
			}

			items = append(items, item)
		}
	}

	return items, nil
}
