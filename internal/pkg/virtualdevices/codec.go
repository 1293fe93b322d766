package virtualdevices

import "strings"

// externalIDDelimiter joins the Spotify device id and the playlist URI
// into the external device id exchanged with Smartthings.  Neither
// component can contain it (Spotify ids are base62, URIs are
// colon-separated), so no escaping is done.
const externalIDDelimiter string = "|"

// ID is the composite identity of one virtual device: a Spotify
// playback device crossed with a playlist context
type ID struct {
	DeviceID    string
	PlaylistURI string
}

// Encode serialises the identity into the external device id wire form
// "<device>|<playlist>"
func (id ID) Encode() string {
	return id.DeviceID + externalIDDelimiter + id.PlaylistURI
}

// Decode splits an external device id on the first delimiter.  Input
// with no delimiter decodes to an empty playlist URI and an empty
// string decodes to empty fields - callers validate what they need;
// decoding itself never fails.
func Decode(externalID string) ID {
	parts := strings.SplitN(externalID, externalIDDelimiter, 2)

	id := ID{
		DeviceID: parts[0],
	}
	if len(parts) > 1 {
		id.PlaylistURI = parts[1]
	}

	return id
}
