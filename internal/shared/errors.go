package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Remote API errors
	ErrRemoteFetch        = fmt.Errorf("remote fetch failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Manifest errors
	ErrManifestNotFound = fmt.Errorf("sync manifest not found")
	ErrManifestFormat   = fmt.Errorf("sync manifest malformed")

	// Filesystem errors
	ErrDestinationMissing = fmt.Errorf("destination directory does not exist")

	// Input validation errors
	ErrInvalidLink     = fmt.Errorf("not a valid Spotify track or playlist link")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// ErrUserDeclined is returned when the user answers "no" to a prompt; the process exits cleanly.
	ErrUserDeclined = fmt.Errorf("declined by user")
)
