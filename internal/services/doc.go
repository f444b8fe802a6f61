// Package services implements the network collaborators of the download engine.
//
// # Interfaces
//
//   - [SnapshotSource] : fetches a whole playlist, pagination flattened
//   - [TrackResolver] : resolves a single track link to metadata and an audio URL
//   - [Downloader] : saves remote files with retries
//
// # Downloader API
//
// [DownloaderAPI] talks to a spotifydown-compatible API. It implements both [SnapshotSource] and [TrackResolver]:
//
//   - GET /metadata/playlist/{id} : playlist title and owner
//   - GET /tracklist/playlist/{id}?offset=N : one page of tracks and the next offset
//   - GET /download/{id} : track metadata and the audio link
//
// Every request carries the configured Referer and Origin headers and waits on a token bucket limiter.
//
// # Spotify Web API
//
// [SpotifyService] is an alternative [SnapshotSource] built on github.com/zmb3/spotify/v2 with the client
// credentials flow. It is used for playlists when credentials are configured; audio is still resolved through the
// downloader API.
//
// # Files
//
// [HTTPDownloader] streams a body to "<dest>.part" and renames it into place, so an interrupted download never
// leaves a file that looks complete. Attempts follow the injected [retry.Policy].
//
// # Errors
//
//   - [shared.ErrRemoteFetch] : network failure, unexpected status, or an API response with success=false
//   - [shared.ErrPlaylistNotFound], [shared.ErrTrackNotFound] : 404 responses, not retried
//   - [shared.ErrInvalidLink] : the link is neither a track nor a playlist
package services
