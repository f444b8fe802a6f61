// Package manifest loads and saves the sync manifest, the list of playlists that `spdl sync` keeps up to date.
//
// # On-disk format
//
// The manifest is a JSON array. Each element is either a playlist entry
//
//	{"name": "Road trip", "link": "https://open.spotify.com/playlist/...", "create_folder": true, "download_location": "/music"}
//
// or a naming convention record
//
//	{"convention_code": 2, "trackname_convention": "Artist - Title"}
//
// A convention record applies to every entry after it. Files written by older versions of the tool start with a
// single convention record; [Load] accepts any number of them and stamps each [Entry] with the convention in effect.
// [Save] writes the default first and repeats a record only where the effective convention changes, so a saved
// manifest loads back unchanged.
//
// Saves are atomic: data goes to a temp file in the same directory which is synced and renamed over the target.
package manifest
