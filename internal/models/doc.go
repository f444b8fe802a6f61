// Package models defines the domain entities shared by the spdl packages.
//
// The package contains two categories of types:
//
// 1. Remote data: values built fresh from collaborator responses and never mutated
//   - [Track] : Song metadata used to derive a filesystem identity
//   - [RemotePlaylist] : A playlist as fetched, duplicates included
//   - [Snapshot] : A deduplicated playlist keyed by identity
//   - [ResolvedTrack] : A track with the audio source it resolves to
//
// 2. Persistent records: rows of the download history database
//   - [SyncRun] : One invocation of download or sync
//   - [DownloadRecord] : One audio file written to disk
//
// [Convention] selects how a track identity is formed and carries the numeric code stored in the sync manifest.
package models
