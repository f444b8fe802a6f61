// Package tasks downloads tracks and keeps local playlist folders in sync, with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines four operations:
//
//  1. [SyncEngine.SyncPlaylist] : Bring one local folder up to date with a playlist
//     - Fetches the playlist from a [services.SnapshotSource]
//     - Deduplicates tracks by identity and reports the duplicates
//     - Scans the destination and plans only the missing tracks
//     - Downloads the plan on a bounded worker pool, then removes zero-byte and partial files
//
//  2. [SyncEngine.DownloadTrack] : Download a single track link
//
//  3. [SyncEngine.ProcessLink] : Classify a link and dispatch to one of the above
//     - Invalid links fail with [shared.ErrInvalidLink] without affecting other links
//
//  4. [SyncEngine.SyncManifest] : Run [SyncEngine.ProcessLink] for every manifest entry in order
//     - Each entry uses its own naming convention, folder policy and location
//     - A failing entry never stops the rest
//
// # Track Pipeline
//
// Each planned track is resolved to an audio URL, downloaded through a ".part" file, tagged with its cover art when
// the file was actually written, and optionally recorded in the history database. A failure is stored in that
// track's [TrackResult]; the batch continues.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking, unless [EngineOpts].WaitForProgress is set for a receiver
// that drains for the whole call.
//
// # Download History
//
// The optional [Recorder] interface persists every written file ([repositories.HistoryRecorder]).
// Recording errors are logged and otherwise ignored.
package tasks
