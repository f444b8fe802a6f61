// Package repositories implements SQLite persistence for the download history.
//
// Key Implementations:
//   - [RunRepository] : one row per download or sync invocation with its final counters
//   - [DownloadRepository] : one row per audio file written to disk
//   - [HistoryRecorder] : binds a run id to the download engine's record calls
//
// Schema creation lives in the shared migrations; open databases with [shared.OpenHistory].
package repositories
