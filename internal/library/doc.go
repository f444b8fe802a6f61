// Package library decides which tracks of a playlist still need to be downloaded.
//
// # Identity
//
// A track's identity is the file stem it is stored under: title and artist joined by " - " in the order selected by a
// [models.Convention], with the reserved filename characters replaced by "_" ([Sanitize]). Album and source id are
// ignored so that identities can be recovered from file names alone.
//
// # Pipeline
//
//  1. [Dedupe] keys a raw track list by identity, first occurrence wins, and returns the dropped duplicates.
//  2. [ScanExisting] lists the identities already present in a destination directory.
//  3. [Plan] is the ordered set difference of the two.
//  4. [RemoveEmpty] deletes zero-byte audio and leftover partial files after a run.
//
// Nothing here touches the network. Only the scanner reads the filesystem.
package library
