// Package audio writes ID3v2.3 tags and cover art into downloaded MP3 files.
//
// Cover images are downscaled to fit a square bound and re-encoded as JPEG before embedding.
package audio
