package audio

import (
	"fmt"

	"github.com/bogem/id3v2"
	"github.com/desertthunder/spdl/internal/models"
)

// Tagger embeds cover art and text frames into MP3 files.
type Tagger struct {
	maxCover int // longest cover side in pixels, 0 keeps the original size
}

// NewTagger creates a Tagger. Covers larger than maxCover pixels on either side are downscaled.
func NewTagger(maxCover int) *Tagger {
	return &Tagger{maxCover: maxCover}
}

// EmbedCover writes a front-cover APIC frame plus title, artist and album frames to the MP3 at path.
//
// Existing attached pictures are replaced. An empty image only updates the text frames.
func (t *Tagger) EmbedCover(path string, image []byte, track models.Track) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetVersion(3)
	tag.SetDefaultEncoding(id3v2.EncodingUTF16)
	if track.Title != "" {
		tag.SetTitle(track.Title)
	}
	if artist := track.Artist(); artist != "" {
		tag.SetArtist(artist)
	}
	if track.Album != "" {
		tag.SetAlbum(track.Album)
	}

	if len(image) > 0 {
		cover, err := PrepareCover(image, t.maxCover)
		if err != nil {
			return fmt.Errorf("failed to prepare cover: %w", err)
		}
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF16,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     cover,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags to %s: %w", path, err)
	}
	return nil
}
