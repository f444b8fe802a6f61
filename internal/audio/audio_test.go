package audio

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/desertthunder/spdl/internal/models"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func jpegImage(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPrepareCover(t *testing.T) {
	t.Run("downscales keeping aspect ratio", func(t *testing.T) {
		out, err := PrepareCover(pngImage(t, 1000, 500), 640)
		if err != nil {
			t.Fatalf("PrepareCover() error = %v", err)
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		if err != nil {
			t.Fatal(err)
		}
		if format != "jpeg" {
			t.Errorf("expected jpeg, got %s", format)
		}
		if cfg.Width != 640 || cfg.Height != 320 {
			t.Errorf("expected 640x320, got %dx%d", cfg.Width, cfg.Height)
		}
	})

	t.Run("small jpeg passes through", func(t *testing.T) {
		in := jpegImage(t, 100, 100)
		out, err := PrepareCover(in, 640)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(in, out) {
			t.Error("expected unchanged bytes")
		}
	})

	t.Run("small png is converted", func(t *testing.T) {
		out, err := PrepareCover(pngImage(t, 10, 20), 640)
		if err != nil {
			t.Fatal(err)
		}
		if _, format, _ := image.DecodeConfig(bytes.NewReader(out)); format != "jpeg" {
			t.Errorf("expected jpeg, got %s", format)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := PrepareCover([]byte("not an image"), 640); err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, limit   int
		wantW, wantH int
	}{
		{w: 300, h: 300, limit: 640, wantW: 300, wantH: 300},
		{w: 1280, h: 1280, limit: 640, wantW: 640, wantH: 640},
		{w: 500, h: 1000, limit: 100, wantW: 50, wantH: 100},
		{w: 5000, h: 1, limit: 100, wantW: 100, wantH: 1},
		{w: 900, h: 900, limit: 0, wantW: 900, wantH: 900},
	}
	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, tt.limit)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fit(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
		}
	}
}

// mpegFrame returns one silent MPEG-1 Layer III frame (128 kbps, 44.1 kHz) with no ID3 tag in front.
func mpegFrame() []byte {
	frame := make([]byte, 417)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x64})
	return frame
}

func TestTagger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Song - Artist.mp3")
	audio := mpegFrame()
	if err := os.WriteFile(path, audio, 0644); err != nil {
		t.Fatal(err)
	}

	before, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("failed to open untagged file: %v", err)
	}
	if before.Count() != 0 {
		t.Fatalf("expected no frames before tagging, got %d", before.Count())
	}
	before.Close()

	track := models.Track{Title: "Song", Artists: []string{"Artist"}, Album: "Album"}
	tagger := NewTagger(64)

	if err := tagger.EmbedCover(path, pngImage(t, 128, 128), track); err != nil {
		t.Fatalf("EmbedCover() error = %v", err)
	}
	// A second pass must replace the picture, not add one.
	if err := tagger.EmbedCover(path, jpegImage(t, 32, 32), track); err != nil {
		t.Fatalf("EmbedCover() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	defer tag.Close()

	if tag.Version() != 3 {
		t.Errorf("expected ID3v2.3, got %d", tag.Version())
	}
	if tag.Title() != "Song" || tag.Artist() != "Artist" || tag.Album() != "Album" {
		t.Errorf("unexpected text frames: %q %q %q", tag.Title(), tag.Artist(), tag.Album())
	}
	pics := tag.GetFrames(tag.CommonID("Attached picture"))
	if len(pics) != 1 {
		t.Fatalf("expected 1 picture, got %d", len(pics))
	}
	pic, ok := pics[0].(id3v2.PictureFrame)
	if !ok {
		t.Fatalf("unexpected frame type %T", pics[0])
	}
	if pic.PictureType != id3v2.PTFrontCover || pic.MimeType != "image/jpeg" {
		t.Errorf("unexpected picture frame %+v", pic.MimeType)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("ID3")) || !bytes.HasSuffix(data, audio) {
		t.Error("expected the tag in front of the untouched audio frame")
	}
}

func TestTaggerMissingFile(t *testing.T) {
	if err := NewTagger(0).EmbedCover(filepath.Join(t.TempDir(), "nope.mp3"), nil, models.Track{}); err == nil {
		t.Error("expected error for missing file")
	}
}
