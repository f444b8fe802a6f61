package models

import "testing"

func TestConvention(t *testing.T) {
	t.Run("ParseConvention", func(t *testing.T) {
		tests := []struct {
			code    int
			want    Convention
			wantErr bool
		}{
			{code: 1, want: TitleArtist},
			{code: 2, want: ArtistTitle},
			{code: 0, wantErr: true},
			{code: 3, wantErr: true},
		}

		for _, tt := range tests {
			got, err := ParseConvention(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseConvention(%d) error = %v, wantErr %v", tt.code, err, tt.wantErr)
				continue
			}
			if got != tt.want {
				t.Errorf("ParseConvention(%d) = %v, want %v", tt.code, got, tt.want)
			}
		}
	})

	t.Run("Label", func(t *testing.T) {
		if TitleArtist.Label() != "Title - Artist" {
			t.Errorf("unexpected label %q", TitleArtist.Label())
		}
		if ArtistTitle.Label() != "Artist - Title" {
			t.Errorf("unexpected label %q", ArtistTitle.Label())
		}
		if Convention(9).Label() != "" {
			t.Error("expected empty label for unknown convention")
		}
	})

	t.Run("Default is TitleArtist", func(t *testing.T) {
		if DefaultConvention.Code() != 1 {
			t.Errorf("expected default code 1, got %d", DefaultConvention.Code())
		}
	})
}

func TestTrack(t *testing.T) {
	track := Track{SourceID: "abc", Title: "Song", Artists: []string{"A", "B"}}

	if got := track.Artist(); got != "A, B" {
		t.Errorf("Artist() = %q", got)
	}
	if got := track.Link(); got != "https://open.spotify.com/track/abc" {
		t.Errorf("Link() = %q", got)
	}
	if (Track{}).Link() != "" {
		t.Error("expected empty link without source id")
	}
}

func TestDownloadRecordValidate(t *testing.T) {
	if err := (&DownloadRecord{}).Validate(); err == nil {
		t.Error("expected error for empty record")
	}
	if err := (&DownloadRecord{Identity: "x", Path: "/tmp/x.mp3"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
