package ui

import (
	"strings"
	"testing"

	"github.com/desertthunder/spdl/internal/tasks"
)

func TestPainter(t *testing.T) {
	t.Run("plain passes messages through", func(t *testing.T) {
		var buf strings.Builder
		p := NewPainter(&buf, true)

		ch := make(chan tasks.ProgressUpdate, 3)
		ch <- tasks.ProgressUpdate{Phase: tasks.DownloadTracks, Message: "1/2: Song - Artist"}
		ch <- tasks.ProgressUpdate{Phase: tasks.DownloadTracks}
		ch <- tasks.ProgressUpdate{Phase: tasks.DownloadTracks, Message: "\tFailed", Warning: true}
		close(ch)

		p.Drain(ch)

		if buf.String() != "1/2: Song - Artist\n\tFailed\n" {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})

	t.Run("styled output keeps the text", func(t *testing.T) {
		p := NewPainter(&strings.Builder{}, false)
		u := tasks.ProgressUpdate{Phase: tasks.DownloadTracks, Message: "could not embed", Warning: true}

		if got := p.Render(u); !strings.Contains(got, "could not embed") {
			t.Errorf("rendered text lost the message: %q", got)
		}
		if got := p.Banner("Sync complete!"); !strings.Contains(got, "Sync complete!") {
			t.Errorf("banner lost the message: %q", got)
		}
	})
}
