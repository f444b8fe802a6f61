package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/spdl/internal/tasks"
)

// Painter writes engine progress updates to a terminal.
type Painter struct {
	w     io.Writer
	plain bool
}

// NewPainter creates a Painter writing to w. When plain is set no styling is applied.
func NewPainter(w io.Writer, plain bool) *Painter {
	return &Painter{w: w, plain: plain}
}

// Render returns the styled text of one update.
func (p *Painter) Render(u tasks.ProgressUpdate) string {
	if p.plain || u.Message == "" {
		return u.Message
	}

	switch {
	case u.Warning:
		return styles.warn.Render(u.Message)
	case u.Phase == tasks.FetchPlaylist && strings.Contains(u.Message, "Name: "):
		return styles.ok.Render(u.Message)
	case u.Phase == tasks.Cleanup:
		return styles.help.Render(u.Message)
	default:
		return u.Message
	}
}

// Paint writes u followed by a newline.
func (p *Painter) Paint(u tasks.ProgressUpdate) {
	if u.Message == "" {
		return
	}
	fmt.Fprintln(p.w, p.Render(u))
}

// Drain paints every update received on ch until it is closed.
func (p *Painter) Drain(ch <-chan tasks.ProgressUpdate) {
	for u := range ch {
		p.Paint(u)
	}
}

// Banner renders a success line such as "Sync complete!".
func (p *Painter) Banner(msg string) string {
	if p.plain {
		return msg
	}
	return styles.ok.Render(msg)
}

// Failure renders a short error line.
func (p *Painter) Failure(msg string) string {
	if p.plain {
		return msg
	}
	return styles.err.Render(msg)
}
