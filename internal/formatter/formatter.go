// package formatter renders dry-run plans and download history as plain text, CSV or Markdown.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/shared"
	"github.com/desertthunder/spdl/internal/tasks"
)

// Format selects a report encoding.
type Format string

const (
	Text     Format = "text"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// ParseFormat converts a flag value into a [Format]. An empty value means [Text].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Text, nil
	case Text, CSV, Markdown:
		return f, nil
	case "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, csv or markdown)", shared.ErrInvalidArgument, s)
	}
}

// PlanRow is one planned download flattened for reporting.
type PlanRow struct {
	Playlist string
	Dir      string
	Identity string
	Track    models.Track
}

// PlanRows flattens the playlist results of entries into rows in plan order.
// Track links and failed entries carry no plan and are skipped.
func PlanRows(entries []tasks.LinkResult) []PlanRow {
	var rows []PlanRow
	for _, e := range entries {
		if e.Playlist == nil || e.Playlist.Plan.Missing == nil {
			continue
		}
		p := e.Playlist
		p.Plan.Missing.Each(func(_ int, id string, track models.Track) bool {
			rows = append(rows, PlanRow{Playlist: p.Name, Dir: p.Dir, Identity: id, Track: track})
			return true
		})
	}
	return rows
}

// RenderPlan encodes the plans of entries in format f.
func RenderPlan(entries []tasks.LinkResult, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return planCSV(entries)
	case Markdown:
		return planMarkdown(entries), nil
	case Text, "":
		return planText(entries), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

func planCSV(entries []tasks.LinkResult) ([]byte, error) {
	records := [][]string{{"Playlist", "Directory", "Identity", "Title", "Artist", "Album", "Link"}}
	for _, row := range PlanRows(entries) {
		records = append(records, []string{
			row.Playlist,
			row.Dir,
			row.Identity,
			row.Track.Title,
			row.Track.Artist(),
			row.Track.Album,
			row.Track.Link(),
		})
	}
	return encodeCSV(records)
}

func planMarkdown(entries []tasks.LinkResult) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Sync plan\n\n")

	for _, e := range entries {
		switch {
		case e.Err != nil:
			fmt.Fprintf(&buf, "## %s\n\n**Error**: %v\n\n", e.Link, e.Err)
		case e.Playlist != nil:
			p := e.Playlist
			fmt.Fprintf(&buf, "## %s\n\n", p.Name)
			if p.Owner != "" {
				fmt.Fprintf(&buf, "**Owner**: %s\n", p.Owner)
			}
			fmt.Fprintf(&buf, "**Directory**: `%s`\n", p.Dir)
			fmt.Fprintf(&buf, "**Present**: %d\n", p.Plan.Present)
			fmt.Fprintf(&buf, "**Missing**: %d\n\n", p.Plan.Len())
			if p.Plan.Missing != nil {
				p.Plan.Missing.Each(func(i int, id string, track models.Track) bool {
					fmt.Fprintf(&buf, "%d. [%s](%s)\n", i, id, track.Link())
					return true
				})
				if p.Plan.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return buf.Bytes()
}

func planText(entries []tasks.LinkResult) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		switch {
		case e.Err != nil:
			fmt.Fprintf(&buf, "%s: %v\n", e.Link, e.Err)
		case e.Playlist != nil:
			p := e.Playlist
			buf.WriteString(p.Plan.Summary(p.Name, p.Dir))
			buf.WriteString("\n")
			if p.Plan.Missing != nil {
				p.Plan.Missing.Each(func(i int, id string, _ models.Track) bool {
					fmt.Fprintf(&buf, "%d/%d: %s\n", i, p.Plan.Len(), id)
					return true
				})
			}
		}
	}
	return buf.Bytes()
}

// RenderHistory encodes download records in format f.
func RenderHistory(records []*models.DownloadRecord, f Format) ([]byte, error) {
	switch f {
	case CSV:
		rows := [][]string{{"ID", "Run", "Identity", "Title", "Artist", "Album", "Playlist", "Path", "Downloaded"}}
		for _, r := range records {
			rows = append(rows, []string{
				r.ID, r.RunID, r.Identity, r.Title, r.Artist, r.Album, r.Playlist, r.Path,
				r.DownloadedAt.Format(time.RFC3339),
			})
		}
		return encodeCSV(rows)
	case Markdown:
		var buf bytes.Buffer
		buf.WriteString("# Download history\n\n")
		buf.WriteString("| Downloaded | Track | Playlist | Path |\n")
		buf.WriteString("| --- | --- | --- | --- |\n")
		for _, r := range records {
			fmt.Fprintf(&buf, "| %s | %s | %s | `%s` |\n",
				r.DownloadedAt.Format(time.DateTime), escapeCell(r.Identity), escapeCell(r.Playlist), r.Path)
		}
		return buf.Bytes(), nil
	case Text, "":
		var buf bytes.Buffer
		if len(records) == 0 {
			buf.WriteString("No downloads recorded.\n")
		}
		for _, r := range records {
			fmt.Fprintf(&buf, "%s  %s", r.DownloadedAt.Format(time.DateTime), r.Identity)
			if r.Playlist != "" {
				fmt.Fprintf(&buf, " (%s)", r.Playlist)
			}
			fmt.Fprintf(&buf, "\n    %s\n", r.Path)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// RenderRuns encodes sync runs in format f.
func RenderRuns(runs []*models.SyncRun, f Format) ([]byte, error) {
	finished := func(r *models.SyncRun) string {
		if r.FinishedAt == nil {
			return ""
		}
		return r.FinishedAt.Format(time.RFC3339)
	}

	switch f {
	case CSV:
		rows := [][]string{{"ID", "Mode", "Target", "Started", "Finished", "Planned", "Downloaded", "Failed"}}
		for _, r := range runs {
			rows = append(rows, []string{
				r.ID, r.Mode, r.Target, r.StartedAt.Format(time.RFC3339), finished(r),
				strconv.Itoa(r.Planned), strconv.Itoa(r.Downloaded), strconv.Itoa(r.Failed),
			})
		}
		return encodeCSV(rows)
	case Markdown:
		var buf bytes.Buffer
		buf.WriteString("# Sync runs\n\n")
		buf.WriteString("| Started | Mode | Target | Planned | Downloaded | Failed |\n")
		buf.WriteString("| --- | --- | --- | ---: | ---: | ---: |\n")
		for _, r := range runs {
			fmt.Fprintf(&buf, "| %s | %s | %s | %d | %d | %d |\n",
				r.StartedAt.Format(time.DateTime), r.Mode, escapeCell(r.Target), r.Planned, r.Downloaded, r.Failed)
		}
		return buf.Bytes(), nil
	case Text, "":
		var buf bytes.Buffer
		if len(runs) == 0 {
			buf.WriteString("No runs recorded.\n")
		}
		for _, r := range runs {
			state := "running"
			if r.FinishedAt != nil {
				state = fmt.Sprintf("%d/%d downloaded, %d failed", r.Downloaded, r.Planned, r.Failed)
			}
			fmt.Fprintf(&buf, "%s  %-8s %s  [%s]\n", r.StartedAt.Format(time.DateTime), r.Mode, r.Target, state)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// WriteReport writes data to path, creating the parent directory.
func WriteReport(data []byte, path string) error {
	if path == "" {
		return fmt.Errorf("%w: report path is empty", shared.ErrMissingArgument)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func encodeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
