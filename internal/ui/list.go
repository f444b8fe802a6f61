package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spdl/internal/models"
)

var _ list.Item = conventionItem{}

// conventionItem wraps [models.Convention] to implement [list.Item].
type conventionItem struct {
	convention models.Convention
}

func (i conventionItem) FilterValue() string { return i.convention.Label() }
func (i conventionItem) Title() string       { return fmt.Sprintf("%d. %s", i.convention.Code(), i.convention.Label()) }
func (i conventionItem) Description() string {
	if i.convention == models.ArtistTitle {
		return "Artist - Title.mp3"
	}
	return "Title - Artist.mp3"
}

func newConventionList(selected models.Convention) list.Model {
	items := []list.Item{
		conventionItem{convention: models.TitleArtist},
		conventionItem{convention: models.ArtistTitle},
	}

	l := list.New(items, list.NewDefaultDelegate(), 48, 10)
	l.Title = "How would you like to name the tracks?"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	if selected == models.ArtistTitle {
		l.Select(1)
	}
	return l
}
