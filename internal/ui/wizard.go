package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spdl/internal/manifest"
	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/services"
	"github.com/desertthunder/spdl/internal/shared"
)

// Step represents the current question of the wizard.
type Step int

const (
	ConfirmStep Step = iota
	ConventionStep
	LinkStep
	FolderStep
	LocationStep
	ResolvingStep
	DoneStep
)

// NameLookup returns the display name of a playlist link.
type NameLookup func(ctx context.Context, link string) (string, error)

// WizardOpts configures a [Wizard].
type WizardOpts struct {
	// Existing manifest to append to. When nil the wizard first asks whether to create one.
	Existing *manifest.Manifest
	// Convention preselected in the convention list.
	Convention models.Convention
	// DefaultLocation is used when the location answer is empty.
	DefaultLocation string
	// Lookup fills entry names. Optional.
	Lookup NameLookup
	// Reason is shown above the create question, e.g. "Sync file does not exist."
	Reason string
}

// Wizard is the bubbletea model that builds a [manifest.Manifest].
type Wizard struct {
	ctx         context.Context
	opts        WizardOpts
	step        Step
	manifest    *manifest.Manifest
	conventions list.Model
	input       textinput.Model
	pending     manifest.Entry
	notice      string
	declined    bool
	help        help.Model
	keys        keyMap
}

// NewWizard creates a new wizard model.
func NewWizard(ctx context.Context, opts WizardOpts) *Wizard {
	if !opts.Convention.Valid() {
		opts.Convention = models.DefaultConvention
	}
	if opts.DefaultLocation == "" {
		opts.DefaultLocation = "."
	}

	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 60

	w := &Wizard{
		ctx:         ctx,
		opts:        opts,
		step:        ConfirmStep,
		conventions: newConventionList(opts.Convention),
		input:       ti,
		help:        help.New(),
		keys:        newKeyMap(),
	}

	if opts.Existing != nil {
		w.manifest = opts.Existing
		w.enterLinkStep()
	}
	return w
}

// Step returns the question currently asked.
func (w *Wizard) Step() Step { return w.step }

// Done reports whether the wizard has finished, either completed or declined.
func (w *Wizard) Done() bool { return w.step == DoneStep }

// Result returns the manifest built by the wizard, or [shared.ErrUserDeclined] when the user declined or quit.
func (w *Wizard) Result() (*manifest.Manifest, error) {
	if w.declined || w.manifest == nil {
		return nil, shared.ErrUserDeclined
	}
	return w.manifest, nil
}

// Init starts the cursor blinking when the wizard opens on a text question.
func (w *Wizard) Init() tea.Cmd {
	if w.step == LinkStep {
		return textinput.Blink
	}
	return nil
}

// Update handles incoming messages and advances the wizard.
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.conventions.SetWidth(msg.Width - 4)
		w.help.Width = msg.Width
		return w, nil

	case tea.KeyMsg:
		if key.Matches(msg, w.keys.quit) {
			w.declined = true
			w.step = DoneStep
			return w, tea.Quit
		}

		switch w.step {
		case ConfirmStep:
			return w.handleConfirmKeys(msg)
		case ConventionStep:
			return w.handleConventionKeys(msg)
		case LinkStep:
			return w.handleLinkKeys(msg)
		case FolderStep:
			return w.handleFolderKeys(msg)
		case LocationStep:
			return w.handleLocationKeys(msg)
		}

	case Msg:
		if msg.kind == MsgNameResolved && w.step == ResolvingStep {
			res := msg.data.(nameResolved)
			if res.err != nil {
				w.notice = fmt.Sprintf("Could not look up playlist name: %v", res.err)
			} else {
				w.pending.Name = res.name
			}
			w.commitPending()
			return w, textinput.Blink
		}
	}

	return w, nil
}

func (w *Wizard) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.yes):
		w.step = ConventionStep
	case key.Matches(msg, w.keys.no), key.Matches(msg, w.keys.enter):
		w.declined = true
		w.step = DoneStep
		return w, tea.Quit
	}
	return w, nil
}

func (w *Wizard) handleConventionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1":
		return w.chooseConvention(models.TitleArtist)
	case "2":
		return w.chooseConvention(models.ArtistTitle)
	}

	if key.Matches(msg, w.keys.enter) {
		if item, ok := w.conventions.SelectedItem().(conventionItem); ok {
			return w.chooseConvention(item.convention)
		}
		return w.chooseConvention(models.DefaultConvention)
	}

	var cmd tea.Cmd
	w.conventions, cmd = w.conventions.Update(msg)
	return w, cmd
}

func (w *Wizard) chooseConvention(c models.Convention) (tea.Model, tea.Cmd) {
	w.manifest = manifest.New(c)
	return w, w.enterLinkStep()
}

func (w *Wizard) handleLinkKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, w.keys.enter) {
		var cmd tea.Cmd
		w.input, cmd = w.input.Update(msg)
		return w, cmd
	}

	link := strings.TrimSpace(w.input.Value())
	if link == "" {
		w.step = DoneStep
		return w, tea.Quit
	}
	if services.ClassifyLink(link) != services.PlaylistLink {
		w.notice = fmt.Sprintf("%q is not a Spotify playlist link", link)
		w.input.SetValue("")
		return w, nil
	}

	w.notice = ""
	w.pending = manifest.Entry{Link: link}
	w.input.Blur()
	w.step = FolderStep
	return w, nil
}

func (w *Wizard) handleFolderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.yes):
		w.pending.CreateFolder = true
	case key.Matches(msg, w.keys.no), key.Matches(msg, w.keys.enter):
		w.pending.CreateFolder = false
	default:
		return w, nil
	}

	w.step = LocationStep
	w.input.SetValue("")
	w.input.Placeholder = w.opts.DefaultLocation
	return w, w.input.Focus()
}

func (w *Wizard) handleLocationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, w.keys.enter) {
		var cmd tea.Cmd
		w.input, cmd = w.input.Update(msg)
		return w, cmd
	}

	location := strings.TrimSpace(w.input.Value())
	if location == "" {
		location = w.opts.DefaultLocation
	}
	w.pending.DownloadLocation = location
	w.input.Blur()

	if w.opts.Lookup == nil {
		w.commitPending()
		return w, textinput.Blink
	}

	w.step = ResolvingStep
	return w, w.lookupName(w.pending.Link)
}

func (w *Wizard) lookupName(link string) tea.Cmd {
	lookup := w.opts.Lookup
	ctx := w.ctx
	return func() tea.Msg {
		name, err := lookup(ctx, link)
		return nameResolvedMsg(link, name, err)
	}
}

// commitPending appends the pending entry and asks for the next link.
func (w *Wizard) commitPending() {
	w.manifest.Add(w.pending)
	w.pending = manifest.Entry{}
	w.enterLinkStep()
}

func (w *Wizard) enterLinkStep() tea.Cmd {
	w.step = LinkStep
	w.input.SetValue("")
	w.input.Placeholder = "https://open.spotify.com/playlist/..."
	return w.input.Focus()
}

// View renders the current question.
func (w *Wizard) View() string {
	var b strings.Builder

	switch w.step {
	case ConfirmStep:
		if w.opts.Reason != "" {
			b.WriteString(styles.warn.Render(w.opts.Reason))
			b.WriteString("\n")
		}
		b.WriteString(styles.title.Render("Do you want to create it? (y/N)"))
		b.WriteString("\n")
		b.WriteString(w.help.ShortHelpView([]key.Binding{w.keys.yes, w.keys.no, w.keys.quit}))
	case ConventionStep:
		b.WriteString(w.conventions.View())
		b.WriteString("\n")
		b.WriteString(w.help.ShortHelpView([]key.Binding{w.keys.up, w.keys.down, w.keys.enter, w.keys.quit}))
	case LinkStep:
		if n := w.manifest.Len(); n > 0 {
			b.WriteString(styles.ok.Render(fmt.Sprintf("%d playlist(s) added", n)))
			b.WriteString("\n")
		}
		b.WriteString(styles.title.Render("Playlist link (leave empty to finish):"))
		b.WriteString("\n")
		b.WriteString(w.input.View())
		b.WriteString("\n")
		b.WriteString(w.help.ShortHelpView(w.keys.ShortHelp()))
	case FolderStep:
		b.WriteString(styles.help.Render(w.pending.Link))
		b.WriteString("\n")
		b.WriteString(styles.title.Render("Create a folder for this playlist? (y/N)"))
		b.WriteString("\n")
		b.WriteString(w.help.ShortHelpView([]key.Binding{w.keys.yes, w.keys.no, w.keys.quit}))
	case LocationStep:
		b.WriteString(styles.title.Render("Download location for tracks of this playlist (leave empty for the default):"))
		b.WriteString("\n")
		b.WriteString(w.input.View())
		b.WriteString("\n")
		b.WriteString(w.help.ShortHelpView(w.keys.ShortHelp()))
	case ResolvingStep:
		b.WriteString(styles.help.Render("Looking up playlist name..."))
	case DoneStep:
		return ""
	}

	if w.notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.err.Render(w.notice))
	}
	return b.String() + "\n"
}

// RunWizard runs w in a bubbletea program and returns its result.
func RunWizard(ctx context.Context, w *Wizard, opts ...tea.ProgramOption) (*manifest.Manifest, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(w, opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	return final.(*Wizard).Result()
}
