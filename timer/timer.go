// Package timer renders the live watch view for the running punch. The
// elapsed display refreshes every second, and the description and tags
// of the punch can be edited inline while it runs.
package timer

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/acolytehq/acolyte-time/internal/config"
	"github.com/acolytehq/acolyte-time/internal/models"
	"github.com/acolytehq/acolyte-time/tracker"
)

// editTarget identifies which punch field the inline input is editing.
type editTarget int

const (
	editNone editTarget = iota
	editDescription
	editTags
)

type keymap struct {
	stop        key.Binding
	description key.Binding
	tags        key.Binding
	detach      key.Binding
	confirm     key.Binding
	cancel      key.Binding
}

var defaultKeymap = keymap{
	stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stop"),
	),
	description: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "edit description"),
	),
	tags: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "edit tags"),
	),
	detach: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "detach"),
	),
	confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// tickMsg drives the once-per-second refresh of the elapsed display.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Watch is the bubbletea model behind the live punch view.
type Watch struct {
	trk     *tracker.Tracker
	cfg     *config.Config
	punch   *models.Punch
	input   textinput.Model
	help    help.Model
	editing editTarget
	stopped *models.Punch
	err     error
}

// New creates a watch view over the given tracker.
func New(trk *tracker.Tracker, cfg *config.Config) *Watch {
	input := textinput.New()
	input.CharLimit = 200

	return &Watch{
		trk:   trk,
		cfg:   cfg,
		punch: trk.ActivePunch(),
		input: input,
		help:  help.New(),
	}
}

func (w *Watch) Init() tea.Cmd {
	if w.punch == nil {
		return tea.Quit
	}

	return tick()
}

// Stopped returns the punch that was closed from within the view, or nil
// when the user detached and left it running.
func (w *Watch) Stopped() *models.Punch {
	return w.stopped
}

// beginEdit opens the inline input over the given field, prefilled with
// its current value.
func (w *Watch) beginEdit(target editTarget) tea.Cmd {
	w.editing = target

	switch target {
	case editDescription:
		w.input.Prompt = "description: "
		w.input.SetValue(w.punch.Description)
	case editTags:
		w.input.Prompt = "tags: "
		w.input.SetValue(strings.Join(w.tagNames(w.punch.Tags), ", "))
	case editNone:
	}

	w.input.CursorEnd()

	return w.input.Focus()
}

// commitEdit applies the inline input to the running punch. Tag edits go
// through the debounced retag path so rapid changes settle into a single
// session split.
func (w *Watch) commitEdit() {
	value := w.input.Value()

	switch w.editing {
	case editDescription:
		w.trk.SetActiveDescription(strings.TrimSpace(value))
	case editTags:
		names := strings.Split(value, ",")

		ids, err := w.trk.ResolveTags(names)
		if err != nil {
			w.err = err
			break
		}

		w.trk.RetagActive(ids)
	case editNone:
	}

	w.closeEdit()
}

func (w *Watch) closeEdit() {
	w.editing = editNone
	w.input.Blur()
	w.input.SetValue("")
}

// tagNames resolves tag ids to display names, falling back to the raw id
// when a tag has been deleted out from under the punch.
func (w *Watch) tagNames(ids []string) []string {
	tags := w.trk.Tags()

	byID := make(map[string]string, len(tags))
	for i := range tags {
		byID[tags[i].ID] = tags[i].Name
	}

	names := make([]string, 0, len(ids))

	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
			continue
		}

		names = append(names, id)
	}

	return names
}

// Run starts the live view and blocks until the user stops the punch or
// detaches. It returns the stopped punch, or nil when the punch was left
// running.
func Run(trk *tracker.Tracker, cfg *config.Config) (*models.Punch, error) {
	w := New(trk, cfg)

	model, err := tea.NewProgram(w).Run()
	if err != nil {
		return nil, err
	}

	final, ok := model.(*Watch)
	if !ok {
		return nil, nil
	}

	if final.err != nil {
		return nil, final.err
	}

	return final.stopped, nil
}
