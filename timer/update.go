package timer

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/acolytehq/acolyte-time/tracker"
)

func (w *Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// The punch can be stopped or deleted from another terminal while
		// the view is open. Exit cleanly instead of ticking over nothing.
		w.punch = w.trk.ActivePunch()
		if w.punch == nil {
			removeStatusFile()

			return w, tea.Quit
		}

		_ = w.writeStatusFile()

		return w, tick()

	case tea.KeyMsg:
		if w.editing != editNone {
			return w.updateEdit(msg)
		}

		switch {
		case key.Matches(msg, defaultKeymap.stop):
			stopped, err := w.trk.Stop(tracker.FinalEdits{})
			if err != nil {
				w.err = err
			}

			w.stopped = stopped

			removeStatusFile()

			return w, tea.Batch(tea.ClearScreen, tea.Quit)

		case key.Matches(msg, defaultKeymap.description):
			return w, w.beginEdit(editDescription)

		case key.Matches(msg, defaultKeymap.tags):
			return w, w.beginEdit(editTags)

		case key.Matches(msg, defaultKeymap.detach):
			// Detaching leaves the punch running.
			w.trk.Flush()
			removeStatusFile()

			return w, tea.Batch(tea.ClearScreen, tea.Quit)
		}

	case tea.WindowSizeMsg:
		w.help.Width = msg.Width

		return w, nil
	}

	return w, nil
}

func (w *Watch) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, defaultKeymap.confirm):
		w.commitEdit()

		return w, nil

	case key.Matches(msg, defaultKeymap.cancel):
		w.closeEdit()

		return w, nil
	}

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)

	return w, cmd
}
