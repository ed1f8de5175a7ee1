package timer

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/acolytehq/acolyte-time/internal/timeutil"
)

var (
	baseStyle = lipgloss.NewStyle().Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("11"))

	labelStyle = lipgloss.NewStyle().Faint(true)
)

func (w *Watch) View() string {
	if w.punch == nil {
		return ""
	}

	var s strings.Builder

	timeFormat := "03:04:05 PM"
	if w.cfg.Display.TwentyFourHour {
		timeFormat = "15:04:05"
	}

	elapsed := int(time.Since(w.punch.StartTime).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	s.WriteString(headerStyle.Render("● clocked in"))
	s.WriteString(labelStyle.Render(
		" since " + w.punch.StartTime.Format(timeFormat),
	))
	s.WriteString("\n\n")
	s.WriteString(clockStyle.Render(timeutil.FormatClock(elapsed)))
	s.WriteString("\n\n")

	if w.punch.Description != "" {
		s.WriteString(w.punch.Description)
		s.WriteString("\n")
	}

	if len(w.punch.Tags) > 0 {
		s.WriteString(labelStyle.Render(
			"#" + strings.Join(w.tagNames(w.punch.Tags), " #"),
		))
		s.WriteString("\n")
	}

	if w.editing != editNone {
		s.WriteString("\n" + w.input.View() + "\n")
		s.WriteString(w.help.ShortHelpView([]key.Binding{
			defaultKeymap.confirm,
			defaultKeymap.cancel,
		}))

		return baseStyle.Render(s.String())
	}

	s.WriteString("\n" + w.help.ShortHelpView([]key.Binding{
		defaultKeymap.stop,
		defaultKeymap.description,
		defaultKeymap.tags,
		defaultKeymap.detach,
	}))

	return baseStyle.Render(s.String())
}
