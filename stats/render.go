package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/acolytehq/acolyte-time/internal/models"
	"github.com/acolytehq/acolyte-time/internal/timeutil"
	"github.com/acolytehq/acolyte-time/internal/ui"
)

const (
	barChartChar = "▇"
	noPunchesMsg = "No punches found for the specified time range"
)

// rangeTitle renders the reporting window heading for the given mode.
func rangeTitle(mode timeutil.ViewMode, r timeutil.Range) string {
	switch mode {
	case timeutil.ModeDay:
		return r.Start.Format("Monday, January 02, 2006")
	case timeutil.ModeWeek:
		return r.Start.Format("Jan 02") + " - " + r.End.Format("Jan 02, 2006")
	case timeutil.ModeMonth:
		return r.Start.Format("January 2006")
	case timeutil.ModeYear:
		return r.Start.Format("2006")
	}

	return ""
}

// barChart renders the histogram buckets as a horizontal bar chart.
func barChart(buckets []Bucket) string {
	var bars pterm.Bars

	for _, b := range buckets {
		bars = append(bars, pterm.Bar{
			Value: b.Minutes,
			Label: b.Label,
		})
	}

	chart, err := pterm.DefaultBarChart.WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		pterm.Error.Println(err)
		return ""
	}

	return ui.Blue("\nBreakdown (minutes)") + chart
}

// distributionList renders the per-tag shares.
func distributionList(summary Summary) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("\n%s\n", ui.Blue("Tags")))

	for _, share := range summary.Distribution {
		builder.WriteString(fmt.Sprintf(
			"%s: %s (%.1f%%)\n",
			share.TagName,
			ui.Green(timeutil.FormatDuration(share.Minutes)),
			share.Percentage,
		))
	}

	return builder.String()
}

// Render computes and prints the statistics for the punches whose start
// time falls inside the window of mode containing ref.
func Render(
	w io.Writer,
	data *models.AppData,
	mode timeutil.ViewMode,
	ref, now time.Time,
) {
	r := timeutil.DateRange(mode, ref)
	punches := FilterByRange(data.Punches, r)

	header := pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprintfln("Reporting period: %s", rangeTitle(mode, r))

	if len(punches) == 0 {
		fmt.Fprint(w, header)
		pterm.Info.Println(noPunchesMsg)

		return
	}

	summary := Compute(punches, data.Tags, now)

	total := fmt.Sprintf(
		"%s\nTime logged: %s\nPunches: %s\n",
		ui.Blue("Summary"),
		ui.Green(timeutil.FormatDuration(summary.TotalMinutes)),
		ui.Green(len(punches)),
	)

	output := fmt.Sprint(
		header,
		total,
		distributionList(summary),
		barChart(Histogram(punches, mode, r, now)),
	)

	fmt.Fprintln(w, strings.TrimSpace(output))
}
