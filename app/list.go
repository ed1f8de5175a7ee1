package app

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/acolytehq/acolyte-time/internal/config"
	"github.com/acolytehq/acolyte-time/internal/models"
	"github.com/acolytehq/acolyte-time/internal/timeutil"
	"github.com/acolytehq/acolyte-time/internal/ui"
	"github.com/acolytehq/acolyte-time/stats"
)

func shortID(id string) string {
	const width = 8

	if len(id) > width {
		return id[:width]
	}

	return id
}

// punchTable renders punches as a boxed table, one row per punch.
func punchTable(punches []models.Punch, tags []models.Tag, now time.Time) {
	tagNames := make(map[string]string, len(tags))
	for i := range tags {
		tagNames[tags[i].ID] = tags[i].Name
	}

	data := make([][]string, 0, len(punches)+1)

	data = append(data, []string{
		"#", "ID", "DATE", "START", "END", "DURATION", "TAGS", "DESCRIPTION",
	})

	for i := range punches {
		p := &punches[i]

		end := ui.Green("running")
		if p.EndTime != nil {
			end = p.EndTime.Format("15:04:05")
		}

		names := make([]string, 0, len(p.Tags))

		for _, tid := range p.Tags {
			name, ok := tagNames[tid]
			if !ok {
				name = tid
			}

			names = append(names, name)
		}

		row := []string{
			pterm.Sprintf("%d", i+1),
			shortID(p.ID),
			p.StartTime.Format("Jan 02, 2006"),
			p.StartTime.Format("15:04:05"),
			end,
			timeutil.FormatDuration(p.DurationMinutes(now)),
			strings.Join(names, ", "),
			p.Description,
		}

		data = append(data, row)
	}

	ui.PrintTable(data, config.Stdout)
}

// logAction lists the punches recorded within the requested window.
func logAction(ctx *cli.Context) error {
	conf := config.Filter(ctx)

	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	data := trk.Data()
	if len(conf.Tags) > 0 {
		data = filterByTagNames(data, conf.Tags)
	}

	window := timeutil.DateRange(conf.Mode, conf.ReferenceDate)
	punches := stats.FilterByRange(data.Punches, window)

	if ctx.Bool("json") {
		b, err := json.Marshal(punches)
		if err != nil {
			return err
		}

		pterm.Println(string(b))

		return nil
	}

	if len(punches) == 0 {
		pterm.Info.Println("no punches were recorded in this period")

		return nil
	}

	punchTable(punches, data.Tags, time.Now())

	return nil
}
