// Package report prints user-facing status messages for punch events.
package report

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/acolytehq/acolyte-time/internal/models"
	"github.com/acolytehq/acolyte-time/internal/timeutil"
	"github.com/acolytehq/acolyte-time/internal/ui"
)

func PunchStarted(p *models.Punch) {
	pterm.Success.Printfln(
		"clocked in at %s", p.StartTime.Format("15:04:05"),
	)
}

func PunchStopped(p *models.Punch, mins int) {
	pterm.Success.Printfln(
		"clocked out at %s (%s worked)",
		p.End(p.StartTime).Format("15:04:05"),
		timeutil.FormatDuration(mins),
	)
}

func PunchUpdated(p *models.Punch) {
	pterm.Success.Printfln("punch %s updated", p.ID)
}

func PunchDeleted(id string) {
	pterm.Success.Printfln("punch %s deleted", id)
}

func NoActivePunch() {
	pterm.Info.Print("no punch is currently active")
}

func ActivePunch(p *models.Punch, mins int) {
	fmt.Printf(
		"clocked in since %s (%s elapsed)\n",
		ui.Highlight(p.StartTime.Format("15:04:05")),
		ui.Green(timeutil.FormatDuration(mins)),
	)
}

func DataImported(punches, tags int) {
	pterm.Success.Printfln("imported %d punches and %d tags", punches, tags)
}

func DataReset() {
	pterm.Success.Print("all data has been reset to defaults")
}

func Exported(path string) {
	pterm.Success.Printfln("exported to %s", path)
}

func Error(err error) {
	pterm.Error.Println(err)
}
