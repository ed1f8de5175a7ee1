package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/markusmobius/go-dateparser"
	"github.com/urfave/cli/v2"

	"github.com/acolytehq/acolyte-time/internal/apperr"
	"github.com/acolytehq/acolyte-time/report"
	"github.com/acolytehq/acolyte-time/tracker"
)

var errMissingPunchID = errors.New("please provide a punch id")

// findPunchID resolves a full or abbreviated punch id to the punch it
// identifies.
func findPunchID(trk *tracker.Tracker, arg string) (string, error) {
	var match string

	for _, p := range trk.Punches() {
		if !strings.HasPrefix(p.ID, arg) {
			continue
		}

		if match != "" {
			return "", fmt.Errorf("punch id %s is ambiguous", arg)
		}

		match = p.ID
	}

	if match == "" {
		return "", fmt.Errorf("no punch found with id %s", arg)
	}

	return match, nil
}

// editAction applies a partial edit to a recorded punch.
func editAction(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" {
		return errMissingPunchID
	}

	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := findPunchID(trk, arg)
	if err != nil {
		return err
	}

	upd := tracker.PunchUpdate{}

	if v := ctx.String("start"); v != "" {
		dt, err := dateparser.Parse(nil, v)
		if err != nil {
			return fmt.Errorf("could not parse start time: %s", v)
		}

		upd.StartTime = &dt.Time
	}

	if v := ctx.String("end"); v != "" {
		dt, err := dateparser.Parse(nil, v)
		if err != nil {
			return fmt.Errorf("could not parse end time: %s", v)
		}

		upd.SetEnd = true
		upd.EndTime = &dt.Time
	}

	if ctx.Bool("reopen") {
		upd.SetEnd = true
		upd.EndTime = nil
	}

	if ctx.IsSet("description") {
		description := ctx.String("description")
		upd.Description = &description
	}

	if ctx.IsSet("notes") {
		notes := ctx.String("notes")
		upd.Notes = &notes
	}

	if ctx.String("tag") != "" {
		upd.Tags, err = resolveTagFlag(trk, ctx.String("tag"))
		if err != nil {
			return err
		}
	}

	err = trk.Update(id, upd)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidTimeRange):
			return errors.New("the end time cannot be before the start time")
		case errors.Is(err, apperr.ErrPunchConflict):
			return errors.New(
				"cannot reopen this punch while another one is running",
			)
		}

		return err
	}

	punch := trk.Data().FindPunch(id)

	report.PunchUpdated(punch)

	return nil
}
