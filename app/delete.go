package app

import (
	"github.com/urfave/cli/v2"

	"github.com/acolytehq/acolyte-time/report"
)

// deleteAction removes a recorded punch after confirmation.
func deleteAction(ctx *cli.Context) error {
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

	if err := trk.Delete(id); err != nil {
		return err
	}

	if trk.Data().FindPunch(id) == nil {
		report.PunchDeleted(shortID(id))
	}

	return nil
}
