package app

import "github.com/urfave/cli/v2"

var (
	tagFlag = &cli.StringFlag{
		Name:    "tag",
		Aliases: []string{"t"},
		Usage:   "Comma-delimited tag names. Unknown names create new tags",
	}

	notesFlag = &cli.StringFlag{
		Name:    "notes",
		Aliases: []string{"n"},
		Usage:   "Free-form notes attached to the punch",
	}

	forceFlag = &cli.BoolFlag{
		Name:  "force",
		Usage: "Close the running punch and start a new one in its place",
	}

	descriptionFlag = &cli.StringFlag{
		Name:    "description",
		Aliases: []string{"d"},
		Usage:   "Set the punch description",
	}

	modeFlag = &cli.StringFlag{
		Name:    "mode",
		Aliases: []string{"m"},
		Usage:   "Reporting window: day, week, month, or year (default: day)",
	}

	dateFlag = &cli.StringFlag{
		Name:  "date",
		Usage: "Reference date for the reporting window (e.g. 'yesterday', '2026-08-01')",
	}

	prevFlag = &cli.IntFlag{
		Name:  "prev",
		Usage: "Shift the reporting window backwards by this many units",
	}

	nextFlag = &cli.IntFlag{
		Name:  "next",
		Usage: "Shift the reporting window forwards by this many units",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "List output in JSON format",
	}

	startFlag = &cli.StringFlag{
		Name:  "start",
		Usage: "New start time for the punch",
	}

	endFlag = &cli.StringFlag{
		Name:  "end",
		Usage: "New end time for the punch",
	}

	reopenFlag = &cli.BoolFlag{
		Name:  "reopen",
		Usage: "Clear the end time and make the punch active again",
	}

	nameFlag = &cli.StringFlag{
		Name:  "name",
		Usage: "Tag name",
	}

	colorFlag = &cli.StringFlag{
		Name:  "color",
		Usage: "Tag color as a hex value (e.g. '#3b82f6')",
	}

	iconFlag = &cli.StringFlag{
		Name:  "icon",
		Usage: "Tag icon",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Export format: json or csv (default: json)",
		Value:   "json",
	}

	outFlag = &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Path of the export file (default: acolyte-time-<date>.<ext>)",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}
)
