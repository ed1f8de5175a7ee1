// Package app wires the command-line surface to the punch tracker.
package app

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/acolytehq/acolyte-time/internal/config"
	"github.com/acolytehq/acolyte-time/internal/log"
	"github.com/acolytehq/acolyte-time/internal/ui"
)

const (
	envNoColor        = "NO_COLOR"
	envAcolyteNoColor = "ACOLYTE_NO_COLOR"
)

// cfg holds the loaded configuration for the lifetime of a command.
var cfg *config.Config

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the acolyte app instance.
func Get() *cli.App {
	acolyteApp := &cli.App{
		Name: "acolyte",
		Usage: `
		Acolyte is a personal time tracker for the command-line. Clock in
		when you start working, clock out when you stop, and let the
		reports tell you where the time went.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:      "in",
				Usage:     "Clock in and start tracking time",
				ArgsUsage: "[DESCRIPTION]",
				Flags: []cli.Flag{
					tagFlag,
					notesFlag,
					forceFlag,
				},
				Action: inAction,
			},
			{
				Name:  "out",
				Usage: "Clock out and close the running punch",
				Flags: []cli.Flag{
					tagFlag,
					descriptionFlag,
				},
				Action: outAction,
			},
			{
				Name:   "status",
				Usage:  "Print the running punch, if any",
				Action: statusAction,
			},
			{
				Name:   "watch",
				Usage:  "Open a live view of the running punch",
				Action: watchAction,
			},
			{
				Name:  "log",
				Usage: "List the punches recorded within a time period",
				Flags: []cli.Flag{
					modeFlag,
					dateFlag,
					tagFlag,
					prevFlag,
					nextFlag,
					jsonFlag,
				},
				Action: logAction,
			},
			{
				Name:      "edit",
				Usage:     "Edit a recorded punch",
				ArgsUsage: "PUNCH_ID",
				Flags: []cli.Flag{
					startFlag,
					endFlag,
					reopenFlag,
					descriptionFlag,
					notesFlag,
					tagFlag,
				},
				Action: editAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete a recorded punch",
				ArgsUsage: "PUNCH_ID",
				Action:    deleteAction,
			},
			{
				Name:   "tags",
				Usage:  "Manage tags",
				Action: listTagsAction,
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Create a new tag",
						ArgsUsage: "NAME",
						Flags:     []cli.Flag{colorFlag, iconFlag},
						Action:    addTagAction,
					},
					{
						Name:      "edit",
						Usage:     "Edit a tag",
						ArgsUsage: "TAG_ID",
						Flags:     []cli.Flag{nameFlag, colorFlag, iconFlag},
						Action:    editTagAction,
					},
					{
						Name:      "delete",
						Usage:     "Delete a tag and remove it from all punches",
						ArgsUsage: "TAG_ID",
						Action:    deleteTagAction,
					},
				},
			},
			{
				Name:  "stats",
				Usage: "Report how tracked time was distributed",
				Flags: []cli.Flag{
					modeFlag,
					dateFlag,
					tagFlag,
					prevFlag,
					nextFlag,
				},
				Action: statsAction,
			},
			{
				Name:  "export",
				Usage: "Export all data as JSON or CSV",
				Flags: []cli.Flag{
					formatFlag,
					outFlag,
				},
				Action: exportAction,
			},
			{
				Name:      "import",
				Usage:     "Replace all data with a previously exported backup",
				ArgsUsage: "FILE",
				Action:    importAction,
			},
			{
				Name:   "reset",
				Usage:  "Reset all data to the defaults",
				Action: resetAction,
			},
		},
		Flags: []cli.Flag{
			noColorFlag,
		},
		Action: statusAction,
		Before: beforeAction,
	}

	return acolyteApp
}

func beforeAction(ctx *cli.Context) error {
	var err error

	cfg, err = config.New(
		config.WithViperConfig(config.ConfigFilePath()),
	)
	if err != nil {
		return err
	}

	log.Init(config.LogFilePath())

	ui.DarkTheme = cfg.Display.DarkTheme

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envAcolyteNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}
