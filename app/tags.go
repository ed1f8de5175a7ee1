package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/acolytehq/acolyte-time/internal/config"
	"github.com/acolytehq/acolyte-time/internal/ui"
	"github.com/acolytehq/acolyte-time/tracker"
)

const defaultTagColor = "#6B7280"

var errMissingTagID = errors.New("please provide a tag id")

// findTagID resolves a full or abbreviated tag id, falling back to a
// case-insensitive name match.
func findTagID(trk *tracker.Tracker, arg string) (string, error) {
	var match string

	for _, tag := range trk.Tags() {
		if !strings.HasPrefix(tag.ID, arg) &&
			!strings.EqualFold(tag.Name, arg) {
			continue
		}

		if match != "" {
			return "", fmt.Errorf("tag id %s is ambiguous", arg)
		}

		match = tag.ID
	}

	if match == "" {
		return "", fmt.Errorf("no tag found with id or name %s", arg)
	}

	return match, nil
}

// listTagsAction prints all tags in natural name order.
func listTagsAction(_ *cli.Context) error {
	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	tags := trk.Tags()
	if len(tags) == 0 {
		pterm.Info.Println("no tags have been created yet")

		return nil
	}

	data := make([][]string, 0, len(tags)+1)

	data = append(data, []string{"ID", "NAME", "COLOR", "ICON"})

	for _, tag := range tags {
		data = append(data, []string{
			shortID(tag.ID),
			tag.Name,
			tag.Color,
			tag.Icon,
		})
	}

	ui.PrintTable(data, config.Stdout)

	return nil
}

// addTagAction creates a new tag.
func addTagAction(ctx *cli.Context) error {
	name := strings.TrimSpace(strings.Join(ctx.Args().Slice(), " "))
	if name == "" {
		return errors.New("please provide a tag name")
	}

	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	color := ctx.String("color")
	if color == "" {
		color = defaultTagColor
	}

	tag, err := trk.AddTag(name, color, ctx.String("icon"))
	if err != nil {
		return err
	}

	pterm.Success.Printfln("tag %s created", tag.Name)

	return nil
}

// editTagAction applies a partial edit to a tag.
func editTagAction(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" {
		return errMissingTagID
	}

	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := findTagID(trk, arg)
	if err != nil {
		return err
	}

	upd := tracker.TagUpdate{}

	if ctx.IsSet("name") {
		name := ctx.String("name")
		upd.Name = &name
	}

	if ctx.IsSet("color") {
		color := ctx.String("color")
		upd.Color = &color
	}

	if ctx.IsSet("icon") {
		icon := ctx.String("icon")
		upd.Icon = &icon
	}

	if err := trk.UpdateTag(id, upd); err != nil {
		return err
	}

	pterm.Success.Printfln("tag %s updated", shortID(id))

	return nil
}

// deleteTagAction removes a tag after confirmation and strips it from
// every punch.
func deleteTagAction(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" {
		return errMissingTagID
	}

	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := findTagID(trk, arg)
	if err != nil {
		return err
	}

	if err := trk.DeleteTag(id); err != nil {
		return err
	}

	if trk.Data().FindTag(id) == nil {
		pterm.Success.Printfln("tag %s deleted", shortID(id))
	}

	return nil
}
