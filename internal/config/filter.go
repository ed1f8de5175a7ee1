package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/acolytehq/acolyte-time/internal/timeutil"
)

var (
	errInvalidMode = errors.New(
		"please provide a valid view mode: day, week, month, or year",
	)

	errInvalidDate = errors.New(
		"please provide a valid reference date",
	)
)

// FilterConfig selects the reporting window for listings and statistics:
// a view mode plus the reference date whose window is reported.
type FilterConfig struct {
	Mode          timeutil.ViewMode
	ReferenceDate time.Time
	Tags          []string
}

// setFilterConfig builds the filter configuration from command-line
// arguments.
func setFilterConfig(ctx *cli.Context) (*FilterConfig, error) {
	filterCfg := &FilterConfig{
		Mode:          timeutil.ModeDay,
		ReferenceDate: time.Now(),
	}

	if ctx.String("tag") != "" {
		filterCfg.Tags = strings.Split(ctx.String("tag"), ",")
	}

	mode := timeutil.ViewMode(strings.TrimSpace(ctx.String("mode")))
	if mode != "" {
		if !mode.Valid() {
			return nil, errInvalidMode
		}

		filterCfg.Mode = mode
	}

	ref := ctx.String("date")
	if ref != "" {
		dt, err := dateparser.Parse(nil, ref)
		if err != nil {
			return nil, errInvalidDate
		}

		filterCfg.ReferenceDate = dt.Time
	}

	// --prev/--next shift the window by whole units of the view mode.
	for i := 0; i < ctx.Int("prev"); i++ {
		filterCfg.ReferenceDate = timeutil.Navigate(
			filterCfg.ReferenceDate, filterCfg.Mode, -1,
		)
	}

	for i := 0; i < ctx.Int("next"); i++ {
		filterCfg.ReferenceDate = timeutil.Navigate(
			filterCfg.ReferenceDate, filterCfg.Mode, 1,
		)
	}

	return filterCfg, nil
}

// Filter initializes and returns the reporting window configuration from
// command-line arguments.
func Filter(ctx *cli.Context) *FilterConfig {
	cfg, err := setFilterConfig(ctx)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	return cfg
}
