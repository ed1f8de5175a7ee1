package app

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"
	"github.com/markusmobius/go-dateparser"
	"github.com/urfave/cli/v2"

	"github.com/acolytehq/acolyte-time/export"
	"github.com/acolytehq/acolyte-time/internal/apperr"
	"github.com/acolytehq/acolyte-time/internal/config"
	"github.com/acolytehq/acolyte-time/internal/models"
	"github.com/acolytehq/acolyte-time/internal/timeutil"
	"github.com/acolytehq/acolyte-time/report"
	"github.com/acolytehq/acolyte-time/stats"
	"github.com/acolytehq/acolyte-time/store"
	"github.com/acolytehq/acolyte-time/timer"
	"github.com/acolytehq/acolyte-time/tracker"
)

var errPunchRunning = errors.New(
	"a punch is already running: clock out first or pass --force",
)

// confirmPrompt asks for interactive confirmation before a destructive
// operation.
func confirmPrompt(message string) bool {
	var ok bool

	err := huh.NewConfirm().
		Title(message).
		Value(&ok).
		Run()
	if err != nil {
		return false
	}

	return ok
}

// resolveStalePunch handles an active punch abandoned long past the
// staleness threshold. The user supplies the real end time; a blank
// answer leaves the punch running.
func resolveStalePunch(p models.Punch, elapsedMinutes int) *time.Time {
	_ = beeep.Notify(
		"Acolyte Time",
		fmt.Sprintf(
			"A punch has been running for %s",
			timeutil.FormatDuration(elapsedMinutes),
		),
		"",
	)

	var answer string

	err := huh.NewInput().
		Title(fmt.Sprintf(
			"A punch started on %s is still running (%s elapsed)",
			p.StartTime.Format("Jan 2 at 15:04"),
			timeutil.FormatDuration(elapsedMinutes),
		)).
		Description(
			"When did it actually end (e.g. 'yesterday 6pm')? Leave blank to keep it running.",
		).
		Value(&answer).
		Run()
	if err != nil || strings.TrimSpace(answer) == "" {
		return nil
	}

	dt, err := dateparser.Parse(nil, answer)
	if err != nil {
		report.Error(errors.New("could not parse the end time, leaving the punch running"))
		return nil
	}

	return &dt.Time
}

// openTracker opens the store and loads the tracker, then reconciles any
// stale active punch before the command proper runs.
func openTracker() (*tracker.Tracker, func(), error) {
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return nil, nil, err
	}

	trk, err := tracker.New(
		db,
		tracker.WithConfirmer(confirmPrompt),
		tracker.WithRetagDelay(cfg.Settings.RetagDelay),
		tracker.WithAutosaveDelay(cfg.Settings.AutosaveDelay),
	)
	if err != nil {
		_ = db.Close()

		return nil, nil, err
	}

	cleanup := func() {
		trk.Close()
		_ = db.Close()
	}

	err = trk.ReconcileStaleActive(
		cfg.Settings.StaleThresholdMinutes,
		resolveStalePunch,
	)
	if err != nil {
		cleanup()

		return nil, nil, err
	}

	return trk, cleanup, nil
}

// runSessionCmd executes the configured hook command after a clock-in or
// clock-out.
func runSessionCmd(sessionCmd string) error {
	if sessionCmd == "" {
		return nil
	}

	cmdSlice, err := shellquote.Split(sessionCmd)
	if err != nil {
		return fmt.Errorf("unable to parse cmd option: %w", err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	name := cmdSlice[0]
	args := cmdSlice[1:]

	cmd := exec.Command(name, args...)

	return cmd.Run()
}

// resolveTagFlag maps the comma-delimited --tag value to tag ids,
// creating tags for unknown names.
func resolveTagFlag(trk *tracker.Tracker, value string) ([]string, error) {
	if value == "" {
		return nil, nil
	}

	return trk.ResolveTags(strings.Split(value, ","))
}

// inAction handles the in command which clocks in a new punch.
func inAction(ctx *cli.Context) error {
	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	tagIDs, err := resolveTagFlag(trk, ctx.String("tag"))
	if err != nil {
		return err
	}

	description := strings.Join(ctx.Args().Slice(), " ")

	punch, err := trk.Start(
		description,
		tagIDs,
		ctx.String("notes"),
		ctx.Bool("force"),
	)
	if err != nil {
		if errors.Is(err, apperr.ErrPunchConflict) {
			return errPunchRunning
		}

		return err
	}

	report.PunchStarted(&punch)

	return runSessionCmd(cfg.Settings.SessionCmd)
}

// outAction handles the out command which clocks out the running punch,
// applying any final edits in the same mutation.
func outAction(ctx *cli.Context) error {
	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	edits := tracker.FinalEdits{}

	if ctx.IsSet("description") {
		description := ctx.String("description")
		edits.Description = &description
	}

	if ctx.String("tag") != "" {
		edits.Tags, err = resolveTagFlag(trk, ctx.String("tag"))
		if err != nil {
			return err
		}
	}

	stopped, err := trk.Stop(edits)
	if err != nil {
		return err
	}

	if stopped == nil {
		report.NoActivePunch()

		return nil
	}

	report.PunchStopped(stopped, stopped.DurationMinutes(time.Now()))

	return runSessionCmd(cfg.Settings.SessionCmd)
}

// statusFromFile reports the running punch from the snapshot left by a
// live view in another terminal.
func statusFromFile() error {
	s, err := timer.ReadStatus()
	if err != nil {
		return err
	}

	if s == nil {
		report.NoActivePunch()

		return nil
	}

	p := &models.Punch{
		ID:          s.PunchID,
		StartTime:   s.StartTime,
		Description: s.Description,
	}

	report.ActivePunch(p, p.DurationMinutes(time.Now()))

	return nil
}

// statusAction prints the running punch, if any.
func statusAction(_ *cli.Context) error {
	trk, cleanup, err := openTracker()
	if err != nil {
		// Another process holds the database lock, fall back to the
		// snapshot it writes.
		if errors.Is(err, store.ErrAlreadyRunning) {
			return statusFromFile()
		}

		return err
	}
	defer cleanup()

	active := trk.ActivePunch()
	if active == nil {
		report.NoActivePunch()

		return nil
	}

	report.ActivePunch(active, active.DurationMinutes(time.Now()))

	return nil
}

// watchAction opens the live view over the running punch.
func watchAction(_ *cli.Context) error {
	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	if trk.ActivePunch() == nil {
		report.NoActivePunch()

		return nil
	}

	stopped, err := timer.Run(trk, cfg)
	if err != nil {
		return err
	}

	if stopped != nil {
		report.PunchStopped(stopped, stopped.DurationMinutes(time.Now()))

		return runSessionCmd(cfg.Settings.SessionCmd)
	}

	return nil
}

// filterByTagNames keeps the punches carrying at least one of the named
// tags.
func filterByTagNames(data *models.AppData, names []string) *models.AppData {
	ids := make(map[string]bool)

	for _, name := range names {
		name = strings.TrimSpace(name)

		for i := range data.Tags {
			if strings.EqualFold(data.Tags[i].Name, name) {
				ids[data.Tags[i].ID] = true
			}
		}
	}

	filtered := &models.AppData{
		Tags:     data.Tags,
		Settings: data.Settings,
	}

	for i := range data.Punches {
		for _, tid := range data.Punches[i].Tags {
			if ids[tid] {
				filtered.Punches = append(filtered.Punches, data.Punches[i])
				break
			}
		}
	}

	return filtered
}

// statsAction reports how tracked time was distributed over the
// requested window.
func statsAction(ctx *cli.Context) error {
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

	stats.Render(os.Stdout, data, conf.Mode, conf.ReferenceDate, time.Now())

	return nil
}

// exportAction writes the dataset to a JSON or CSV file.
func exportAction(ctx *cli.Context) error {
	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	now := time.Now()
	data := trk.Data()

	var (
		b   []byte
		ext string
	)

	switch format := ctx.String("format"); format {
	case "json", "":
		ext = "json"

		b, err = export.JSON(data, now)
	case "csv":
		ext = "csv"

		b, err = export.CSV(data.Punches, data.Tags, now)
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}

	if err != nil {
		return err
	}

	out := ctx.String("out")
	if out == "" {
		out = export.Filename(ext, now)
	}

	const filePerm = 0o644

	if err := os.WriteFile(out, b, filePerm); err != nil {
		return err
	}

	report.Exported(out)

	return nil
}

// importAction replaces the dataset with a previously exported backup.
func importAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errors.New("please provide the path of the file to import")
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}

	data, err := export.ImportJSON(raw)
	if err != nil {
		return err
	}

	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := trk.Import(data); err != nil {
		return err
	}

	report.DataImported(len(data.Punches), len(data.Tags))

	return nil
}

// resetAction restores the seed dataset.
func resetAction(_ *cli.Context) error {
	trk, cleanup, err := openTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := trk.Reset(); err != nil {
		return err
	}

	report.DataReset()

	return nil
}
