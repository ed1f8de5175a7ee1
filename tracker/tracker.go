// Package tracker implements the punch lifecycle state machine: starting
// and stopping punches, in-place edits, the debounced retag split, and
// reconciliation of stale sessions left running from a previous day.
package tracker

import (
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"

	"github.com/acolytehq/acolyte-time/internal/apperr"
	"github.com/acolytehq/acolyte-time/internal/models"
	"github.com/acolytehq/acolyte-time/store"
)

const (
	// DefaultStaleThresholdMinutes is the elapsed time after which an
	// active punch found at load time is treated as abandoned (12 hours).
	DefaultStaleThresholdMinutes = 720

	// DefaultRetagDelay is the quiet period before a tag change on the
	// active punch triggers a session split.
	DefaultRetagDelay = 2 * time.Second

	// DefaultAutosaveDelay is the quiet period before live edits to the
	// active punch are written through to the store.
	DefaultAutosaveDelay = 1 * time.Second
)

// tagPalette supplies colors for tags synthesized from punch
// descriptions.
var tagPalette = []string{
	"#6B7280",
	"#475569",
	"#64748B",
	"#71717A",
	"#52525B",
	"#78716C",
	"#57534E",
	"#4B5563",
}

// Confirmer asks the user to approve a destructive operation. The core
// requests this capability from its caller instead of prompting itself.
type Confirmer func(message string) bool

// StaleResolver decides what to do with an abandoned active punch. It
// receives a copy of the punch and its elapsed minutes and returns a
// corrected end time, or nil to leave the punch running. Closing an
// abandoned session is a human decision: wall-clock "now" is not
// trustworthy after a laptop spent the night asleep.
type StaleResolver func(p models.Punch, elapsedMinutes int) *time.Time

// FinalEdits carries field edits captured while the timer was running,
// applied atomically with the stop. Nil fields leave the punch unchanged.
type FinalEdits struct {
	Description *string
	Tags        []string
}

// PunchUpdate describes a partial in-place edit of a punch. Nil fields
// are left untouched. EndTime is only applied when SetEnd is true, so a
// punch can be explicitly reopened by setting SetEnd with a nil EndTime.
type PunchUpdate struct {
	StartTime   *time.Time
	EndTime     *time.Time
	SetEnd      bool
	Description *string
	Notes       *string
	Tags        []string
}

// TagUpdate describes a partial edit of a tag.
type TagUpdate struct {
	Name  *string
	Color *string
	Icon  *string
}

// Tracker owns the in-memory dataset and the derived active punch
// pointer, and writes every mutation through to the store.
type Tracker struct {
	mu       sync.Mutex
	store    store.Store
	data     *models.AppData
	activeID string

	now     func() time.Time
	newID   func() string
	confirm Confirmer

	retag    *debouncer
	autosave *debouncer
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock injects a time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator injects an identifier source, mainly for tests.
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// WithConfirmer injects the confirmation capability used before
// destructive operations.
func WithConfirmer(confirm Confirmer) Option {
	return func(t *Tracker) { t.confirm = confirm }
}

// WithRetagDelay overrides the retag split quiet period.
func WithRetagDelay(d time.Duration) Option {
	return func(t *Tracker) { t.retag = newDebouncer(d) }
}

// WithAutosaveDelay overrides the live-edit write-through quiet period.
func WithAutosaveDelay(d time.Duration) Option {
	return func(t *Tracker) { t.autosave = newDebouncer(d) }
}

// New loads the dataset from the store and derives the active punch
// pointer.
func New(st store.Store, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		store:    st,
		now:      time.Now,
		newID:    uuid.NewString,
		confirm:  func(string) bool { return true },
		retag:    newDebouncer(DefaultRetagDelay),
		autosave: newDebouncer(DefaultAutosaveDelay),
	}

	for _, opt := range opts {
		opt(t)
	}

	data, err := st.Load()
	if err != nil {
		return nil, err
	}

	t.data = data

	if active := data.ActivePunch(); active != nil {
		t.activeID = active.ID
	}

	return t, nil
}

// Data returns the in-memory dataset. Callers must treat it as
// read-only; all mutations go through Tracker methods.
func (t *Tracker) Data() *models.AppData {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.data
}

// Punches returns a copy of all punches.
func (t *Tracker) Punches() []models.Punch {
	t.mu.Lock()
	defer t.mu.Unlock()

	punches := make([]models.Punch, 0, len(t.data.Punches))
	for i := range t.data.Punches {
		punches = append(punches, t.data.Punches[i].Clone())
	}

	return punches
}

// ActivePunch returns a copy of the running punch, or nil when nothing
// is active.
func (t *Tracker) ActivePunch() *models.Punch {
	t.mu.Lock()
	defer t.mu.Unlock()

	active := t.data.FindPunch(t.activeID)
	if active == nil {
		return nil
	}

	p := active.Clone()

	return &p
}

// Start creates a new active punch. If one is already running and force
// is not set, it fails with ErrPunchConflict and mutates nothing. With
// force, the running punch is closed at the same instant the new one
// begins, keeping intervals adjacent and non-overlapping.
func (t *Tracker) Start(
	description string,
	tags []string,
	notes string,
	force bool,
) (models.Punch, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	if t.activeID != "" {
		if !force {
			return models.Punch{}, apperr.ErrPunchConflict
		}

		t.closeActive(now, FinalEdits{})
	}

	punch := models.Punch{
		ID:          t.newID(),
		StartTime:   now,
		EndTime:     nil,
		Tags:        slices.Clone(tags),
		Description: description,
		Notes:       notes,
	}

	if punch.Tags == nil {
		punch.Tags = []string{}
	}

	t.data.Punches = append(t.data.Punches, punch)
	t.activeID = punch.ID

	return punch, t.persist()
}

// Stop closes the active punch at the current instant, applying any
// final edits atomically with the same mutation. Stopping with nothing
// running is a tolerated no-op, not an error.
func (t *Tracker) Stop(edits FinalEdits) (*models.Punch, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.activeID == "" {
		return nil, nil
	}

	stopped := t.closeActive(t.now(), edits).Clone()

	return &stopped, t.persist()
}

// closeActive ends the running punch. Callers must hold the lock and
// guarantee an active punch exists. When the punch would close with no
// tags but has a description, a tag is resolved or synthesized from the
// description so every closed session remains attributable.
func (t *Tracker) closeActive(now time.Time, edits FinalEdits) *models.Punch {
	p := t.data.FindPunch(t.activeID)

	if edits.Description != nil {
		p.Description = *edits.Description
	}

	if edits.Tags != nil {
		p.Tags = slices.Clone(edits.Tags)
	}

	if len(p.Tags) == 0 && strings.TrimSpace(p.Description) != "" {
		p.Tags = []string{t.tagForDescription(p.Description)}
	}

	end := now
	p.EndTime = &end
	t.activeID = ""

	return p
}

// tagForDescription returns the id of the tag whose name matches the
// description case-insensitively, creating one with a palette color when
// no match exists. Callers must hold the lock.
func (t *Tracker) tagForDescription(description string) string {
	for i := range t.data.Tags {
		if strings.EqualFold(t.data.Tags[i].Name, description) {
			return t.data.Tags[i].ID
		}
	}

	tag := models.Tag{
		ID:         t.newID(),
		Name:       description,
		Color:      tagPalette[rand.IntN(len(tagPalette))],
		IsShortcut: false,
	}

	t.data.Tags = append(t.data.Tags, tag)

	return tag.ID
}

// Update applies a partial edit to the punch with the given id. Unknown
// ids are tolerated silently. An edit that would place the end before
// the start is rejected with ErrInvalidTimeRange and nothing changes.
// Setting an end time on the active punch terminates it exactly like
// Stop: editors that close a session must clear the active pointer.
func (t *Tracker) Update(id string, upd PunchUpdate) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.data.FindPunch(id)
	if p == nil {
		return nil
	}

	start := p.StartTime
	if upd.StartTime != nil {
		start = *upd.StartTime
	}

	end := p.EndTime
	if upd.SetEnd {
		end = upd.EndTime
	}

	if end != nil && end.Before(start) {
		return apperr.ErrInvalidTimeRange
	}

	// Reopening a closed punch while another is running would break the
	// single-active invariant.
	if end == nil && p.EndTime != nil && t.activeID != "" && t.activeID != id {
		return apperr.ErrPunchConflict
	}

	wasActive := p.EndTime == nil

	p.StartTime = start
	p.EndTime = end

	if upd.Description != nil {
		p.Description = *upd.Description
	}

	if upd.Notes != nil {
		p.Notes = *upd.Notes
	}

	if upd.Tags != nil {
		p.Tags = slices.Clone(upd.Tags)
	}

	switch {
	case wasActive && end != nil:
		t.activeID = ""
	case !wasActive && end == nil:
		t.activeID = id
	}

	return t.persist()
}

// Delete removes a punch after confirmation. Unknown ids are a silent
// no-op and never prompt.
func (t *Tracker) Delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.data.FindPunch(id) == nil {
		return nil
	}

	if !t.confirm("Are you sure you want to delete this punch?") {
		return nil
	}

	t.data.Punches = slices.DeleteFunc(t.data.Punches, func(p models.Punch) bool {
		return p.ID == id
	})

	if t.activeID == id {
		t.activeID = ""
	}

	return t.persist()
}

// RetagActive schedules a session split onto the new tag set. The split
// is debounced: a newer tag change before the quiet period elapses
// cancels and replaces the pending one, so rapid flicker produces a
// single split for the tag finally settled on. Changing tags back to the
// current set before settling cancels the split entirely.
func (t *Tracker) RetagActive(tags []string) {
	t.mu.Lock()

	active := t.data.FindPunch(t.activeID)
	if active == nil {
		t.mu.Unlock()
		return
	}

	if slices.Equal(active.Tags, tags) {
		t.mu.Unlock()
		t.retag.Cancel()

		return
	}

	captured := slices.Clone(tags)
	t.mu.Unlock()

	t.retag.Schedule(func() {
		if err := t.splitActive(captured); err != nil {
			slog.Error("retag split failed", slog.String("error", err.Error()))
		}
	})
}

// splitActive closes the active punch with its prior tags and opens a
// new one carrying the new tags and the current description and notes.
// The two punches share the same boundary instant: no gap, no overlap.
// A time report then attributes work to the tag active during each
// sub-interval instead of silently rewriting history.
func (t *Tracker) splitActive(tags []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	active := t.data.FindPunch(t.activeID)
	if active == nil {
		// The punch was stopped or deleted while the split was pending.
		return nil
	}

	description := active.Description
	notes := active.Notes
	now := t.now()

	t.closeActive(now, FinalEdits{})

	punch := models.Punch{
		ID:          t.newID(),
		StartTime:   now,
		EndTime:     nil,
		Tags:        slices.Clone(tags),
		Description: description,
		Notes:       notes,
	}

	if punch.Tags == nil {
		punch.Tags = []string{}
	}

	t.data.Punches = append(t.data.Punches, punch)
	t.activeID = punch.ID

	return t.persist()
}

// SetActiveDescription edits the running punch's description in place.
// The in-memory view reflects the change immediately; the write to the
// store is debounced so typing does not hammer the database. Wording
// drift is not a change of work category, so no split happens here.
func (t *Tracker) SetActiveDescription(description string) {
	t.setActiveField(func(p *models.Punch) { p.Description = description })
}

// SetActiveNotes edits the running punch's notes in place, with the same
// debounced write-through as SetActiveDescription.
func (t *Tracker) SetActiveNotes(notes string) {
	t.setActiveField(func(p *models.Punch) { p.Notes = notes })
}

func (t *Tracker) setActiveField(apply func(*models.Punch)) {
	t.mu.Lock()

	active := t.data.FindPunch(t.activeID)
	if active == nil {
		t.mu.Unlock()
		return
	}

	apply(active)
	t.mu.Unlock()

	t.autosave.Schedule(func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		if err := t.persist(); err != nil {
			slog.Error("autosave failed", slog.String("error", err.Error()))
		}
	})
}

// ResolveTags maps tag names to tag ids, synthesizing a tag for any
// name with no case-insensitive match. Blank names are skipped.
func (t *Tracker) ResolveTags(names []string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(names))

	before := len(t.data.Tags)

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		ids = append(ids, t.tagForDescription(name))
	}

	if len(t.data.Tags) != before {
		return ids, t.persist()
	}

	return ids, nil
}

// ReconcileStaleActive runs once after load. When the active punch has
// been running longer than the threshold, the resolver is given the
// chance to supply a corrected end time, applied through Update. The
// tracker never closes an abandoned session on its own.
func (t *Tracker) ReconcileStaleActive(
	thresholdMinutes int,
	resolve StaleResolver,
) error {
	t.mu.Lock()

	active := t.data.FindPunch(t.activeID)
	if active == nil {
		t.mu.Unlock()
		return nil
	}

	elapsed := active.DurationMinutes(t.now())
	if elapsed <= thresholdMinutes {
		t.mu.Unlock()
		return nil
	}

	p := active.Clone()
	t.mu.Unlock()

	if resolve == nil {
		return nil
	}

	end := resolve(p, elapsed)
	if end == nil {
		return nil
	}

	return t.Update(p.ID, PunchUpdate{SetEnd: true, EndTime: end})
}

// AddTag creates a new user-curated tag.
func (t *Tracker) AddTag(name, color, icon string) (models.Tag, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tag := models.Tag{
		ID:         t.newID(),
		Name:       name,
		Color:      color,
		Icon:       icon,
		IsShortcut: true,
	}

	t.data.Tags = append(t.data.Tags, tag)

	return tag, t.persist()
}

// UpdateTag applies a partial edit to a tag. Unknown ids are tolerated.
func (t *Tracker) UpdateTag(id string, upd TagUpdate) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tag := t.data.FindTag(id)
	if tag == nil {
		return nil
	}

	if upd.Name != nil {
		tag.Name = *upd.Name
	}

	if upd.Color != nil {
		tag.Color = *upd.Color
	}

	if upd.Icon != nil {
		tag.Icon = *upd.Icon
	}

	return t.persist()
}

// DeleteTag removes a tag after confirmation and cascade-removes its id
// from every punch: orphaned tag references are never left behind.
func (t *Tracker) DeleteTag(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.data.FindTag(id) == nil {
		return nil
	}

	if !t.confirm("Delete this tag? It will be removed from all punches.") {
		return nil
	}

	t.data.Tags = slices.DeleteFunc(t.data.Tags, func(tag models.Tag) bool {
		return tag.ID == id
	})

	for i := range t.data.Punches {
		t.data.Punches[i].Tags = slices.DeleteFunc(
			t.data.Punches[i].Tags,
			func(tid string) bool { return tid == id },
		)
	}

	return t.persist()
}

// Tags returns a copy of all tags in natural name order.
func (t *Tracker) Tags() []models.Tag {
	t.mu.Lock()
	defer t.mu.Unlock()

	tags := slices.Clone(t.data.Tags)

	slices.SortStableFunc(tags, func(a, b models.Tag) int {
		if natural.Less(a.Name, b.Name) {
			return -1
		}

		if natural.Less(b.Name, a.Name) {
			return 1
		}

		return 0
	})

	return tags
}

// Import replaces the whole dataset. Validation happens upstream; by the
// time data reaches here the replacement is unconditional.
func (t *Tracker) Import(data *models.AppData) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if data.Punches == nil {
		data.Punches = []models.Punch{}
	}

	if data.Tags == nil {
		data.Tags = []models.Tag{}
	}

	t.data = data
	t.activeID = ""

	if active := data.ActivePunch(); active != nil {
		t.activeID = active.ID
	}

	return t.persist()
}

// Reset restores the seed dataset after confirmation.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.confirm("Reset all data? This cannot be undone.") {
		return nil
	}

	t.data = models.Default()
	t.activeID = ""

	return t.persist()
}

// Flush settles any pending debounced work immediately.
func (t *Tracker) Flush() {
	t.retag.Flush()
	t.autosave.Flush()
}

// Close settles pending work and drops any armed timers.
func (t *Tracker) Close() {
	t.Flush()
	t.retag.Cancel()
	t.autosave.Cancel()
}

// persist writes the dataset through to the store. Callers must hold the
// lock. On failure the in-memory state is kept: the error is surfaced
// and the app keeps running unpersisted rather than discarding input.
func (t *Tracker) persist() error {
	err := t.store.Save(t.data)
	if err != nil {
		slog.Error("write-through failed", slog.String("error", err.Error()))
	}

	return err
}
