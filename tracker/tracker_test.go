package tracker_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/acolytehq/acolyte-time/internal/apperr"
	"github.com/acolytehq/acolyte-time/internal/models"
	"github.com/acolytehq/acolyte-time/internal/testutil"
	"github.com/acolytehq/acolyte-time/tracker"
)

var t0 = time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)

// memStore is an in-memory Store for exercising the tracker without a
// database file.
type memStore struct {
	mu    sync.Mutex
	data  *models.AppData
	saves int
	fail  bool
}

func (s *memStore) Load() (*models.AppData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return models.Default(), nil
	}

	return s.data, nil
}

func (s *memStore) Save(data *models.AppData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return &apperr.StorageError{Err: errors.New("disk full")}
	}

	s.data = data
	s.saves++

	return nil
}

func (s *memStore) Close() error {
	return nil
}

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saves
}

func newTracker(t *testing.T, st *memStore, opts ...tracker.Option) (*tracker.Tracker, *testutil.Clock) {
	t.Helper()

	clock := testutil.NewClock(t0)
	ids := testutil.NewIDGenerator("punch")

	base := []tracker.Option{
		tracker.WithClock(clock.Now),
		tracker.WithIDGenerator(ids.Next),
	}

	trk, err := tracker.New(st, append(base, opts...)...)
	if err != nil {
		t.Fatalf("tracker.New: %v", err)
	}

	t.Cleanup(trk.Close)

	return trk, clock
}

func TestStartConflict(t *testing.T) {
	trk, _ := newTracker(t, &memStore{})

	_, err := trk.Start("first", nil, "", false)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}

	_, err = trk.Start("second", nil, "", false)
	if !errors.Is(err, apperr.ErrPunchConflict) {
		t.Fatalf("err = %v, want ErrPunchConflict", err)
	}

	if got := len(trk.Punches()); got != 1 {
		t.Fatalf("punches = %d, want 1: a failed start must not mutate", got)
	}
}

func TestForceStartClosesRunningPunch(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	first, err := trk.Start("first", nil, "", false)
	if err != nil {
		t.Fatal(err)
	}

	clock.Advance(10 * time.Minute)

	second, err := trk.Start("second", nil, "", true)
	if err != nil {
		t.Fatal(err)
	}

	punches := trk.Punches()
	if len(punches) != 2 {
		t.Fatalf("punches = %d, want 2", len(punches))
	}

	closed := punches[0]
	if closed.ID != first.ID {
		t.Fatalf("closed id = %s, want %s", closed.ID, first.ID)
	}

	if closed.EndTime == nil {
		t.Fatal("forced start must close the running punch")
	}

	// The two intervals stay adjacent: no gap, no overlap.
	if !closed.EndTime.Equal(second.StartTime) {
		t.Errorf(
			"closed end %v != new start %v", closed.EndTime, second.StartTime,
		)
	}

	active := trk.ActivePunch()
	if active == nil || active.ID != second.ID {
		t.Fatalf("active = %v, want %s", active, second.ID)
	}
}

func TestStopWithNothingActive(t *testing.T) {
	trk, _ := newTracker(t, &memStore{})

	stopped, err := trk.Stop(tracker.FinalEdits{})
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}

	if stopped != nil {
		t.Fatalf("stopped = %v, want nil", stopped)
	}
}

func TestStopAppliesFinalEdits(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	_, err := trk.Start("draft wording", nil, "", false)
	if err != nil {
		t.Fatal(err)
	}

	clock.Advance(30 * time.Minute)

	description := "final wording"

	stopped, err := trk.Stop(tracker.FinalEdits{
		Description: &description,
		Tags:        []string{"1"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if stopped.Description != description {
		t.Errorf("description = %q, want %q", stopped.Description, description)
	}

	if len(stopped.Tags) != 1 || stopped.Tags[0] != "1" {
		t.Errorf("tags = %v, want [1]", stopped.Tags)
	}

	if stopped.EndTime == nil || !stopped.EndTime.Equal(clock.Now()) {
		t.Errorf("end = %v, want %v", stopped.EndTime, clock.Now())
	}

	if trk.ActivePunch() != nil {
		t.Error("no punch should remain active after stop")
	}
}

func TestStopSynthesizesTagFromDescription(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	_, _ = trk.Start("Code review", nil, "", false)
	clock.Advance(20 * time.Minute)

	stopped, err := trk.Stop(tracker.FinalEdits{})
	if err != nil {
		t.Fatal(err)
	}

	if len(stopped.Tags) != 1 {
		t.Fatalf("tags = %v, want exactly one synthesized tag", stopped.Tags)
	}

	tagID := stopped.Tags[0]

	tag := trk.Data().FindTag(tagID)
	if tag == nil || tag.Name != "Code review" {
		t.Fatalf("tag = %v, want one named 'Code review'", tag)
	}

	if tag.IsShortcut {
		t.Error("synthesized tags must not become shortcuts")
	}

	// The same description matched case-insensitively reuses the tag.
	clock.Advance(time.Minute)
	_, _ = trk.Start("CODE REVIEW", nil, "", false)
	clock.Advance(10 * time.Minute)

	again, err := trk.Stop(tracker.FinalEdits{})
	if err != nil {
		t.Fatal(err)
	}

	if len(again.Tags) != 1 || again.Tags[0] != tagID {
		t.Errorf("tags = %v, want reuse of %s", again.Tags, tagID)
	}
}

func TestStopMatchesSeedTagByName(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	_, _ = trk.Start("development", nil, "", false)
	clock.Advance(5 * time.Minute)

	stopped, err := trk.Stop(tracker.FinalEdits{})
	if err != nil {
		t.Fatal(err)
	}

	if len(stopped.Tags) != 1 || stopped.Tags[0] != "1" {
		t.Errorf("tags = %v, want the seed Development tag", stopped.Tags)
	}
}

func TestUpdateRejectsEndBeforeStart(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	punch, _ := trk.Start("work", nil, "", false)
	clock.Advance(time.Hour)
	_, _ = trk.Stop(tracker.FinalEdits{})

	bad := t0.Add(-time.Hour)

	err := trk.Update(punch.ID, tracker.PunchUpdate{
		SetEnd:  true,
		EndTime: &bad,
	})
	if !errors.Is(err, apperr.ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange", err)
	}

	got := trk.Data().FindPunch(punch.ID)
	if got.EndTime == nil || !got.EndTime.Equal(clock.Now()) {
		t.Error("a rejected edit must not change the punch")
	}
}

func TestUpdateEndingActivePunchClearsActivePointer(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	punch, _ := trk.Start("work", nil, "", false)
	end := clock.Advance(45 * time.Minute)

	err := trk.Update(punch.ID, tracker.PunchUpdate{
		SetEnd:  true,
		EndTime: &end,
	})
	if err != nil {
		t.Fatal(err)
	}

	if trk.ActivePunch() != nil {
		t.Error("editing an end time onto the active punch must stop it")
	}
}

func TestUpdateReopenConflictsWithRunningPunch(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	first, _ := trk.Start("first", nil, "", false)
	clock.Advance(time.Hour)
	_, _ = trk.Stop(tracker.FinalEdits{})

	clock.Advance(time.Minute)
	_, _ = trk.Start("second", nil, "", false)

	err := trk.Update(first.ID, tracker.PunchUpdate{SetEnd: true})
	if !errors.Is(err, apperr.ErrPunchConflict) {
		t.Fatalf("err = %v, want ErrPunchConflict", err)
	}
}

func TestUpdateReopenMakesPunchActive(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	punch, _ := trk.Start("work", nil, "", false)
	clock.Advance(time.Hour)
	_, _ = trk.Stop(tracker.FinalEdits{})

	err := trk.Update(punch.ID, tracker.PunchUpdate{SetEnd: true})
	if err != nil {
		t.Fatal(err)
	}

	active := trk.ActivePunch()
	if active == nil || active.ID != punch.ID {
		t.Fatalf("active = %v, want %s", active, punch.ID)
	}
}

func TestUpdateUnknownIDIsTolerated(t *testing.T) {
	trk, _ := newTracker(t, &memStore{})

	err := trk.Update("nope", tracker.PunchUpdate{})
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	var prompts int

	trk, clock := newTracker(t, &memStore{}, tracker.WithConfirmer(
		func(string) bool {
			prompts++
			return true
		},
	))

	punch, _ := trk.Start("work", nil, "", false)
	clock.Advance(time.Minute)
	_, _ = trk.Stop(tracker.FinalEdits{})

	if err := trk.Delete(punch.ID); err != nil {
		t.Fatal(err)
	}

	if got := len(trk.Punches()); got != 0 {
		t.Fatalf("punches = %d, want 0", got)
	}

	// Deleting again neither errors nor prompts.
	if err := trk.Delete(punch.ID); err != nil {
		t.Fatal(err)
	}

	if prompts != 1 {
		t.Errorf("prompts = %d, want 1: unknown ids must not prompt", prompts)
	}
}

func TestDeleteDeclined(t *testing.T) {
	trk, _ := newTracker(t, &memStore{}, tracker.WithConfirmer(
		func(string) bool { return false },
	))

	punch, _ := trk.Start("work", nil, "", false)

	if err := trk.Delete(punch.ID); err != nil {
		t.Fatal(err)
	}

	if trk.Data().FindPunch(punch.ID) == nil {
		t.Error("a declined delete must keep the punch")
	}
}

func TestRetagSplitsSession(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	first, _ := trk.Start("deep work", nil, "notes here", false)
	boundary := clock.Advance(10 * time.Minute)

	trk.RetagActive([]string{"3"})
	trk.Flush()

	punches := trk.Punches()
	if len(punches) != 2 {
		t.Fatalf("punches = %d, want 2 after the split", len(punches))
	}

	closed := punches[0]
	if closed.ID != first.ID {
		t.Fatalf("closed id = %s, want %s", closed.ID, first.ID)
	}

	if closed.EndTime == nil || !closed.EndTime.Equal(boundary) {
		t.Errorf("closed end = %v, want %v", closed.EndTime, boundary)
	}

	opened := punches[1]
	if !opened.StartTime.Equal(boundary) {
		t.Errorf("new start = %v, want %v", opened.StartTime, boundary)
	}

	if len(opened.Tags) != 1 || opened.Tags[0] != "3" {
		t.Errorf("new tags = %v, want [3]", opened.Tags)
	}

	// Description and notes carry over to the new interval.
	if opened.Description != "deep work" || opened.Notes != "notes here" {
		t.Errorf(
			"description/notes = %q/%q, want carried over",
			opened.Description, opened.Notes,
		)
	}

	active := trk.ActivePunch()
	if active == nil || active.ID != opened.ID {
		t.Fatal("the new interval should be the active punch")
	}
}

func TestRetagDebounceKeepsOnlyLastChange(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	_, _ = trk.Start("work", nil, "", false)
	clock.Advance(10 * time.Minute)

	trk.RetagActive([]string{"2"})
	trk.RetagActive([]string{"3"})
	trk.Flush()

	punches := trk.Punches()
	if len(punches) != 2 {
		t.Fatalf("punches = %d, want 2: rapid changes settle into one split", len(punches))
	}

	if tags := punches[1].Tags; len(tags) != 1 || tags[0] != "3" {
		t.Errorf("tags = %v, want the last change [3]", tags)
	}
}

func TestRetagBackToCurrentCancelsSplit(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	_, _ = trk.Start("work", []string{"1"}, "", false)
	clock.Advance(10 * time.Minute)

	trk.RetagActive([]string{"2"})
	trk.RetagActive([]string{"1"})
	trk.Flush()

	if got := len(trk.Punches()); got != 1 {
		t.Fatalf("punches = %d, want 1: settling on the current tags is a no-op", got)
	}
}

func TestRetagAfterStopIsDropped(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	_, _ = trk.Start("work", nil, "", false)
	clock.Advance(10 * time.Minute)

	trk.RetagActive([]string{"2"})
	_, _ = trk.Stop(tracker.FinalEdits{})
	trk.Flush()

	if got := len(trk.Punches()); got != 1 {
		t.Fatalf("punches = %d, want 1: a pending split dies with the punch", got)
	}
}

func TestSetActiveDescriptionWritesThrough(t *testing.T) {
	st := &memStore{}
	trk, _ := newTracker(t, st)

	_, _ = trk.Start("first", nil, "", false)

	saves := st.saveCount()

	trk.SetActiveDescription("second")

	if got := trk.ActivePunch().Description; got != "second" {
		t.Fatalf("description = %q, want immediate in-memory update", got)
	}

	trk.Flush()

	if st.saveCount() != saves+1 {
		t.Error("flushing the edit should persist exactly once")
	}
}

func TestResolveTags(t *testing.T) {
	trk, _ := newTracker(t, &memStore{})

	ids, err := trk.ResolveTags([]string{"development", " Errands ", ""})
	if err != nil {
		t.Fatal(err)
	}

	if len(ids) != 2 {
		t.Fatalf("ids = %v, want 2 (blank names skipped)", ids)
	}

	if ids[0] != "1" {
		t.Errorf("ids[0] = %s, want the seed Development tag", ids[0])
	}

	created := trk.Data().FindTag(ids[1])
	if created == nil || created.Name != "Errands" {
		t.Fatalf("tag = %v, want a new one named 'Errands'", created)
	}

	// Resolving the same name again reuses the created tag.
	again, err := trk.ResolveTags([]string{"errands"})
	if err != nil {
		t.Fatal(err)
	}

	if len(again) != 1 || again[0] != ids[1] {
		t.Errorf("again = %v, want [%s]", again, ids[1])
	}
}

func TestReconcileStaleActive(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	punch, _ := trk.Start("overnight", nil, "", false)

	clock.Advance(13 * time.Hour)

	var sawElapsed int

	end := t0.Add(2 * time.Hour)

	err := trk.ReconcileStaleActive(720, func(p models.Punch, elapsed int) *time.Time {
		sawElapsed = elapsed
		return &end
	})
	if err != nil {
		t.Fatal(err)
	}

	if sawElapsed != 13*60 {
		t.Errorf("elapsed = %d, want %d", sawElapsed, 13*60)
	}

	got := trk.Data().FindPunch(punch.ID)
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Errorf("end = %v, want the corrected %v", got.EndTime, end)
	}

	if trk.ActivePunch() != nil {
		t.Error("reconciled punch must no longer be active")
	}
}

func TestReconcileUnderThresholdLeavesPunchAlone(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	_, _ = trk.Start("short", nil, "", false)
	clock.Advance(time.Hour)

	called := false

	err := trk.ReconcileStaleActive(720, func(models.Punch, int) *time.Time {
		called = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if called {
		t.Error("resolver must not run under the threshold")
	}

	if trk.ActivePunch() == nil {
		t.Error("punch should still be running")
	}
}

func TestReconcileResolverDeclines(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	_, _ = trk.Start("overnight", nil, "", false)
	clock.Advance(24 * time.Hour)

	err := trk.ReconcileStaleActive(720, func(models.Punch, int) *time.Time {
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if trk.ActivePunch() == nil {
		t.Error("a declined reconciliation leaves the punch running")
	}
}

func TestDeleteTagCascades(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	_, _ = trk.Start("work", []string{"1", "2"}, "", false)
	clock.Advance(time.Minute)
	_, _ = trk.Stop(tracker.FinalEdits{})

	if err := trk.DeleteTag("1"); err != nil {
		t.Fatal(err)
	}

	if trk.Data().FindTag("1") != nil {
		t.Fatal("tag should be gone")
	}

	for _, p := range trk.Punches() {
		for _, tid := range p.Tags {
			if tid == "1" {
				t.Fatal("deleted tag id still referenced by a punch")
			}
		}
	}
}

func TestTagsSortedNaturally(t *testing.T) {
	trk, _ := newTracker(t, &memStore{})

	_, _ = trk.AddTag("task 10", "#fff", "")
	_, _ = trk.AddTag("task 2", "#fff", "")

	tags := trk.Tags()

	var names []string
	for _, tag := range tags {
		names = append(names, tag.Name)
	}

	pos := func(name string) int {
		for i, n := range names {
			if n == name {
				return i
			}
		}
		return -1
	}

	if pos("task 2") > pos("task 10") {
		t.Errorf("natural order puts 'task 2' before 'task 10', got %v", names)
	}
}

func TestImportReplacesDataset(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	_, _ = trk.Start("old", nil, "", false)
	clock.Advance(time.Minute)
	_, _ = trk.Stop(tracker.FinalEdits{})

	incoming := &models.AppData{
		Punches: []models.Punch{
			{ID: "imported-1", StartTime: t0, Tags: []string{}},
		},
		Tags: []models.Tag{
			{ID: "t1", Name: "Imported", Color: "#000"},
		},
	}

	if err := trk.Import(incoming); err != nil {
		t.Fatal(err)
	}

	punches := trk.Punches()
	if len(punches) != 1 || punches[0].ID != "imported-1" {
		t.Fatalf("punches = %v, want only the imported one", punches)
	}

	// The imported punch has no end time, so it becomes the active punch.
	active := trk.ActivePunch()
	if active == nil || active.ID != "imported-1" {
		t.Fatalf("active = %v, want imported-1", active)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	trk, clock := newTracker(t, &memStore{})

	_, _ = trk.Start("work", nil, "", false)
	clock.Advance(time.Minute)
	_, _ = trk.Stop(tracker.FinalEdits{})

	if err := trk.Reset(); err != nil {
		t.Fatal(err)
	}

	if got := len(trk.Punches()); got != 0 {
		t.Errorf("punches = %d, want 0", got)
	}

	if got := len(trk.Tags()); got != 5 {
		t.Errorf("tags = %d, want the 5 seed tags", got)
	}
}

func TestPersistFailureKeepsInMemoryState(t *testing.T) {
	st := &memStore{fail: true}
	trk, _ := newTracker(t, st)

	_, err := trk.Start("work", nil, "", false)

	var storageErr *apperr.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("err = %v, want a StorageError", err)
	}

	// The punch survives in memory so the user's input is not lost.
	if trk.ActivePunch() == nil {
		t.Error("active punch should remain despite the failed save")
	}
}
