package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/acolytehq/acolyte-time/internal/models"
	"github.com/acolytehq/acolyte-time/store"
)

func newClient(t *testing.T) *store.Client {
	t.Helper()

	path := filepath.Join(t.TempDir(), "acolyte.db")

	client, err := store.NewClient(path)
	if err != nil {
		t.Fatalf("store.NewClient: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestLoadEmptyDatabaseSeedsDefaults(t *testing.T) {
	client := newClient(t)

	data, err := client.Load()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(models.Default(), data); diff != "" {
		t.Errorf("fresh database should load the seed dataset (-want +got):\n%s", diff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	client := newClient(t)

	start := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	data := &models.AppData{
		Punches: []models.Punch{
			{
				ID:          "p1",
				StartTime:   start,
				EndTime:     &end,
				Tags:        []string{"t1"},
				Description: "work",
			},
		},
		Tags: []models.Tag{
			{ID: "t1", Name: "Development", Color: "#111"},
		},
		Settings: models.Settings{Theme: "light"},
	}

	if err := client.Save(data); err != nil {
		t.Fatal(err)
	}

	got, err := client.Load()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSavedDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acolyte.db")

	client, err := store.NewClient(path)
	if err != nil {
		t.Fatal(err)
	}

	data := models.Default()
	data.Punches = append(data.Punches, models.Punch{
		ID:        "p1",
		StartTime: time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC),
		Tags:      []string{},
	})

	if err := client.Save(data); err != nil {
		t.Fatal(err)
	}

	if err := client.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := store.NewClient(path)
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		_ = reopened.Close()
	}()

	got, err := reopened.Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(got.Punches) != 1 || got.Punches[0].ID != "p1" {
		t.Fatalf("punches = %v, want the saved punch", got.Punches)
	}
}

func TestSecondInstanceIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acolyte.db")

	client, err := store.NewClient(path)
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		_ = client.Close()
	}()

	_, err = store.NewClient(path)
	if err == nil {
		t.Fatal("a second client on the same file should be rejected")
	}
}
