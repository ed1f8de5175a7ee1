// Package models defines the entities persisted by acolyte-time.
package models

import (
	"slices"
	"time"
)

// Punch is a single tracked work interval. A nil EndTime marks the punch
// as active. At most one punch in the collection may be active at a time;
// the tracker enforces this, not the storage layer.
type Punch struct {
	ID          string     `json:"id"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Tags        []string   `json:"tags"`
	Description string     `json:"description"`
	Notes       string     `json:"notes,omitempty"`
}

// Active reports whether the punch is still running.
func (p *Punch) Active() bool {
	return p.EndTime == nil
}

// End returns the effective end of the punch, substituting now while the
// punch is active.
func (p *Punch) End(now time.Time) time.Time {
	if p.EndTime != nil {
		return *p.EndTime
	}

	return now
}

// DurationMinutes returns the elapsed time of the punch in whole minutes.
// The value is floored, never rounded: a 59-second punch reports 0.
// Existing reports depend on this, so it must not change.
func (p *Punch) DurationMinutes(now time.Time) int {
	return int(p.End(now).Sub(p.StartTime) / time.Minute)
}

// Clone returns a deep copy of the punch.
func (p *Punch) Clone() Punch {
	c := *p

	c.Tags = slices.Clone(p.Tags)

	if p.EndTime != nil {
		end := *p.EndTime
		c.EndTime = &end
	}

	return c
}

// Tag is a named category attached to punches for aggregation. Name doubles
// as a case-insensitive dedup key when tags are auto-created from punch
// descriptions.
type Tag struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Icon       string `json:"icon,omitempty"`
	IsShortcut bool   `json:"isShortcut,omitempty"`
}

// Settings holds user preferences carried along with the data blob.
type Settings struct {
	Theme          string `json:"theme,omitempty"`
	ExportReminder bool   `json:"exportReminder,omitempty"`
}

// AppData is the whole persisted state.
type AppData struct {
	Punches  []Punch  `json:"punches"`
	Tags     []Tag    `json:"tags"`
	Settings Settings `json:"settings"`
}

// FindPunch returns a pointer into Punches for the given id, or nil.
func (d *AppData) FindPunch(id string) *Punch {
	for i := range d.Punches {
		if d.Punches[i].ID == id {
			return &d.Punches[i]
		}
	}

	return nil
}

// FindTag returns a pointer into Tags for the given id, or nil.
func (d *AppData) FindTag(id string) *Tag {
	for i := range d.Tags {
		if d.Tags[i].ID == id {
			return &d.Tags[i]
		}
	}

	return nil
}

// ActivePunch returns the punch with no end time, or nil when nothing is
// running.
func (d *AppData) ActivePunch() *Punch {
	for i := range d.Punches {
		if d.Punches[i].Active() {
			return &d.Punches[i]
		}
	}

	return nil
}

// Default returns the seed dataset used when nothing has been persisted
// yet: the starter tag set and no punches.
func Default() *AppData {
	return &AppData{
		Punches: []Punch{},
		Tags: []Tag{
			{ID: "1", Name: "Development", Color: "#6B7280", Icon: "💻", IsShortcut: true},
			{ID: "2", Name: "Meeting", Color: "#475569", Icon: "📱", IsShortcut: true},
			{ID: "3", Name: "Design", Color: "#64748B", Icon: "🎨", IsShortcut: true},
			{ID: "4", Name: "Research", Color: "#71717A", Icon: "🔍", IsShortcut: true},
			{ID: "5", Name: "Documentation", Color: "#52525B", Icon: "📝", IsShortcut: true},
		},
		Settings: Settings{
			Theme:          "dark",
			ExportReminder: true,
		},
	}
}
