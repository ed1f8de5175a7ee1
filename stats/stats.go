// Package stats computes aggregated punch statistics: totals, per-tag
// distribution, and histogram buckets. Everything is recomputed on
// demand from the current punch set; at personal data volumes
// correctness beats incremental bookkeeping.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/acolytehq/acolyte-time/internal/models"
	"github.com/acolytehq/acolyte-time/internal/timeutil"
)

const (
	// UntaggedID is the synthetic bucket receiving time from punches
	// with no tags.
	UntaggedID = "untagged"

	untaggedName  = "Untagged"
	untaggedColor = "#6b7280"
)

// TagShare is one entry of a per-tag time distribution.
type TagShare struct {
	TagID      string
	TagName    string
	TagColor   string
	Minutes    int
	Percentage float64
}

// Summary is the aggregate view of a punch set.
type Summary struct {
	TotalMinutes int
	Distribution []TagShare
}

// Bucket is one histogram bar.
type Bucket struct {
	Label   string
	Minutes int
}

// FilterByRange returns the punches whose start time falls inside r.
// Attribution is by start time only: a punch crossing the range boundary
// belongs wholly to the range containing its start.
func FilterByRange(punches []models.Punch, r timeutil.Range) []models.Punch {
	var filtered []models.Punch

	for i := range punches {
		if r.Contains(punches[i].StartTime) {
			filtered = append(filtered, punches[i])
		}
	}

	return filtered
}

// TotalMinutes sums the floored per-punch durations.
func TotalMinutes(punches []models.Punch, now time.Time) int {
	var total int

	for i := range punches {
		total += punches[i].DurationMinutes(now)
	}

	return total
}

// Compute builds the total and per-tag distribution for a punch set.
// A punch with no tags contributes its whole duration to the untagged
// bucket; a punch with N tags splits its duration evenly, duration/N to
// each. The equal split is a compatibility contract with existing
// reports, not a free design choice. Entries whose rounded minutes are 0
// are dropped from the list but still counted in the total.
func Compute(punches []models.Punch, tags []models.Tag, now time.Time) Summary {
	totalMinutes := TotalMinutes(punches, now)

	tagMinutes := make(map[string]float64)

	for i := range punches {
		p := &punches[i]
		duration := float64(p.DurationMinutes(now))

		if len(p.Tags) == 0 {
			tagMinutes[UntaggedID] += duration
			continue
		}

		perTag := duration / float64(len(p.Tags))
		for _, tagID := range p.Tags {
			tagMinutes[tagID] += perTag
		}
	}

	byID := make(map[string]*models.Tag, len(tags))
	for i := range tags {
		byID[tags[i].ID] = &tags[i]
	}

	distribution := make([]TagShare, 0, len(tagMinutes))

	for tagID, minutes := range tagMinutes {
		share := TagShare{
			TagID:    tagID,
			TagName:  untaggedName,
			TagColor: untaggedColor,
			Minutes:  int(math.Round(minutes)),
		}

		if tag := byID[tagID]; tag != nil {
			share.TagName = tag.Name
			share.TagColor = tag.Color
		}

		if totalMinutes > 0 {
			share.Percentage = minutes / float64(totalMinutes) * 100
		}

		if share.Minutes > 0 {
			distribution = append(distribution, share)
		}
	}

	sort.SliceStable(distribution, func(i, j int) bool {
		if distribution[i].Minutes != distribution[j].Minutes {
			return distribution[i].Minutes > distribution[j].Minutes
		}

		return distribution[i].TagName < distribution[j].TagName
	})

	return Summary{TotalMinutes: totalMinutes, Distribution: distribution}
}

// HourlyMinutes distributes the punch set over the 24 hours of the day.
// Unlike the daily buckets, a session is clipped at each hour boundary
// and contributes its partial minutes to every hour it touches. Hours
// wrap at midnight, so a punch running from 23:50 to 00:10 adds ten
// minutes to bucket 23 and ten to bucket 0.
func HourlyMinutes(punches []models.Punch, now time.Time) [24]float64 {
	var hours [24]float64

	for i := range punches {
		p := &punches[i]

		cur := p.StartTime
		end := p.End(now)

		for cur.Before(end) {
			boundary := time.Date(
				cur.Year(),
				cur.Month(),
				cur.Day(),
				cur.Hour(),
				0,
				0,
				0,
				cur.Location(),
			).Add(time.Hour)

			segmentEnd := boundary
			if end.Before(boundary) {
				segmentEnd = end
			}

			hours[cur.Hour()] += segmentEnd.Sub(cur).Minutes()
			cur = segmentEnd
		}
	}

	return hours
}

// DailyMinutes buckets the punch set into consecutive calendar days
// starting at start. Each punch is attributed wholly to the day its
// start time falls on; the asymmetry with the hourly clipping above is
// intentional and preserved.
func DailyMinutes(
	punches []models.Punch,
	start time.Time,
	days int,
	now time.Time,
) []int {
	totals := make([]int, days)

	dayStart := timeutil.RoundToStart(start)

	for i := range punches {
		p := &punches[i]

		if p.StartTime.Before(dayStart) {
			continue
		}

		day := dayStart
		for idx := 0; idx < days; idx++ {
			next := day.AddDate(0, 0, 1)

			if p.StartTime.Before(next) {
				totals[idx] += p.DurationMinutes(now)
				break
			}

			day = next
		}
	}

	return totals
}

// MonthlyMinutes buckets the punch set into the twelve months of year,
// attributed by start month.
func MonthlyMinutes(punches []models.Punch, year int, now time.Time) [12]int {
	var totals [12]int

	for i := range punches {
		p := &punches[i]

		if p.StartTime.Year() == year {
			totals[p.StartTime.Month()-1] += p.DurationMinutes(now)
		}
	}

	return totals
}

// Histogram builds the chart buckets for the given view mode. Fractional
// per-bucket arithmetic stays internal; minutes are rounded only at this
// display boundary.
func Histogram(
	punches []models.Punch,
	mode timeutil.ViewMode,
	r timeutil.Range,
	now time.Time,
) []Bucket {
	switch mode {
	case timeutil.ModeDay:
		hours := HourlyMinutes(punches, now)
		buckets := make([]Bucket, 0, len(hours))

		for hour, minutes := range hours {
			buckets = append(buckets, Bucket{
				Label:   time.Date(0, 1, 1, hour, 0, 0, 0, time.UTC).Format("15:04"),
				Minutes: int(math.Round(minutes)),
			})
		}

		return buckets
	case timeutil.ModeWeek:
		days := DailyMinutes(punches, r.Start, 7, now)
		buckets := make([]Bucket, 0, len(days))

		for i, minutes := range days {
			buckets = append(buckets, Bucket{
				Label:   r.Start.AddDate(0, 0, i).Format("Mon"),
				Minutes: minutes,
			})
		}

		return buckets
	case timeutil.ModeMonth:
		n := timeutil.DaysIn(r.Start)
		days := DailyMinutes(punches, r.Start, n, now)
		buckets := make([]Bucket, 0, len(days))

		for i, minutes := range days {
			buckets = append(buckets, Bucket{
				Label:   r.Start.AddDate(0, 0, i).Format("02"),
				Minutes: minutes,
			})
		}

		return buckets
	case timeutil.ModeYear:
		months := MonthlyMinutes(punches, r.Start.Year(), now)
		buckets := make([]Bucket, 0, len(months))

		for i, minutes := range months {
			buckets = append(buckets, Bucket{
				Label:   time.Month(i + 1).String()[:3],
				Minutes: minutes,
			})
		}

		return buckets
	}

	return nil
}
