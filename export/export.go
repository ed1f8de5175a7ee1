// Package export serializes the application data for backup and
// reporting, and validates incoming backups on import.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/acolytehq/acolyte-time/internal/apperr"
	"github.com/acolytehq/acolyte-time/internal/models"
	"github.com/acolytehq/acolyte-time/internal/timeutil"
	"github.com/acolytehq/acolyte-time/stats"
)

const (
	// Version tags exported payloads.
	Version = "1.0.0"

	// JSONMIMEType and CSVMIMEType pair with the suggested filenames
	// when the caller triggers a download or writes a file.
	JSONMIMEType = "application/json"
	CSVMIMEType  = "text/csv"

	filenamePrefix = "acolyte-time-"
)

// Payload is the JSON export envelope. It round-trips losslessly through
// ImportJSON.
type Payload struct {
	models.AppData

	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
}

// Filename suggests the export file name for the given extension,
// following the acolyte-time-<ISO-date> contract.
func Filename(ext string, now time.Time) string {
	return filenamePrefix + now.Format("2006-01-02") + "." + ext
}

// JSON renders the full dataset with a version tag and export timestamp.
func JSON(data *models.AppData, now time.Time) ([]byte, error) {
	payload := Payload{
		AppData:    *data,
		Version:    Version,
		ExportedAt: now,
	}

	return json.MarshalIndent(payload, "", "  ")
}

// ImportJSON parses and strictly validates an exported payload. Any
// deviation from the export shape fails with an ImportError naming the
// missing piece; the result replaces the whole dataset, never merges.
func ImportJSON(raw []byte) (*models.AppData, error) {
	var payload struct {
		Punches  *[]models.Punch  `json:"punches"`
		Tags     *[]models.Tag    `json:"tags"`
		Settings *models.Settings `json:"settings"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &apperr.ImportError{Reason: "invalid JSON: " + err.Error()}
	}

	if payload.Punches == nil {
		return nil, &apperr.ImportError{
			Reason: "missing or invalid punches array",
		}
	}

	if payload.Tags == nil {
		return nil, &apperr.ImportError{
			Reason: "missing or invalid tags array",
		}
	}

	for i := range *payload.Punches {
		p := &(*payload.Punches)[i]

		if p.ID == "" || p.StartTime.IsZero() {
			return nil, &apperr.ImportError{
				Reason: fmt.Sprintf(
					"punch %d is missing required fields (id, startTime)",
					i+1,
				),
			}
		}
	}

	for i := range *payload.Tags {
		tag := &(*payload.Tags)[i]

		if tag.ID == "" || tag.Name == "" || tag.Color == "" {
			return nil, &apperr.ImportError{
				Reason: fmt.Sprintf(
					"tag %d is missing required fields (id, name, color)",
					i+1,
				),
			}
		}
	}

	data := &models.AppData{
		Punches: *payload.Punches,
		Tags:    *payload.Tags,
	}

	if payload.Settings != nil {
		data.Settings = *payload.Settings
	} else {
		data.Settings = models.Default().Settings
	}

	return data, nil
}

// CSV renders a denormalized tabular report: one row per punch with
// resolved tag names, followed by a per-tag summary section. Field
// escaping follows RFC 4180 via encoding/csv.
func CSV(
	punches []models.Punch,
	tags []models.Tag,
	now time.Time,
) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	header := []string{
		"Date",
		"Day",
		"Start Time",
		"End Time",
		"Duration",
		"Hours",
		"Tags",
		"Status",
		"Description",
		"Notes",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	tagNames := make(map[string]string, len(tags))
	for i := range tags {
		tagNames[tags[i].ID] = tags[i].Name
	}

	for i := range punches {
		p := &punches[i]

		names := make([]string, 0, len(p.Tags))
		for _, tid := range p.Tags {
			name, ok := tagNames[tid]
			if !ok {
				// keep the raw id so the row remains traceable
				name = tid
			}

			names = append(names, name)
		}

		end := ""
		status := "active"

		if p.EndTime != nil {
			end = p.EndTime.Format("15:04:05")
			status = "completed"
		}

		minutes := p.DurationMinutes(now)

		row := []string{
			p.StartTime.Format("2006-01-02"),
			p.StartTime.Format("Monday"),
			p.StartTime.Format("15:04:05"),
			end,
			timeutil.FormatDuration(minutes),
			fmt.Sprintf("%.2f", float64(minutes)/60),
			strings.Join(names, "; "),
			status,
			p.Description,
			p.Notes,
		}

		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	// Trailing per-tag summary: total hours and share of the grand
	// total.
	if err := w.Write([]string{}); err != nil {
		return nil, err
	}

	if err := w.Write([]string{"Tag", "Total Hours", "Percentage"}); err != nil {
		return nil, err
	}

	summary := stats.Compute(punches, tags, now)

	for _, share := range summary.Distribution {
		row := []string{
			share.TagName,
			fmt.Sprintf("%.2f", float64(share.Minutes)/60),
			fmt.Sprintf("%.1f%%", share.Percentage),
		}

		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()

	return buf.Bytes(), w.Error()
}
