package timer

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/acolytehq/acolyte-time/internal/config"
)

// Status is the snapshot the live view writes for other processes while
// it holds the database lock.
type Status struct {
	PunchID     string    `json:"punchId"`
	StartTime   time.Time `json:"startTime"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
}

func (w *Watch) writeStatusFile() error {
	s := Status{
		PunchID:     w.punch.ID,
		StartTime:   w.punch.StartTime,
		Description: w.punch.Description,
		Tags:        w.tagNames(w.punch.Tags),
	}

	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	const filePerm = 0o600

	return os.WriteFile(config.StatusFilePath(), b, filePerm)
}

func removeStatusFile() {
	_ = os.Remove(config.StatusFilePath())
}

// ReadStatus returns the snapshot left by a running live view, or nil
// when no snapshot exists.
func ReadStatus() (*Status, error) {
	b, err := os.ReadFile(config.StatusFilePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	var s Status

	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}

	return &s, nil
}
