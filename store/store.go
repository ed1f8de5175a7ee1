// Package store persists the application data blob to a bolt database.
// The whole dataset is a single JSON value: punch volumes are personal
// scale, and a wholesale read/write keeps the storage contract trivial.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/acolytehq/acolyte-time/internal/apperr"
	"github.com/acolytehq/acolyte-time/internal/models"
)

const (
	appBucket = "appdata"
	appKey    = "data"

	// blobVersion tags persisted payloads for forward compatibility.
	blobVersion = "1.0.0"
)

// ErrAlreadyRunning signals that another process holds the database
// lock. Callers can fall back to the status file for read-only views.
var ErrAlreadyRunning = errors.New(
	"is acolyte already running? Only one instance can be active at a time",
)

// Store is the persistence interface injected into the tracker.
type Store interface {
	// Load returns the persisted dataset, or the seed dataset when
	// nothing usable has been stored yet.
	Load() (*models.AppData, error)
	// Save persists the whole dataset, last write wins.
	Save(data *models.AppData) error
	// Close releases the underlying database handle.
	Close() error
}

// blob is the on-disk envelope around AppData.
type blob struct {
	models.AppData

	Version     string    `json:"version"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Client is a bolt-backed Store.
type Client struct {
	db *bolt.DB
}

// NewClient opens or creates the database at path and ensures the data
// bucket exists. Bolt's file lock doubles as the single-instance guard.
func NewClient(path string) (*Client, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, ErrAlreadyRunning
		}

		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(appBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Client{db: db}, nil
}

// Load reads the dataset. Missing or unparseable data yields the seed
// dataset rather than an error: a fresh start beats refusing to run.
func (c *Client) Load() (*models.AppData, error) {
	var raw []byte

	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(appBucket)).Get([]byte(appKey))
		if v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return models.Default(), nil
	}

	var b blob

	if err := json.Unmarshal(raw, &b); err != nil {
		slog.Warn("stored data is unreadable, starting from defaults",
			slog.String("error", err.Error()))

		return models.Default(), nil
	}

	if b.Punches == nil {
		b.Punches = []models.Punch{}
	}

	if len(b.Tags) == 0 {
		b.Tags = models.Default().Tags
	}

	return &b.AppData, nil
}

// Save writes the dataset back. Failures are wrapped as StorageError so
// callers can keep running unpersisted.
func (c *Client) Save(data *models.AppData) error {
	b := blob{
		AppData:     *data,
		Version:     blobVersion,
		LastUpdated: time.Now(),
	}

	value, err := json.Marshal(b)
	if err != nil {
		return &apperr.StorageError{Err: err}
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(appBucket)).Put([]byte(appKey), value)
	})
	if err != nil {
		return &apperr.StorageError{Err: err}
	}

	return nil
}

// Close ends the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}
