// Package config loads application settings and resolves the paths used
// for the database, config file, and log file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
)

type (
	// Config holds all configuration settings.
	Config struct {
		Display  DisplayConfig
		Settings SettingsConfig
		System   SystemConfig
	}

	// DisplayConfig holds display-related settings.
	DisplayConfig struct {
		DarkTheme      bool
		TwentyFourHour bool
	}

	// SettingsConfig holds tracking behavior settings.
	SettingsConfig struct {
		ExportReminder        bool
		StaleThresholdMinutes int
		RetagDelay            time.Duration
		AutosaveDelay         time.Duration
		SessionCmd            string
	}

	// SystemConfig holds resolved filesystem paths.
	SystemConfig struct {
		ConfigPath string
		DBPath     string
		LogPath    string
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v1.0.0"

var (
	configDir      = "acolyte"
	configFileName = "config.yml"
	dbFileName     = "acolyte.db"
	statusFileName = "status.json"
	logFileName    = "acolyte.log"
	dbFilePath     string
	configFilePath string
	statusFilePath string
	logFilePath    string
)

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

func Dir() string {
	return configDir
}

func DBFilePath() string {
	return dbFilePath
}

func StatusFilePath() string {
	return statusFilePath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

// InitializePaths resolves the XDG locations for the config file, the
// database, and the log file. An ACOLYTE_ENV value isolates test or
// development data from the real dataset.
func InitializePaths() {
	env := strings.TrimSpace(os.Getenv("ACOLYTE_ENV"))
	if env != "" {
		configFileName = fmt.Sprintf("config_%s.yml", env)
		dbFileName = fmt.Sprintf("acolyte_%s.db", env)
		statusFileName = fmt.Sprintf("status_%s.json", env)
		logFileName = fmt.Sprintf("acolyte_%s.log", env)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	statusFilePath = filepath.Join(dataDir, statusFileName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)
}

// New creates a new Config with default values and applies options.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("config option error: %w", err)
		}
	}

	cfg.System.ConfigPath = configFilePath
	cfg.System.DBPath = dbFilePath
	cfg.System.LogPath = logFilePath

	return cfg, nil
}
