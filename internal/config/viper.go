package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// viperKeys defines the mapping between config keys and their Viper
// counterparts.
const (
	keyDarkTheme       = "display.dark_theme"
	keyTwentyFourHour  = "display.24hr_clock"
	keyExportReminder  = "settings.export_reminder"
	keyStaleThreshold  = "settings.stale_threshold_minutes"
	keyRetagDelay      = "settings.retag_delay"
	keyAutosaveDelay   = "settings.autosave_delay"
	keySessionCmd      = "settings.cmd"
	defaultStaleMins   = 720
	defaultRetagDly    = "2s"
	defaultAutosaveDly = "1s"
)

// WithViperConfig returns an Option that loads configuration from the
// YAML config file, writing the defaults on first run.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setDefaults(v)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading config file failed: %w", err)
		}

		if err := v.WriteConfig(); err != nil {
			return fmt.Errorf("writing default config failed: %w", err)
		}

		return loadViperConfig(v, c)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyDarkTheme, true)
	v.SetDefault(keyTwentyFourHour, true)
	v.SetDefault(keyExportReminder, true)
	v.SetDefault(keyStaleThreshold, defaultStaleMins)
	v.SetDefault(keyRetagDelay, defaultRetagDly)
	v.SetDefault(keyAutosaveDelay, defaultAutosaveDly)
	v.SetDefault(keySessionCmd, "")
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	c.Display.DarkTheme = v.GetBool(keyDarkTheme)
	c.Display.TwentyFourHour = v.GetBool(keyTwentyFourHour)
	c.Settings.ExportReminder = v.GetBool(keyExportReminder)
	c.Settings.StaleThresholdMinutes = v.GetInt(keyStaleThreshold)
	c.Settings.SessionCmd = v.GetString(keySessionCmd)

	retag, err := parseDelay(v.GetString(keyRetagDelay), defaultRetagDly)
	if err != nil {
		return err
	}

	c.Settings.RetagDelay = retag

	autosave, err := parseDelay(v.GetString(keyAutosaveDelay), defaultAutosaveDly)
	if err != nil {
		return err
	}

	c.Settings.AutosaveDelay = autosave

	return nil
}

// parseDelay parses a duration string, falling back to the default when
// the value is empty.
func parseDelay(s, fallback string) (time.Duration, error) {
	if s == "" {
		s = fallback
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	return d, nil
}
