package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/npillmayer/schuko"
)

// Configuration keys of the cascade engine.
const (
	KeyValidationTimeout = "cascade.validation-timeout" // milliseconds
	KeyAutosaveQuiet     = "cascade.autosave-quiet"     // milliseconds
	KeySampleSets        = "cascade.samplesets"         // path of a YAML file
	KeyAppKey            = "app-key"
	KeyFontConfig        = "fontconfig" // absolute path of the fc-list binary
)

// Defaults for configuration values.
const (
	DefaultValidationTimeout = 3 * time.Second
	DefaultAutosaveQuiet     = time.Second
)

// ConfigString returns the value for key, or def if conf is nil or the key
// is unset.
func ConfigString(conf schuko.Configuration, key, def string) string {
	if conf == nil {
		return def
	}
	if v := strings.TrimSpace(conf.GetString(key)); v != "" {
		return v
	}
	return def
}

// ConfigMillis interprets the value for key as a number of milliseconds.
// Missing or malformed values yield def.
func ConfigMillis(conf schuko.Configuration, key string, def time.Duration) time.Duration {
	v := ConfigString(conf, key, "")
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
