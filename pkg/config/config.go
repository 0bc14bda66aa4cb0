// Package config loads suite configuration with a layered fallback chain:
// environment variables override a local .storecheck file, which overrides
// the global config in the user's config directory, which overrides embedded
// defaults. The global config is installed from the embedded template on
// first run.
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

//go:embed defaults
var defaultsFS embed.FS

// localConfigName is the per-project config file looked up in the working directory.
const localConfigName = ".storecheck"

// envPrefix namespaces the environment variable overrides.
const envPrefix = "STORECHECK_"

// Config is the resolved suite configuration.
type Config struct {
	Values

	ConfigDir string // directory holding the global config file
}

// Load resolves configuration. configDir selects the global config location;
// empty uses ~/.config/storecheck. A .env file in the working directory is
// loaded before environment overrides are applied.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		configDir = filepath.Join(home, ".config", "storecheck")
	}

	// install the default config template on first run
	installer := newDefaultsInstaller(defaultsFS)
	if err := installer.Install(configDir); err != nil {
		return nil, fmt.Errorf("install defaults: %w", err)
	}

	loader := newValuesLoader(defaultsFS)
	values, err := loader.Load(localConfigName, filepath.Join(configDir, "config"))
	if err != nil {
		return nil, err
	}

	// .env is optional; a missing file is not an error
	_ = godotenv.Load()
	if err := applyEnv(&values); err != nil {
		return nil, err
	}

	return &Config{Values: values, ConfigDir: configDir}, nil
}

// applyEnv overlays STORECHECK_* environment variables onto values.
func applyEnv(v *Values) error {
	if s := os.Getenv(envPrefix + "URL"); s != "" {
		v.BaseURL = strings.TrimRight(s, "/")
	}
	if s := os.Getenv(envPrefix + "PLAN"); s != "" {
		v.PlanFile = s
	}
	if s := os.Getenv(envPrefix + "FIXTURE"); s != "" {
		v.FixturePath = s
	}
	if s := os.Getenv(envPrefix + "SCREENSHOT_DIR"); s != "" {
		v.ScreenshotDir = s
	}
	if s := os.Getenv(envPrefix + "LOG_DIR"); s != "" {
		v.LogDir = s
	}
	if s := os.Getenv(envPrefix + "NOTIFY_URLS"); s != "" {
		v.NotifyURLs = nil
		for u := range strings.SplitSeq(s, ",") {
			if t := strings.TrimSpace(u); t != "" {
				v.NotifyURLs = append(v.NotifyURLs, t)
			}
		}
	}

	boolVars := []struct {
		name  string
		value *bool
		set   *bool
	}{
		{"HEADLESS", &v.Headless, &v.HeadlessSet},
		{"STOP_ON_FAIL", &v.StopOnFail, &v.StopOnFailSet},
		{"NO_COLOR", &v.NoColor, &v.NoColorSet},
	}
	for _, bv := range boolVars {
		s := os.Getenv(envPrefix + bv.name)
		if s == "" {
			continue
		}
		val, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", envPrefix, bv.name, err)
		}
		*bv.value = val
		*bv.set = true
	}

	intVars := []struct {
		name  string
		value *int
		set   *bool
	}{
		{"SLOW_MO_MS", &v.SlowMoMs, &v.SlowMoMsSet},
		{"ACTION_TIMEOUT_MS", &v.ActionTimeoutMs, &v.ActionTimeoutMsSet},
		{"WAIT_TIMEOUT_MS", &v.WaitTimeoutMs, &v.WaitTimeoutMsSet},
		{"WAIT_INTERVAL_MS", &v.WaitIntervalMs, &v.WaitIntervalMsSet},
	}
	for _, iv := range intVars {
		s := os.Getenv(envPrefix + iv.name)
		if s == "" {
			continue
		}
		val, err := strconv.Atoi(s)
		if err != nil || val < 0 {
			return fmt.Errorf("invalid %s%s: %q must be a non-negative integer", envPrefix, iv.name, s)
		}
		*iv.value = val
		*iv.set = true
	}

	return nil
}

// WaitTimeout returns the element wait timeout as a duration.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutMs) * time.Millisecond
}

// WaitInterval returns the element poll interval as a duration.
func (c *Config) WaitInterval() time.Duration {
	return time.Duration(c.WaitIntervalMs) * time.Millisecond
}
