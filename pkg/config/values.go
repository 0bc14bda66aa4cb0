package config

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// Values holds scalar configuration values.
// Fields ending in *Set (e.g., HeadlessSet) track whether that field was
// explicitly set in config. This allows distinguishing explicit false/0 from
// "not set", enabling proper merge behavior where local config can override
// global config with zero values.
type Values struct {
	BaseURL            string
	Headless           bool
	HeadlessSet        bool // tracks if headless was explicitly set
	SlowMoMs           int
	SlowMoMsSet        bool // tracks if slow_mo_ms was explicitly set
	ActionTimeoutMs    int
	ActionTimeoutMsSet bool // tracks if action_timeout_ms was explicitly set
	WaitTimeoutMs      int
	WaitTimeoutMsSet   bool // tracks if wait_timeout_ms was explicitly set
	WaitIntervalMs     int
	WaitIntervalMsSet  bool // tracks if wait_interval_ms was explicitly set
	StopOnFail         bool
	StopOnFailSet      bool // tracks if stop_on_fail was explicitly set
	NoColor            bool
	NoColorSet         bool // tracks if no_color was explicitly set
	PlanFile           string
	FixturePath        string
	ScreenshotDir      string
	LogDir             string
	NotifyURLs         []string // go-pkgz/notify destination URLs
}

// valuesLoader loads values with embedded filesystem fallback.
type valuesLoader struct {
	embedFS embed.FS
}

// newValuesLoader creates a new valuesLoader with the given embedded filesystem.
func newValuesLoader(embedFS embed.FS) *valuesLoader {
	return &valuesLoader{embedFS: embedFS}
}

// Load loads values from config files with fallback chain: local → global → embedded.
// localConfigPath and globalConfigPath are full paths to config files (not directories).
func (vl *valuesLoader) Load(localConfigPath, globalConfigPath string) (Values, error) {
	// start with embedded defaults
	embedded, err := vl.parseValuesFromEmbedded()
	if err != nil {
		return Values{}, fmt.Errorf("parse embedded defaults: %w", err)
	}

	// parse global config if exists
	global, err := vl.parseValuesFromFile(globalConfigPath)
	if err != nil {
		return Values{}, fmt.Errorf("parse global config: %w", err)
	}

	// parse local config if exists
	local, err := vl.parseValuesFromFile(localConfigPath)
	if err != nil {
		return Values{}, fmt.Errorf("parse local config: %w", err)
	}

	// merge: embedded → global → local (local wins)
	result := embedded
	result.mergeFrom(&global)
	result.mergeFrom(&local)

	return result, nil
}

// parseValuesFromFile reads a config file and parses it into Values.
// returns empty Values (not error) if file doesn't exist or contains only
// comments/whitespace. this enables fallback to embedded defaults for files
// that are commented templates.
func (vl *valuesLoader) parseValuesFromFile(path string) (Values, error) {
	if path == "" {
		return Values{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return Values{}, nil
		}
		return Values{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if strings.TrimSpace(stripComments(string(data))) == "" {
		return Values{}, nil
	}

	return vl.parseValuesFromBytes(data)
}

// parseValuesFromEmbedded parses values from the embedded defaults/config file.
func (vl *valuesLoader) parseValuesFromEmbedded() (Values, error) {
	data, err := vl.embedFS.ReadFile("defaults/config")
	if err != nil {
		return Values{}, fmt.Errorf("read embedded defaults: %w", err)
	}
	return vl.parseValuesFromBytes(data)
}

// parseValuesFromBytes parses configuration from a byte slice into Values.
func (vl *valuesLoader) parseValuesFromBytes(data []byte) (Values, error) {
	// ignoreInlineComment: true prevents # from being treated as inline comment marker
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return Values{}, fmt.Errorf("parse config: %w", err)
	}

	var values Values
	section := cfg.Section("") // default section (no section header)

	if key, err := section.GetKey("base_url"); err == nil {
		values.BaseURL = strings.TrimRight(key.String(), "/")
	}

	// browser settings
	if key, err := section.GetKey("headless"); err == nil {
		val, boolErr := key.Bool()
		if boolErr != nil {
			return Values{}, fmt.Errorf("invalid headless: %w", boolErr)
		}
		values.Headless = val
		values.HeadlessSet = true
	}
	if key, err := section.GetKey("slow_mo_ms"); err == nil {
		val, err := nonNegativeInt(key, "slow_mo_ms")
		if err != nil {
			return Values{}, err
		}
		values.SlowMoMs = val
		values.SlowMoMsSet = true
	}

	// timing settings
	if key, err := section.GetKey("action_timeout_ms"); err == nil {
		val, err := nonNegativeInt(key, "action_timeout_ms")
		if err != nil {
			return Values{}, err
		}
		values.ActionTimeoutMs = val
		values.ActionTimeoutMsSet = true
	}
	if key, err := section.GetKey("wait_timeout_ms"); err == nil {
		val, err := nonNegativeInt(key, "wait_timeout_ms")
		if err != nil {
			return Values{}, err
		}
		values.WaitTimeoutMs = val
		values.WaitTimeoutMsSet = true
	}
	if key, err := section.GetKey("wait_interval_ms"); err == nil {
		val, err := nonNegativeInt(key, "wait_interval_ms")
		if err != nil {
			return Values{}, err
		}
		values.WaitIntervalMs = val
		values.WaitIntervalMsSet = true
	}

	// run settings
	if key, err := section.GetKey("stop_on_fail"); err == nil {
		val, boolErr := key.Bool()
		if boolErr != nil {
			return Values{}, fmt.Errorf("invalid stop_on_fail: %w", boolErr)
		}
		values.StopOnFail = val
		values.StopOnFailSet = true
	}
	if key, err := section.GetKey("no_color"); err == nil {
		val, boolErr := key.Bool()
		if boolErr != nil {
			return Values{}, fmt.Errorf("invalid no_color: %w", boolErr)
		}
		values.NoColor = val
		values.NoColorSet = true
	}

	// paths
	if key, err := section.GetKey("plan_file"); err == nil {
		values.PlanFile = key.String()
	}
	if key, err := section.GetKey("fixture_path"); err == nil {
		values.FixturePath = key.String()
	}
	if key, err := section.GetKey("screenshot_dir"); err == nil {
		values.ScreenshotDir = key.String()
	}
	if key, err := section.GetKey("log_dir"); err == nil {
		values.LogDir = key.String()
	}

	// notification destinations (comma-separated URLs)
	if key, err := section.GetKey("notify_urls"); err == nil {
		val := strings.TrimSpace(key.String())
		if val != "" {
			for p := range strings.SplitSeq(val, ",") {
				if t := strings.TrimSpace(p); t != "" {
					values.NotifyURLs = append(values.NotifyURLs, t)
				}
			}
		}
	}

	return values, nil
}

// nonNegativeInt parses an int key and rejects negative values.
func nonNegativeInt(key *ini.Key, name string) (int, error) {
	val, err := key.Int()
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s: must be non-negative, got %d", name, val)
	}
	return val, nil
}

// mergeFrom merges non-empty values from src into dst.
func (dst *Values) mergeFrom(src *Values) {
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.HeadlessSet {
		dst.Headless = src.Headless
		dst.HeadlessSet = true
	}
	if src.SlowMoMsSet {
		dst.SlowMoMs = src.SlowMoMs
		dst.SlowMoMsSet = true
	}
	if src.ActionTimeoutMsSet {
		dst.ActionTimeoutMs = src.ActionTimeoutMs
		dst.ActionTimeoutMsSet = true
	}
	if src.WaitTimeoutMsSet {
		dst.WaitTimeoutMs = src.WaitTimeoutMs
		dst.WaitTimeoutMsSet = true
	}
	if src.WaitIntervalMsSet {
		dst.WaitIntervalMs = src.WaitIntervalMs
		dst.WaitIntervalMsSet = true
	}
	if src.StopOnFailSet {
		dst.StopOnFail = src.StopOnFail
		dst.StopOnFailSet = true
	}
	if src.NoColorSet {
		dst.NoColor = src.NoColor
		dst.NoColorSet = true
	}
	if src.PlanFile != "" {
		dst.PlanFile = src.PlanFile
	}
	if src.FixturePath != "" {
		dst.FixturePath = src.FixturePath
	}
	if src.ScreenshotDir != "" {
		dst.ScreenshotDir = src.ScreenshotDir
	}
	if src.LogDir != "" {
		dst.LogDir = src.LogDir
	}
	if len(src.NotifyURLs) > 0 {
		dst.NotifyURLs = src.NotifyURLs
	}
}

// stripComments removes lines starting with # (comment lines) from content.
func stripComments(content string) string {
	var b strings.Builder
	for line := range strings.SplitSeq(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
