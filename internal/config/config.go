// Package config holds user-editable settings, stored as TOML under the
// XDG config directory.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Encodings   []string         `toml:"encodings"`
	Read        ReadConfig       `toml:"read"`
	Lines       LineConfig       `toml:"lines"`
	Collapse    CollapseConfig   `toml:"collapse"`
	Groups      GroupConfig      `toml:"groups"`
	Theme       ThemeConfig      `toml:"theme"`
	Keybindings KeybindingConfig `toml:"keybindings"`
	Display     DisplayConfig    `toml:"display"`
	Watch       WatchConfig      `toml:"watch"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ReadConfig tunes file reading
type ReadConfig struct {
	// LargeFileMB is the size above which reads are chunked with progress
	LargeFileMB int64 `toml:"large_file_mb"`
	// ChunkMB is the chunk size for large reads
	ChunkMB int64 `toml:"chunk_mb"`
	// WarnFileMB is the size above which the status bar notes a slow load
	WarnFileMB int64 `toml:"warn_file_mb"`
}

// LineConfig tunes line parsing
type LineConfig struct {
	// LongLineThreshold is the rune count above which a line is shown
	// truncated until expanded
	LongLineThreshold int `toml:"long_line_threshold"`
	// Pattern overrides the structured-line pattern. It must keep exactly
	// three capture groups: timestamp, level, content.
	Pattern string `toml:"pattern"`
}

// CollapseConfig tunes run folding
type CollapseConfig struct {
	// Threshold is the minimum run length that folds into one header
	Threshold int `toml:"threshold"`
}

// GroupConfig carries the notification grouping rules, in match order
type GroupConfig struct {
	Rules []GroupRule `toml:"rules"`
}

// GroupRule assigns a group when all of AllOf and at least one of AnyOf
// appear in the message
type GroupRule struct {
	ID    string   `toml:"id"`
	Name  string   `toml:"name"`
	AnyOf []string `toml:"any_of"`
	AllOf []string `toml:"all_of"`
}

// ThemeConfig defines the color scheme
type ThemeConfig struct {
	Foreground    string      `toml:"foreground"`
	Selected      string      `toml:"selected"`
	GroupHeader   string      `toml:"group_header"`
	LineNumbers   string      `toml:"line_numbers"`
	StatusBar     string      `toml:"status_bar"`
	StatusBarText string      `toml:"status_bar_text"`
	SearchMatch   string      `toml:"search_match"`
	Levels        LevelColors `toml:"levels"`
}

// LevelColors defines colors per log tag
type LevelColors struct {
	Debug        string `toml:"debug"`
	Info         string `toml:"info"`
	Warning      string `toml:"warning"`
	Error        string `toml:"error"`
	Notification string `toml:"notification"`
	Collapsed    string `toml:"collapsed"`
}

// KeybindingConfig allows customizing keybindings
type KeybindingConfig struct {
	Quit          []string `toml:"quit"`
	ScrollUp      []string `toml:"scroll_up"`
	ScrollDown    []string `toml:"scroll_down"`
	PageUp        []string `toml:"page_up"`
	PageDown      []string `toml:"page_down"`
	Top           []string `toml:"top"`
	Bottom        []string `toml:"bottom"`
	Search        []string `toml:"search"`
	ToggleView    []string `toml:"toggle_view"`
	Expand        []string `toml:"expand"`
	Rename        []string `toml:"rename"`
	Follow        []string `toml:"follow"`
	Reopen        []string `toml:"reopen"`
	ToggleError   []string `toml:"toggle_error"`
	ToggleWarning []string `toml:"toggle_warning"`
	ToggleDebug   []string `toml:"toggle_debug"`
	ToggleInfo    []string `toml:"toggle_info"`
}

// DisplayConfig holds display options
type DisplayConfig struct {
	ShowLineNumbers bool `toml:"show_line_numbers"`
	// BufferLines is how many extra rows are materialized on each side of
	// the visible window
	BufferLines int `toml:"buffer_lines"`
	// MinVisible is the smallest window capacity a resize can produce
	MinVisible int `toml:"min_visible"`
}

// WatchConfig tunes live following
type WatchConfig struct {
	// PollSeconds is the fallback poll interval when file events are
	// unavailable
	PollSeconds int `toml:"poll_seconds"`
}

// LoggingConfig controls diagnostic output
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a config with the stock VRChat log settings
func DefaultConfig() *Config {
	return &Config{
		Encodings: []string{"utf-8", "utf-8-sig", "cp932", "shift-jis"},
		Read: ReadConfig{
			LargeFileMB: 5,
			ChunkMB:     1,
			WarnFileMB:  50,
		},
		Lines: LineConfig{
			LongLineThreshold: 300,
		},
		Collapse: CollapseConfig{
			Threshold: 3,
		},
		Groups: GroupConfig{
			Rules: []GroupRule{
				{ID: "group_earthquake", Name: "🔔 地震情報", AnyOf: []string{"震度", "地震"}},
				{ID: "group_bar", Name: "🍺 Bar/開店情報", AnyOf: []string{"开店", "開店", "Bar", "NBB"}},
				{ID: "group_guild", Name: "⚔️ ギルド/公会", AnyOf: []string{"公会", "ギルド"}},
				{ID: "group_tourism", Name: "🗺️ 観光部", AnyOf: []string{"观光", "観光"}},
				{ID: "group_game", Name: "🎮 ゲーム情報", AnyOf: []string{"职业", "Achievement"}},
				{ID: "group_village", Name: "🏘️ 村/開村情報", AnyOf: []string{"開", "开"}, AllOf: []string{"村"}},
			},
		},
		Theme: ThemeConfig{
			Foreground:    "#d4d4d4",
			Selected:      "#094771",
			GroupHeader:   "#cccccc",
			LineNumbers:   "240",
			StatusBar:     "236",
			StatusBarText: "252",
			SearchMatch:   "226",
			Levels: LevelColors{
				Debug:        "#6a9955",
				Info:         "#4fc1ff",
				Warning:      "#dcdcaa",
				Error:        "#f48771",
				Notification: "#9cdcfe",
				Collapsed:    "#858585",
			},
		},
		Keybindings: KeybindingConfig{
			Quit:          []string{"q", "ctrl+c"},
			ScrollUp:      []string{"k", "up"},
			ScrollDown:    []string{"j", "down"},
			PageUp:        []string{"b", "pgup", "ctrl+u"},
			PageDown:      []string{"f", "pgdown", "ctrl+d", " "},
			Top:           []string{"g", "home"},
			Bottom:        []string{"G", "end"},
			Search:        []string{"/"},
			ToggleView:    []string{"tab"},
			Expand:        []string{"enter"},
			Rename:        []string{"r"},
			Follow:        []string{"F"},
			Reopen:        []string{"o"},
			ToggleError:   []string{"e"},
			ToggleWarning: []string{"w"},
			ToggleDebug:   []string{"d"},
			ToggleInfo:    []string{"i"},
		},
		Display: DisplayConfig{
			ShowLineNumbers: true,
			BufferLines:     10,
			MinVisible:      10,
		},
		Watch: WatchConfig{
			PollSeconds: 3,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "vrclog.log",
		},
	}
}

// Load loads config from file, falling back to defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves config to file
func Save(cfg *Config) error {
	configPath := getConfigPath()
	if configPath == "" {
		return nil
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vrclog", "config.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "vrclog", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}

// Dir returns the directory user data lives in, creating it on demand
func Dir() (string, error) {
	path := getConfigPath()
	if path == "" {
		return "", os.ErrNotExist
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
