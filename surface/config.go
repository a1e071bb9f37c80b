// Package surface runs the editing-surface side of the bridge: it owns the
// DOM mirror, translates raw surface events into typed notifications, and
// dispatches host commands to the live page.
//
// The surface observes and applies, it does not decide. Trigger detection,
// span replacement and blockquote restructuring all run host-side on the
// mirror; the page only serializes events and applies computed documents.
package surface

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level surface configuration.
type Config struct {
	// Listen is the loopback address the shell server binds to.
	Listen string `yaml:"listen"`

	Browser    BrowserConfig  `yaml:"browser"`
	Debounce   DebounceConfig `yaml:"debounce"`
	Appearance Appearance     `yaml:"appearance"`

	// Triggers are the characters that open entity suggestion, e.g. "@", ":".
	Triggers []string `yaml:"triggers"`
	// TriggerWindow is the backward scan budget in runes.
	TriggerWindow int `yaml:"trigger_window"`
	// InsertQuiet is how long detection stays quiet after an insertion.
	InsertQuiet time.Duration `yaml:"insert_quiet"`

	// CustomCSS is injected verbatim before engine init.
	CustomCSS string `yaml:"custom_css"`
	// CustomCSSFile is read, injected, and watched for live reload.
	CustomCSSFile string `yaml:"custom_css_file"`
}

// BrowserConfig controls the Chromium the surface runs in.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chromium. Empty = launch.
	Remote string `yaml:"remote"`
	// Mode is "headless" (default) or "headful" for debugging.
	Mode string `yaml:"mode"`
}

// DebounceConfig controls notification coalescing windows.
type DebounceConfig struct {
	Content time.Duration `yaml:"content"`
	State   time.Duration `yaml:"state"`
}

// Appearance holds the cosmetic settings applied at init and on demand.
type Appearance struct {
	Placeholder     string `yaml:"placeholder"`
	FontColor       string `yaml:"font_color"`
	FontSize        int    `yaml:"font_size"` // px
	BackgroundColor string `yaml:"background_color"`
	Padding         struct {
		Left   int `yaml:"left"`
		Top    int `yaml:"top"`
		Right  int `yaml:"right"`
		Bottom int `yaml:"bottom"`
	} `yaml:"padding"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:0"
	}
	if c.Browser.Mode == "" {
		c.Browser.Mode = "headless"
	}
	if c.Debounce.Content <= 0 {
		c.Debounce.Content = 100 * time.Millisecond
	}
	if c.Debounce.State <= 0 {
		c.Debounce.State = 50 * time.Millisecond
	}
	if len(c.Triggers) == 0 {
		c.Triggers = []string{"@"}
	}
	if c.TriggerWindow <= 0 {
		c.TriggerWindow = 50
	}
	if c.InsertQuiet <= 0 {
		c.InsertQuiet = 500 * time.Millisecond
	}
}
