package config

import (
	"fmt"
	"log/slog"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// hotkeyCodes maps exit_hotkey names to virtual-key codes.
var hotkeyCodes = map[string]uint32{
	"insert": 0x2D,
	"delete": 0x2E,
	"pause":  0x13,
	"escape": 0x1B,
	"f10":    0x79,
	"f12":    0x7B,
}

// Validate checks the config for invalid values and returns all errors found.
// Dangerous zero-values that would cause panics are clamped to safe defaults.
// Other validation errors are logged as warnings but do not prevent startup.
func (c *Config) Validate() []error {
	var errs []error
	def := Default()

	if c.MonitorIndex < 0 {
		errs = append(errs, fmt.Errorf("monitor_index %d is negative, clamping to 0", c.MonitorIndex))
		c.MonitorIndex = 0
	}

	if c.RenderWidth <= 0 || c.RenderHeight <= 0 {
		errs = append(errs, fmt.Errorf("render dimensions %dx%d are not positive, resetting to %dx%d",
			c.RenderWidth, c.RenderHeight, def.RenderWidth, def.RenderHeight))
		c.RenderWidth = def.RenderWidth
		c.RenderHeight = def.RenderHeight
	}

	if c.OutputWidth <= 0 || c.OutputHeight <= 0 {
		errs = append(errs, fmt.Errorf("output dimensions %dx%d are not positive, resetting to %dx%d",
			c.OutputWidth, c.OutputHeight, def.OutputWidth, def.OutputHeight))
		c.OutputWidth = def.OutputWidth
		c.OutputHeight = def.OutputHeight
	}

	// The canvas must hold the render region; grow the canvas rather than
	// shrink the picture.
	if c.OutputWidth < c.RenderWidth {
		errs = append(errs, fmt.Errorf("output_width %d smaller than render_width %d, clamping up", c.OutputWidth, c.RenderWidth))
		c.OutputWidth = c.RenderWidth
	}
	if c.OutputHeight < c.RenderHeight {
		errs = append(errs, fmt.Errorf("output_height %d smaller than render_height %d, clamping up", c.OutputHeight, c.RenderHeight))
		c.OutputHeight = c.RenderHeight
	}

	// Clamp the frame rate to a sane range to keep the tick interval
	// well-defined.
	if c.TargetFPS < 1 {
		errs = append(errs, fmt.Errorf("target_fps %d is below minimum 1, clamping", c.TargetFPS))
		c.TargetFPS = 1
	} else if c.TargetFPS > 240 {
		errs = append(errs, fmt.Errorf("target_fps %d exceeds maximum 240, clamping", c.TargetFPS))
		c.TargetFPS = 240
	}

	if c.MetricsIntervalSeconds < 5 {
		errs = append(errs, fmt.Errorf("metrics_interval_seconds %d is below minimum 5, clamping", c.MetricsIntervalSeconds))
		c.MetricsIntervalSeconds = 5
	} else if c.MetricsIntervalSeconds > 3600 {
		errs = append(errs, fmt.Errorf("metrics_interval_seconds %d exceeds maximum 3600, clamping", c.MetricsIntervalSeconds))
		c.MetricsIntervalSeconds = 3600
	}

	if c.ExitHotkey != "" && c.ExitHotkey != "none" {
		if _, ok := hotkeyCodes[strings.ToLower(c.ExitHotkey)]; !ok {
			errs = append(errs, fmt.Errorf("exit_hotkey %q is not recognized, falling back to %q", c.ExitHotkey, def.ExitHotkey))
			c.ExitHotkey = def.ExitHotkey
		}
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	// Log validation errors as warnings
	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}

	return errs
}

// ExitHotkeyCode returns the virtual-key code for the configured exit
// hotkey, or ok=false when no hotkey should be bound.
func (c *Config) ExitHotkeyCode() (vk uint32, ok bool) {
	if c.ExitHotkey == "" || strings.EqualFold(c.ExitHotkey, "none") {
		return 0, false
	}
	vk, ok = hotkeyCodes[strings.ToLower(c.ExitHotkey)]
	return vk, ok
}
