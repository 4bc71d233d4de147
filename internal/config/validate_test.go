package config

import (
	"testing"
)

func TestValidateDefaultConfigIsClean(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("default config should validate cleanly, got %v", errs)
	}
}

func TestValidateClampsGeometry(t *testing.T) {
	cfg := Default()
	cfg.RenderWidth = 0
	cfg.OutputHeight = -5

	errs := cfg.Validate()
	if len(errs) == 0 {
		t.Fatal("expected validation errors")
	}
	if cfg.RenderWidth != 1440 || cfg.RenderHeight != 1080 {
		t.Errorf("render dimensions not reset: %dx%d", cfg.RenderWidth, cfg.RenderHeight)
	}
	if cfg.OutputWidth != 1920 || cfg.OutputHeight != 1080 {
		t.Errorf("output dimensions not reset: %dx%d", cfg.OutputWidth, cfg.OutputHeight)
	}
}

func TestValidateGrowsOutputToFitRender(t *testing.T) {
	cfg := Default()
	cfg.RenderWidth = 2000
	cfg.OutputWidth = 1920

	cfg.Validate()
	if cfg.OutputWidth != 2000 {
		t.Fatalf("output_width = %d, want clamped up to 2000", cfg.OutputWidth)
	}
}

func TestValidateClampsFrameRate(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 1},
		{-10, 1},
		{60, 60},
		{1000, 240},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.TargetFPS = tt.in
		cfg.Validate()
		if cfg.TargetFPS != tt.want {
			t.Errorf("target_fps %d clamped to %d, want %d", tt.in, cfg.TargetFPS, tt.want)
		}
	}
}

func TestValidateClampsMonitorIndex(t *testing.T) {
	cfg := Default()
	cfg.MonitorIndex = -3
	cfg.Validate()
	if cfg.MonitorIndex != 0 {
		t.Fatalf("monitor_index = %d, want 0", cfg.MonitorIndex)
	}
}

func TestValidateRejectsBadLogSettings(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	cfg.LogFormat = "xml"

	errs := cfg.Validate()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
}

func TestValidateUnknownHotkeyFallsBack(t *testing.T) {
	cfg := Default()
	cfg.ExitHotkey = "hyper-q"
	cfg.Validate()
	if cfg.ExitHotkey != "insert" {
		t.Fatalf("exit_hotkey = %q, want fallback to insert", cfg.ExitHotkey)
	}
}

func TestExitHotkeyCode(t *testing.T) {
	tests := []struct {
		name   string
		hotkey string
		wantVK uint32
		wantOK bool
	}{
		{"insert", "insert", 0x2D, true},
		{"case insensitive", "Insert", 0x2D, true},
		{"f12", "f12", 0x7B, true},
		{"none", "none", 0, false},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ExitHotkey = tt.hotkey
			vk, ok := cfg.ExitHotkeyCode()
			if vk != tt.wantVK || ok != tt.wantOK {
				t.Fatalf("ExitHotkeyCode() = (0x%02X, %v), want (0x%02X, %v)", vk, ok, tt.wantVK, tt.wantOK)
			}
		})
	}
}
