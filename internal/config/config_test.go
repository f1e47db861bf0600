package config

import (
	"os"
	"path/filepath"
	"testing"
)

var keys = []string{
	"GEOVERLAY_LOG_LEVEL", "GEOVERLAY_LOG_CONSOLE", "GEOVERLAY_WIDTH", "GEOVERLAY_HEIGHT",
	"GEOVERLAY_ZOOM", "GEOVERLAY_CENTER_LON", "GEOVERLAY_CENTER_LAT",
	"GEOVERLAY_STYLE_CACHE", "GEOVERLAY_CULL_MARGIN", "GEOVERLAY_CSV_CHARSET",
}

// clearEnv empties the variables for the duration of the test.
func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()
	if cfg.LogLevel != "info" || cfg.LogConsole {
		t.Errorf("unexpected log settings %+v", cfg)
	}
	if cfg.Width != 800 || cfg.Height != 600 || cfg.Zoom != 2 {
		t.Errorf("unexpected camera %+v", cfg)
	}
	if cfg.StyleCacheSize != 4096 || cfg.CullMargin != 32 || cfg.CSVCharset != "" {
		t.Errorf("unexpected tuning %+v", cfg)
	}
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOVERLAY_LOG_LEVEL", "debug")
	t.Setenv("GEOVERLAY_LOG_CONSOLE", "yes")
	t.Setenv("GEOVERLAY_WIDTH", "1024")
	t.Setenv("GEOVERLAY_HEIGHT", "-3") // invalid, back to default
	t.Setenv("GEOVERLAY_ZOOM", "5.5")
	t.Setenv("GEOVERLAY_CENTER_LON", "2.35")
	t.Setenv("GEOVERLAY_CENTER_LAT", "not a number")
	t.Setenv("GEOVERLAY_STYLE_CACHE", "0")
	t.Setenv("GEOVERLAY_CSV_CHARSET", "latin1")

	cfg := FromEnv()
	if cfg.LogLevel != "debug" || !cfg.LogConsole {
		t.Errorf("unexpected log settings %+v", cfg)
	}
	if cfg.Width != 1024 || cfg.Height != 600 || cfg.Zoom != 5.5 {
		t.Errorf("unexpected camera size %+v", cfg)
	}
	if cfg.CenterLon != 2.35 || cfg.CenterLat != 0 {
		t.Errorf("unexpected center %+v", cfg)
	}
	if cfg.StyleCacheSize != 0 || cfg.CSVCharset != "latin1" {
		t.Errorf("unexpected tuning %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOVERLAY_WIDTH", "300")
	os.Unsetenv("GEOVERLAY_ZOOM") // .env only fills unset variables; restored by clearEnv

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "GEOVERLAY_WIDTH=999\nGEOVERLAY_ZOOM=7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatal(err)
	}
	cfg := FromEnv()
	if cfg.Width != 300 {
		t.Errorf("the environment should win over .env, got %d", cfg.Width)
	}
	if cfg.Zoom != 7 {
		t.Errorf("expected zoom from .env, got %g", cfg.Zoom)
	}
}
