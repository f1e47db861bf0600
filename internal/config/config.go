// Package config reads the settings of the command line tools
// from the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel   string
	LogConsole bool

	Width, Height        int
	Zoom                 float64
	CenterLon, CenterLat float64

	StyleCacheSize int
	CullMargin     float64
	CSVCharset     string
}

// LoadDotEnv loads the given .env files into the environment, skipping
// the missing ones. Variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

func FromEnv() Config {
	width := getint("GEOVERLAY_WIDTH", 800)
	height := getint("GEOVERLAY_HEIGHT", 600)
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 600
	}
	cache := getint("GEOVERLAY_STYLE_CACHE", 4096)
	if cache < 0 {
		cache = 0
	}

	return Config{
		LogLevel:       getenv("GEOVERLAY_LOG_LEVEL", "info"),
		LogConsole:     getbool("GEOVERLAY_LOG_CONSOLE", false),
		Width:          width,
		Height:         height,
		Zoom:           getfloat("GEOVERLAY_ZOOM", 2),
		CenterLon:      getfloat("GEOVERLAY_CENTER_LON", 0),
		CenterLat:      getfloat("GEOVERLAY_CENTER_LAT", 0),
		StyleCacheSize: cache,
		CullMargin:     getfloat("GEOVERLAY_CULL_MARGIN", 32),
		CSVCharset:     getenv("GEOVERLAY_CSV_CHARSET", ""),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}
