package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	defaultGalleryCellsMax   = 30
	defaultGalleryColumns    = 4
	defaultGalleryColumnsMax = 7
	defaultGallerySpacing    = 10
	defaultGalleryMargin     = 10

	defaultSlideshowInterval  = 1000
	defaultSlideshowMinSpeed  = 250
	defaultSlideshowMaxSpeed  = 10000
	defaultSlideshowIncrement = 250

	defaultWorkerQueueSize = 100
)

type Config struct {
	// source directory holding the user's media files
	MediaDirectory string

	// database path
	DatabasePath string

	// address the HTTP server binds to
	ListenAddr string

	// gallery layout settings
	GalleryCellsMax   int
	GalleryColumns    int
	GalleryColumnsMax int
	GallerySpacing    int
	GalleryMargin     int

	// slideshow timing settings (milliseconds)
	SlideshowInterval  int
	SlideshowMinSpeed  int
	SlideshowMaxSpeed  int
	SlideshowIncrement int

	// store worker settings
	WorkerQueueSize int

	// rescan the media directory when files appear in it
	WatchMediaDirectory bool
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s'. Using default %t. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	mediaDir := getEnvOrDefault("MEDIA_DIRECTORY", "./media")
	absMediaDir, err := filepath.Abs(mediaDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media directory '%s': %w", mediaDir, err)
	}

	dbPath := getEnvOrDefault("DATABASE_PATH", "media.db")

	cfg := Config{
		MediaDirectory:      absMediaDir,
		DatabasePath:        dbPath,
		ListenAddr:          getEnvOrDefault("LISTEN_ADDR", ":8080"),
		GalleryCellsMax:     getEnvIntOrDefault("GALLERY_CELLS_MAX", defaultGalleryCellsMax),
		GalleryColumns:      getEnvIntOrDefault("GALLERY_COLUMNS", defaultGalleryColumns),
		GalleryColumnsMax:   getEnvIntOrDefault("GALLERY_COLUMNS_MAX", defaultGalleryColumnsMax),
		GallerySpacing:      getEnvIntOrDefault("GALLERY_SPACING", defaultGallerySpacing),
		GalleryMargin:       getEnvIntOrDefault("GALLERY_MARGIN", defaultGalleryMargin),
		SlideshowInterval:   getEnvIntOrDefault("SLIDESHOW_INTERVAL_MS", defaultSlideshowInterval),
		SlideshowMinSpeed:   getEnvIntOrDefault("SLIDESHOW_MIN_SPEED_MS", defaultSlideshowMinSpeed),
		SlideshowMaxSpeed:   getEnvIntOrDefault("SLIDESHOW_MAX_SPEED_MS", defaultSlideshowMaxSpeed),
		SlideshowIncrement:  getEnvIntOrDefault("SLIDESHOW_INCREMENT_MS", defaultSlideshowIncrement),
		WorkerQueueSize:     getEnvIntOrDefault("WORKER_QUEUE_SIZE", defaultWorkerQueueSize),
		WatchMediaDirectory: getEnvBoolOrDefault("WATCH_MEDIA_DIRECTORY", false),
	}

	if cfg.GalleryColumns > cfg.GalleryColumnsMax {
		cfg.GalleryColumns = cfg.GalleryColumnsMax
	}
	if cfg.SlideshowMinSpeed > cfg.SlideshowMaxSpeed {
		return Config{}, fmt.Errorf("slideshow min speed %dms exceeds max speed %dms", cfg.SlideshowMinSpeed, cfg.SlideshowMaxSpeed)
	}

	return cfg, nil
}
