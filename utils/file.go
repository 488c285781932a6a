package utils

import (
	"path/filepath"
	"strings"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

var supportedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
}

var supportedVideoExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
	".mkv": true,
}

// MediaTypeForPath classifies a file by extension. The second return is
// false for files that are not catalogued media.
func MediaTypeForPath(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case supportedImageExtensions[ext]:
		return MediaTypeImage, true
	case supportedVideoExtensions[ext]:
		return MediaTypeVideo, true
	default:
		return "", false
	}
}

// IsRasterImage checks if the filename has a supported raster image extension
func IsRasterImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}
