package importer

import (
	"fmt"
	"image"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
)

// Metadata holds the fields extracted from an image file. Any of them may
// be nil when the file lacks the information or decoding failed.
type Metadata struct {
	Width        *int
	Height       *int
	Format       *string
	CameraModel  *string
	DateCaptured *int64
}

// helper to safely get a string tag, trimming null terminators
func getString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	// val string might have null chars at the end
	val := strings.Trim(strings.TrimRight(tag.String(), "\x00"), "\"")
	if val == "" {
		return nil
	}
	return &val
}

// ExtractImageMetadata reads dimensions, format, camera model and capture
// date from an image file. Missing EXIF data is not an error; the returned
// metadata just carries fewer fields.
func ExtractImageMetadata(filePath string) (*Metadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("metadata: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	meta := &Metadata{}

	config, format, err := image.DecodeConfig(file)
	if err == nil {
		w, h := config.Width, config.Height
		meta.Width = &w
		meta.Height = &h
		upper := strings.ToUpper(format)
		meta.Format = &upper
	}

	if _, err := file.Seek(0, 0); err != nil {
		return meta, fmt.Errorf("metadata: failed to seek file %s: %w", filePath, err)
	}

	exifData, err := exif.Decode(file)
	if err != nil {
		// not necessarily fatal, the file might just lack EXIF data
		return meta, nil
	}

	meta.CameraModel = getString(exifData, exif.Model)

	if dt, err := exifData.DateTime(); err == nil {
		ts := dt.Unix()
		meta.DateCaptured = &ts
	}

	return meta, nil
}
