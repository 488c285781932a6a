package importer

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"

	"github.com/camden-git/mediagallery/database"
	"github.com/camden-git/mediagallery/utils"
)

// Summary reports what a single scan did
type Summary struct {
	Scanned  int `json:"scanned"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ScanAndImport walks mediaDir and inserts a catalog record for every
// supported media file not already present, keyed by unique filepath.
// Re-running it on an unchanged directory imports nothing. Per-file
// metadata failures are logged and leave the metadata columns null; they
// never abort the scan.
func ScanAndImport(db *sql.DB, mediaDir string) (Summary, error) {
	var summary Summary

	if _, err := os.Stat(mediaDir); err != nil {
		return summary, fmt.Errorf("importer: media directory %s not accessible: %w", mediaDir, err)
	}

	err := godirwalk.Walk(mediaDir, &godirwalk.Options{
		Unsorted: false,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}

			mediaType, ok := utils.MediaTypeForPath(path)
			if !ok {
				return nil
			}
			summary.Scanned++

			info, err := os.Stat(path)
			if err != nil {
				log.Printf("importer: failed to stat %s: %v", path, err)
				summary.Failed++
				return nil
			}

			record := database.Media{
				Filepath:  filepath.ToSlash(path),
				Filename:  filepath.Base(path),
				Type:      mediaType,
				Filesize:  info.Size(),
				DateAdded: info.ModTime().Unix(),
			}

			if utils.IsRasterImage(path) {
				meta, err := ExtractImageMetadata(path)
				if err != nil {
					log.Printf("importer: metadata error for %s: %v", filepath.Base(path), err)
				}
				if meta != nil {
					record.Width = meta.Width
					record.Height = meta.Height
					record.Format = meta.Format
					record.CameraModel = meta.CameraModel
					record.DateCaptured = meta.DateCaptured
				}
			}

			created, err := database.InsertMedia(db, record)
			if err != nil {
				log.Printf("importer: insert error for %s: %v", filepath.Base(path), err)
				summary.Failed++
				return nil
			}
			if created {
				summary.Imported++
			} else {
				summary.Skipped++
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			log.Printf("importer: error walking %s: %v", path, err)
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return summary, fmt.Errorf("importer: walk of %s failed: %w", mediaDir, err)
	}

	log.Printf("importer: scan of %s complete: %d scanned, %d imported, %d skipped, %d failed",
		mediaDir, summary.Scanned, summary.Imported, summary.Skipped, summary.Failed)
	return summary, nil
}
