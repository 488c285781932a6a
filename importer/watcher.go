package importer

import (
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the media directory and requests a rescan when new
// files land in it. Events are debounced so a bulk copy triggers one scan.
type Watcher struct {
	watcher  *fsnotify.Watcher
	rescan   func()
	debounce time.Duration
	done     chan struct{}
}

// NewWatcher starts watching mediaDir. rescan is invoked from the
// watcher's own goroutine after events settle; the callback is expected
// to queue the scan on the store worker rather than touching the store
// directly.
func NewWatcher(mediaDir string, debounce time.Duration, rescan func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("importer: failed to create fs watcher: %w", err)
	}
	if err := fsWatcher.Add(mediaDir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("importer: failed to watch %s: %w", mediaDir, err)
	}

	w := &Watcher{
		watcher:  fsWatcher,
		rescan:   rescan,
		debounce: debounce,
		done:     make(chan struct{}),
	}
	go w.run()
	log.Printf("importer: watching %s for new media", mediaDir)
	return w, nil
}

func (w *Watcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.rescan()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("importer: watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) Close() {
	close(w.done)
	w.watcher.Close()
}
