package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/camden-git/mediagallery/gallery"
	"github.com/camden-git/mediagallery/slideshow"
)

// SlideshowHandler controls the playback engine. The engine consumes the
// gallery's ordered path snapshot at play time only.
type SlideshowHandler struct {
	Engine  *slideshow.Engine
	Gallery *gallery.View
}

func (sh *SlideshowHandler) Play(w http.ResponseWriter, r *http.Request) {
	paths := sh.Gallery.ImagePaths()
	if len(paths) == 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Gallery has no images to play"})
		return
	}
	sh.Engine.Play(paths)
	writeJSON(w, http.StatusOK, sh.Engine.State())
}

func (sh *SlideshowHandler) Restart(w http.ResponseWriter, r *http.Request) {
	sh.Engine.Restart()
	writeJSON(w, http.StatusOK, sh.Engine.State())
}

func (sh *SlideshowHandler) Pause(w http.ResponseWriter, r *http.Request) {
	sh.Engine.Pause()
	writeJSON(w, http.StatusOK, sh.Engine.State())
}

func (sh *SlideshowHandler) Resume(w http.ResponseWriter, r *http.Request) {
	sh.Engine.Resume()
	writeJSON(w, http.StatusOK, sh.Engine.State())
}

func (sh *SlideshowHandler) Stop(w http.ResponseWriter, r *http.Request) {
	sh.Engine.Stop()
	writeJSON(w, http.StatusOK, sh.Engine.State())
}

// ChangeSpeed applies a new interval; the engine clamps it and preserves
// the shorter of the remaining wait and the new interval
func (sh *SlideshowHandler) ChangeSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IntervalMS int `json:"interval_ms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	sh.Engine.ChangeSpeed(req.IntervalMS)
	writeJSON(w, http.StatusOK, sh.Engine.State())
}

func (sh *SlideshowHandler) SetLoop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Loop bool `json:"loop"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	sh.Engine.SetLoop(req.Loop)
	writeJSON(w, http.StatusOK, sh.Engine.State())
}

func (sh *SlideshowHandler) SetShuffle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Shuffle bool `json:"shuffle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	sh.Engine.SetShuffle(req.Shuffle)
	writeJSON(w, http.StatusOK, sh.Engine.State())
}

func (sh *SlideshowHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sh.Engine.State())
}

// SpeedSettings reports the timing bounds for building speed controls
func (sh *SlideshowHandler) SpeedSettings(w http.ResponseWriter, r *http.Request) {
	min, max, increment, current := sh.Engine.SpeedSettings()
	writeJSON(w, http.StatusOK, map[string]int{
		"min_ms":       min,
		"max_ms":       max,
		"increment_ms": increment,
		"current_ms":   current,
	})
}
