package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/camden-git/mediagallery/database"
	"github.com/camden-git/mediagallery/gallery"
	"github.com/camden-git/mediagallery/realtime"
	"github.com/camden-git/mediagallery/worker"
)

// GalleryHandler drives the bounded gallery view
type GalleryHandler struct {
	Worker  *worker.StoreWorker
	Gallery *gallery.View
	Hub     *realtime.Hub
}

// Populate runs a filter query and rebuilds the view from its results,
// keeping the compiler's order and discarding rows past the cell cap
func (gh *GalleryHandler) Populate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Spec   database.FilterSpec `json:"spec"`
		Active database.ActiveSet  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp := gh.Worker.Do(worker.OpQueryMedia, worker.QueryMediaPayload{Spec: req.Spec, Active: req.Active}, nil)
	if resp.Err != nil {
		log.Printf("Error populating gallery: %v", resp.Err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to query media"})
		return
	}

	records, _ := resp.Result.([]database.Media)
	gh.Gallery.Populate(records)
	gh.Hub.Broadcast(realtime.Event{Type: realtime.EventGalleryUpdated})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cells":   gh.Gallery.Cells(),
		"matched": len(records),
	})
}

func (gh *GalleryHandler) Cells(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gh.Gallery.Cells())
}

// ImagePaths returns the ordered path list the slideshow would consume
func (gh *GalleryHandler) ImagePaths(w http.ResponseWriter, r *http.Request) {
	paths := gh.Gallery.ImagePaths()
	if paths == nil {
		paths = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"paths": paths})
}

// Layout adjusts total width and column count; both fields are optional
func (gh *GalleryHandler) Layout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TotalWidth *int `json:"total_width"`
		Columns    *int `json:"columns"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	if req.Columns != nil {
		gh.Gallery.SetColumns(*req.Columns)
	}
	if req.TotalWidth != nil {
		gh.Gallery.Resize(*req.TotalWidth)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"columns":    gh.Gallery.Columns(),
		"cell_width": gh.Gallery.CellWidth(),
	})
}

// EditCell patches a materialized cell's display fields without touching
// the store; callers that want persistence use the media endpoints
func (gh *GalleryHandler) EditCell(w http.ResponseWriter, r *http.Request) {
	id, ok := mediaIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Filename *string  `json:"filename"`
		Tags     []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	if !gh.Gallery.EditCell(id, req.Filename, req.Tags) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Cell not found in gallery view"})
		return
	}
	gh.Hub.Broadcast(realtime.Event{Type: realtime.EventGalleryUpdated})
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
}

// ToggleDetail flips one detail row across every cell
func (gh *GalleryHandler) ToggleDetail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Detail == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: detail"})
		return
	}

	visible := gh.Gallery.ToggleDetail(req.Detail)
	writeJSON(w, http.StatusOK, map[string]interface{}{"visible_details": visible})
}
