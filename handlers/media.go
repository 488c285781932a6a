package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/camden-git/mediagallery/database"
	"github.com/camden-git/mediagallery/gallery"
	"github.com/camden-git/mediagallery/realtime"
	"github.com/camden-git/mediagallery/worker"
)

// MediaHandler exposes catalog reads and writes. Every store access goes
// through the store worker; the handler only routes, patches the gallery
// view and notifies clients.
type MediaHandler struct {
	Worker  *worker.StoreWorker
	Gallery *gallery.View
	Hub     *realtime.Hub
}

// QueryMedia runs the filter compiler against the catalog and returns the
// matching records without touching the gallery view
func (mh *MediaHandler) QueryMedia(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Spec   database.FilterSpec `json:"spec"`
		Active database.ActiveSet  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp := mh.Worker.Do(worker.OpQueryMedia, worker.QueryMediaPayload{Spec: req.Spec, Active: req.Active}, nil)
	if resp.Err != nil {
		log.Printf("Error querying media: %v", resp.Err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to query media"})
		return
	}

	records, _ := resp.Result.([]database.Media)
	if records == nil {
		records = []database.Media{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (mh *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := mediaIDParam(w, r)
	if !ok {
		return
	}

	resp := mh.Worker.Do(worker.OpGetMedia, worker.GetMediaPayload{ID: id}, nil)
	if resp.Err != nil {
		if errors.Is(resp.Err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Media not found"})
		} else {
			log.Printf("Error getting media %d: %v", id, resp.Err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve media"})
		}
		return
	}
	writeJSON(w, http.StatusOK, resp.Result)
}

func (mh *MediaHandler) GetMediaCount(w http.ResponseWriter, r *http.Request) {
	resp := mh.Worker.Do(worker.OpMediaCount, nil, nil)
	if resp.Err != nil {
		log.Printf("Error counting media: %v", resp.Err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to count media"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": resp.Result})
}

// SetFavourite persists the flag, then patches the materialized cell if
// the record is currently in the gallery view
func (mh *MediaHandler) SetFavourite(w http.ResponseWriter, r *http.Request) {
	id, ok := mediaIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Favourite bool `json:"favourite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp := mh.Worker.Do(worker.OpToggleFavourite, worker.ToggleFavouritePayload{ID: id, Favourite: req.Favourite}, nil)
	if resp.Err != nil {
		if errors.Is(resp.Err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Media not found"})
		} else {
			log.Printf("Error setting favourite on media %d: %v", id, resp.Err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update media"})
		}
		return
	}

	mh.Gallery.SetFavourite(id, req.Favourite)
	mh.Hub.Broadcast(realtime.Event{Type: realtime.EventGalleryUpdated})
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "favourite": req.Favourite})
}

func (mh *MediaHandler) SetFilename(w http.ResponseWriter, r *http.Request) {
	id, ok := mediaIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: filename"})
		return
	}

	resp := mh.Worker.Do(worker.OpSetFilename, worker.SetFilenamePayload{ID: id, Filename: req.Filename}, nil)
	if resp.Err != nil {
		if errors.Is(resp.Err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Media not found"})
		} else {
			log.Printf("Error renaming media %d: %v", id, resp.Err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update media"})
		}
		return
	}

	mh.Gallery.EditCell(id, &req.Filename, nil)
	mh.Hub.Broadcast(realtime.Event{Type: realtime.EventGalleryUpdated})
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "filename": req.Filename})
}

// SetTags replaces the full tag set of one record
func (mh *MediaHandler) SetTags(w http.ResponseWriter, r *http.Request) {
	id, ok := mediaIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	resp := mh.Worker.Do(worker.OpSetTags, worker.SetTagsPayload{ID: id, Tags: req.Tags}, nil)
	if resp.Err != nil {
		log.Printf("Error setting tags on media %d: %v", id, resp.Err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update tags"})
		return
	}

	mh.refreshCellTags(id)
	mh.Hub.Broadcast(realtime.Event{Type: realtime.EventTagsChanged})
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
}

// AddTags attaches tags without disturbing the record's existing set
func (mh *MediaHandler) AddTags(w http.ResponseWriter, r *http.Request) {
	id, ok := mediaIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if len(req.Tags) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: tags"})
		return
	}

	resp := mh.Worker.Do(worker.OpAddTags, worker.SetTagsPayload{ID: id, Tags: req.Tags}, nil)
	if resp.Err != nil {
		log.Printf("Error adding tags to media %d: %v", id, resp.Err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to add tags"})
		return
	}

	mh.refreshCellTags(id)
	mh.Hub.Broadcast(realtime.Event{Type: realtime.EventTagsChanged})
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
}

func (mh *MediaHandler) refreshCellTags(id int64) {
	resp := mh.Worker.Do(worker.OpGetMedia, worker.GetMediaPayload{ID: id}, nil)
	if resp.Err != nil {
		log.Printf("Error refreshing tags for media %d: %v", id, resp.Err)
		return
	}
	if media, ok := resp.Result.(database.Media); ok {
		mh.Gallery.EditCell(id, nil, media.Tags)
	}
}

// RecordView bumps the view counter and adds watched seconds
func (mh *MediaHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, ok := mediaIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Seconds int64 `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Seconds < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Field seconds must not be negative"})
		return
	}

	resp := mh.Worker.Do(worker.OpRecordView, worker.RecordViewPayload{ID: id, Seconds: req.Seconds}, nil)
	if resp.Err != nil {
		if errors.Is(resp.Err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Media not found"})
		} else {
			log.Printf("Error recording view on media %d: %v", id, resp.Err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to record view"})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
}

func (mh *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := mediaIDParam(w, r)
	if !ok {
		return
	}

	resp := mh.Worker.Do(worker.OpDeleteMedia, worker.GetMediaPayload{ID: id}, nil)
	if resp.Err != nil {
		if errors.Is(resp.Err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Media not found"})
		} else {
			log.Printf("Error deleting media %d: %v", id, resp.Err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete media"})
		}
		return
	}

	mh.Hub.Broadcast(realtime.Event{Type: realtime.EventGalleryUpdated})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Media deleted successfully"})
}
