package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/camden-git/mediagallery/database"
	"github.com/camden-git/mediagallery/realtime"
	"github.com/camden-git/mediagallery/utils"
	"github.com/camden-git/mediagallery/worker"
)

// TagHandler manages the tag registry
type TagHandler struct {
	Worker *worker.StoreWorker
	Hub    *realtime.Hub
}

func (th *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	resp := th.Worker.Do(worker.OpListTags, nil, nil)
	if resp.Err != nil {
		log.Printf("Error listing tags: %v", resp.Err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve tags"})
		return
	}

	tags, _ := resp.Result.([]database.Tag)
	if tags == nil {
		tags = []database.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func (th *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: name"})
		return
	}

	resp := th.Worker.Do(worker.OpAddTag, worker.TagNamePayload{Name: req.Name}, nil)
	if resp.Err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": resp.Err.Error()})
		return
	}

	created, _ := resp.Result.(bool)
	if !created {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Tag already exists"})
		return
	}

	th.Hub.Broadcast(realtime.Event{Type: realtime.EventTagsChanged})
	// echo the stored form so the caller can reconcile without a reload
	writeJSON(w, http.StatusCreated, map[string]string{"name": utils.NormalizeTagName(req.Name)})
}

// RenameTag rejects renames that would collide with an existing tag; it
// never merges two tags
func (th *TagHandler) RenameTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.OldName) == "" || strings.TrimSpace(req.NewName) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields: old_name, new_name"})
		return
	}

	resp := th.Worker.Do(worker.OpRenameTag, worker.RenameTagPayload{OldName: req.OldName, NewName: req.NewName}, nil)
	if resp.Err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": resp.Err.Error()})
		return
	}

	renamed, _ := resp.Result.(bool)
	if !renamed {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Rename failed: tag missing or new name already in use"})
		return
	}

	th.Hub.Broadcast(realtime.Event{Type: realtime.EventTagsChanged})
	writeJSON(w, http.StatusOK, map[string]string{
		"old_name": req.OldName,
		"new_name": utils.NormalizeTagName(req.NewName),
	})
}

// DeleteTag removes the tag and, through the cascade, every association
// carrying it
func (th *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: name"})
		return
	}

	resp := th.Worker.Do(worker.OpRemoveTag, worker.TagNamePayload{Name: req.Name}, nil)
	if resp.Err != nil {
		log.Printf("Error removing tag '%s': %v", req.Name, resp.Err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to remove tag"})
		return
	}

	removed, _ := resp.Result.(bool)
	if !removed {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Tag not found"})
		return
	}

	th.Hub.Broadcast(realtime.Event{Type: realtime.EventTagsChanged})
	writeJSON(w, http.StatusOK, map[string]string{"name": req.Name})
}
