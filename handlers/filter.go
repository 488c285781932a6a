package handlers

import (
	"log"
	"net/http"

	"github.com/camden-git/mediagallery/worker"
)

// FilterHandler serves the values behind filter dropdowns
type FilterHandler struct {
	Worker *worker.StoreWorker
}

// UniqueValues returns the distinct, naturally sorted values of one
// filterable column. The column name is checked against an allow-list in
// the store layer.
func (fh *FilterHandler) UniqueValues(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	if column == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required query parameter: column"})
		return
	}

	resp := fh.Worker.Do(worker.OpUniqueValues, worker.UniqueValuesPayload{Column: column}, nil)
	if resp.Err != nil {
		log.Printf("Error fetching unique values for column '%s': %v", column, resp.Err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": resp.Err.Error()})
		return
	}

	values, _ := resp.Result.([]string)
	if values == nil {
		values = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"column": column, "values": values})
}
