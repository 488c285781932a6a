package handlers

import (
	"log"
	"net/http"

	"github.com/camden-git/mediagallery/importer"
	"github.com/camden-git/mediagallery/realtime"
	"github.com/camden-git/mediagallery/worker"
)

// ImportHandler triggers media directory scans
type ImportHandler struct {
	Worker *worker.StoreWorker
	Hub    *realtime.Hub
}

// TriggerScan queues a scan on the store worker and returns immediately;
// completion is announced over the realtime hub
func (ih *ImportHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	reply := make(chan worker.Response, 1)
	token, ok := ih.Worker.Submit(worker.Request{Op: worker.OpScanImport, Reply: reply})
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Store worker queue is full, try again later"})
		return
	}

	go func() {
		resp := <-reply
		if resp.Err != nil {
			log.Printf("Error scanning media directory: %v", resp.Err)
			return
		}
		summary, _ := resp.Result.(importer.Summary)
		log.Printf("Import finished: %d scanned, %d imported, %d skipped, %d failed",
			summary.Scanned, summary.Imported, summary.Skipped, summary.Failed)
		ih.Hub.Broadcast(realtime.Event{
			Type: realtime.EventImportFinished,
			Extra: map[string]interface{}{
				"scanned":  summary.Scanned,
				"imported": summary.Imported,
				"skipped":  summary.Skipped,
				"failed":   summary.Failed,
			},
		})
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Scan queued", "token": token})
}
