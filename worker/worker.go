package worker

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/camden-git/mediagallery/database"
	"github.com/camden-git/mediagallery/importer"
	"github.com/camden-git/mediagallery/utils"
)

// operation names carried on every request and echoed on its response
const (
	OpQueryMedia      = "query_media"
	OpGetMedia        = "get_media"
	OpMediaCount      = "media_count"
	OpToggleFavourite = "toggle_favourite"
	OpSetFilename     = "set_filename"
	OpSetTags         = "set_tags"
	OpAddTags         = "add_tags"
	OpRecordView      = "record_view"
	OpDeleteMedia     = "delete_media"
	OpAddTag          = "add_tag"
	OpRenameTag       = "rename_tag"
	OpRemoveTag       = "remove_tag"
	OpListTags        = "list_tags"
	OpUniqueValues    = "unique_values"
	OpScanImport      = "scan_import"
)

// typed payloads, one per operation; requests are routed by operation
// name and matched to these explicitly, never by reflection
type (
	QueryMediaPayload struct {
		Spec   database.FilterSpec
		Active database.ActiveSet
	}
	GetMediaPayload struct {
		ID int64
	}
	ToggleFavouritePayload struct {
		ID        int64
		Favourite bool
	}
	SetFilenamePayload struct {
		ID       int64
		Filename string
	}
	SetTagsPayload struct {
		ID   int64
		Tags []string
	}
	RecordViewPayload struct {
		ID      int64
		Seconds int64
	}
	TagNamePayload struct {
		Name string
	}
	RenameTagPayload struct {
		OldName string
		NewName string
	}
	UniqueValuesPayload struct {
		Column string
	}
)

// Request is one unit of work for the store worker. Context is opaque to
// the worker and comes back on the response so the caller can route it.
type Request struct {
	Op      string
	Payload interface{}
	Context interface{}
	Token   string
	Reply   chan<- Response
}

// Response carries a result-or-error plus enough context (operation name,
// token, caller context) to route it to the right consumer
type Response struct {
	Op      string
	Token   string
	Context interface{}
	Result  interface{}
	Err     error
}

// StoreWorker owns the catalog connection. A single goroutine serializes
// every read and write issued against the store; callers block only on
// result delivery, never while the worker is busy.
type StoreWorker struct {
	db       *sql.DB
	mediaDir string
	requests chan Request
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewStoreWorker(db *sql.DB, mediaDir string, queueSize int) *StoreWorker {
	if queueSize <= 0 {
		queueSize = 100
	}
	w := &StoreWorker{
		db:       db,
		mediaDir: mediaDir,
		requests: make(chan Request, queueSize),
		stopChan: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	log.Printf("worker: store worker started with queue size %d", queueSize)
	return w
}

func (w *StoreWorker) run() {
	defer w.wg.Done()
	for {
		select {
		case req, ok := <-w.requests:
			if !ok {
				log.Printf("worker: stopping, request queue closed")
				return
			}
			w.handle(req)
		case <-w.stopChan:
			log.Printf("worker: stopping, stop signal received")
			return
		}
	}
}

func (w *StoreWorker) reply(req Request, result interface{}, err error) {
	if req.Reply == nil {
		if err != nil {
			log.Printf("worker: %s failed with no reply channel: %v", req.Op, err)
		}
		return
	}
	req.Reply <- Response{
		Op:      req.Op,
		Token:   req.Token,
		Context: req.Context,
		Result:  result,
		Err:     err,
	}
}

func badPayload(op string, payload interface{}) error {
	return fmt.Errorf("worker: operation %s received payload of unexpected type %T", op, payload)
}

func (w *StoreWorker) handle(req Request) {
	switch req.Op {
	case OpQueryMedia:
		p, ok := req.Payload.(QueryMediaPayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		// tag filters go through the same normalization as tag writes, so
		// "summer holiday" finds records stored under summer_holiday
		spec := p.Spec
		spec.Tags = normalizeAll(spec.Tags)
		records, err := database.QueryMediaByFilter(w.db, spec, p.Active)
		w.reply(req, records, err)

	case OpGetMedia:
		p, ok := req.Payload.(GetMediaPayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		media, err := database.GetMediaByID(w.db, p.ID)
		w.reply(req, media, err)

	case OpMediaCount:
		count, err := database.GetMediaCount(w.db)
		w.reply(req, count, err)

	case OpToggleFavourite:
		p, ok := req.Payload.(ToggleFavouritePayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		err := database.SetFavourite(w.db, p.ID, p.Favourite)
		w.reply(req, nil, err)

	case OpSetFilename:
		p, ok := req.Payload.(SetFilenamePayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		err := database.SetFilename(w.db, p.ID, p.Filename)
		w.reply(req, nil, err)

	case OpSetTags:
		p, ok := req.Payload.(SetTagsPayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		err := database.SetMediaTags(w.db, p.ID, normalizeAll(p.Tags))
		w.reply(req, nil, err)

	case OpAddTags:
		p, ok := req.Payload.(SetTagsPayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		err := database.AddTagsToMedia(w.db, p.ID, normalizeAll(p.Tags))
		w.reply(req, nil, err)

	case OpRecordView:
		p, ok := req.Payload.(RecordViewPayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		err := database.RecordView(w.db, p.ID, p.Seconds)
		w.reply(req, nil, err)

	case OpDeleteMedia:
		p, ok := req.Payload.(GetMediaPayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		err := database.DeleteMedia(w.db, p.ID)
		w.reply(req, nil, err)

	case OpAddTag:
		p, ok := req.Payload.(TagNamePayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		name := utils.NormalizeTagName(p.Name)
		if name == "" {
			w.reply(req, false, fmt.Errorf("worker: tag name %q normalizes to nothing", p.Name))
			return
		}
		added, err := database.AddTag(w.db, name)
		w.reply(req, added, err)

	case OpRenameTag:
		p, ok := req.Payload.(RenameTagPayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		newName := utils.NormalizeTagName(p.NewName)
		if newName == "" {
			w.reply(req, false, fmt.Errorf("worker: tag name %q normalizes to nothing", p.NewName))
			return
		}
		renamed, err := database.RenameTag(w.db, p.OldName, newName)
		w.reply(req, renamed, err)

	case OpRemoveTag:
		p, ok := req.Payload.(TagNamePayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		removed, err := database.RemoveTag(w.db, p.Name)
		w.reply(req, removed, err)

	case OpListTags:
		tags, err := database.ListTags(w.db)
		w.reply(req, tags, err)

	case OpUniqueValues:
		p, ok := req.Payload.(UniqueValuesPayload)
		if !ok {
			w.reply(req, nil, badPayload(req.Op, req.Payload))
			return
		}
		values, err := database.GetUniqueValues(w.db, p.Column)
		w.reply(req, values, err)

	case OpScanImport:
		summary, err := importer.ScanAndImport(w.db, w.mediaDir)
		w.reply(req, summary, err)

	default:
		w.reply(req, nil, fmt.Errorf("worker: unknown operation %q", req.Op))
	}
}

func normalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if n := utils.NormalizeTagName(name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Submit queues a request, assigning it a fresh token. Returns false when
// the queue is full; the request is not enqueued in that case.
func (w *StoreWorker) Submit(req Request) (string, bool) {
	req.Token = uuid.NewString()
	select {
	case w.requests <- req:
		return req.Token, true
	default:
		log.Printf("worker: request queue full, rejecting %s", req.Op)
		return "", false
	}
}

// Do submits a request and blocks until its response arrives. This is the
// synchronous convenience used by the HTTP boundary.
func (w *StoreWorker) Do(op string, payload, context interface{}) Response {
	reply := make(chan Response, 1)
	if _, ok := w.Submit(Request{Op: op, Payload: payload, Context: context, Reply: reply}); !ok {
		return Response{Op: op, Context: context, Err: fmt.Errorf("worker: store worker queue is full")}
	}
	return <-reply
}

func (w *StoreWorker) Stop() {
	log.Println("worker: stopping store worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("worker: store worker stopped")
}
