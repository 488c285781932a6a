package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"github.com/camden-git/mediagallery/config"
	"github.com/camden-git/mediagallery/database"
	"github.com/camden-git/mediagallery/gallery"
	"github.com/camden-git/mediagallery/handlers"
	"github.com/camden-git/mediagallery/importer"
	"github.com/camden-git/mediagallery/realtime"
	"github.com/camden-git/mediagallery/slideshow"
	"github.com/camden-git/mediagallery/worker"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	for _, p := range []string{cfg.MediaDirectory, filepath.Dir(cfg.DatabasePath)} {
		log.Printf("Ensuring directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create directory %s: %v", p, err)
		}
	}

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Serving media from: %s", cfg.MediaDirectory)
	log.Printf("Using database: %s", cfg.DatabasePath)

	storeWorker := worker.NewStoreWorker(db, cfg.MediaDirectory, cfg.WorkerQueueSize)
	defer storeWorker.Stop()

	hub := realtime.NewHub()
	go hub.Run()

	galleryView := gallery.NewView(gallery.Config{
		CellsMax:   cfg.GalleryCellsMax,
		Columns:    cfg.GalleryColumns,
		ColumnsMax: cfg.GalleryColumnsMax,
		Spacing:    cfg.GallerySpacing,
		Margin:     cfg.GalleryMargin,
	})

	engine := slideshow.NewEngine(slideshow.Config{
		Interval:  cfg.SlideshowInterval,
		MinSpeed:  cfg.SlideshowMinSpeed,
		MaxSpeed:  cfg.SlideshowMaxSpeed,
		Increment: cfg.SlideshowIncrement,
	}, clockwork.NewRealClock())
	engine.OnImageChanged(func(path string) {
		hub.Broadcast(realtime.Event{Type: realtime.EventSlideshowImage, Path: path})
	})
	engine.OnEnded(func() {
		hub.Broadcast(realtime.Event{Type: realtime.EventSlideshowEnded})
	})

	// initial catalog scan, queued like any other store request
	go func() {
		resp := storeWorker.Do(worker.OpScanImport, nil, nil)
		if resp.Err != nil {
			log.Printf("Error during startup scan: %v", resp.Err)
			return
		}
		if summary, ok := resp.Result.(importer.Summary); ok {
			log.Printf("Startup scan finished: %d scanned, %d imported, %d skipped, %d failed",
				summary.Scanned, summary.Imported, summary.Skipped, summary.Failed)
			hub.Broadcast(realtime.Event{Type: realtime.EventImportFinished})
		}
	}()

	if cfg.WatchMediaDirectory {
		watcher, err := importer.NewWatcher(cfg.MediaDirectory, 2*time.Second, func() {
			if _, ok := storeWorker.Submit(worker.Request{Op: worker.OpScanImport}); !ok {
				log.Printf("Warning: rescan dropped, store worker queue full")
			}
		})
		if err != nil {
			log.Printf("Warning: media directory watcher disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	mediaHandler := &handlers.MediaHandler{Worker: storeWorker, Gallery: galleryView, Hub: hub}
	tagHandler := &handlers.TagHandler{Worker: storeWorker, Hub: hub}
	filterHandler := &handlers.FilterHandler{Worker: storeWorker}
	importHandler := &handlers.ImportHandler{Worker: storeWorker, Hub: hub}
	galleryHandler := &handlers.GalleryHandler{Worker: storeWorker, Gallery: galleryView, Hub: hub}
	slideshowHandler := &handlers.SlideshowHandler{Engine: engine, Gallery: galleryView}

	r.Route("/api", func(r chi.Router) {
		r.Route("/media", func(r chi.Router) {
			r.Post("/query", mediaHandler.QueryMedia)
			r.Get("/count", mediaHandler.GetMediaCount)
			r.Route("/{media_id}", func(r chi.Router) {
				r.Get("/", mediaHandler.GetMedia)
				r.Delete("/", mediaHandler.DeleteMedia)
				r.Put("/favourite", mediaHandler.SetFavourite)
				r.Put("/filename", mediaHandler.SetFilename)
				r.Put("/tags", mediaHandler.SetTags)
				r.Post("/tags", mediaHandler.AddTags)
				r.Post("/view", mediaHandler.RecordView)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", tagHandler.ListTags)
			r.Post("/", tagHandler.CreateTag)
			r.Put("/", tagHandler.RenameTag)
			r.Delete("/", tagHandler.DeleteTag)
		})

		r.Get("/filters/values", filterHandler.UniqueValues)
		r.Post("/import", importHandler.TriggerScan)

		r.Route("/gallery", func(r chi.Router) {
			r.Post("/populate", galleryHandler.Populate)
			r.Get("/cells", galleryHandler.Cells)
			r.Put("/cells/{media_id}", galleryHandler.EditCell)
			r.Get("/paths", galleryHandler.ImagePaths)
			r.Put("/layout", galleryHandler.Layout)
			r.Put("/details", galleryHandler.ToggleDetail)
		})

		r.Route("/slideshow", func(r chi.Router) {
			r.Get("/", slideshowHandler.State)
			r.Post("/play", slideshowHandler.Play)
			r.Post("/restart", slideshowHandler.Restart)
			r.Post("/pause", slideshowHandler.Pause)
			r.Post("/resume", slideshowHandler.Resume)
			r.Post("/stop", slideshowHandler.Stop)
			r.Put("/speed", slideshowHandler.ChangeSpeed)
			r.Get("/speed", slideshowHandler.SpeedSettings)
			r.Put("/loop", slideshowHandler.SetLoop)
			r.Put("/shuffle", slideshowHandler.SetShuffle)
			r.Get("/state", slideshowHandler.State)
		})
	})

	r.Get("/ws", hub.ServeWS)

	listenAddr := cfg.ListenAddr
	log.Printf("Starting server on %s", listenAddr)
	if err := http.ListenAndServe(listenAddr, r); err != nil {
		log.Fatalf("FATAL: Server failed: %v", err)
	}
}
