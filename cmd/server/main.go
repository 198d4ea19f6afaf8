package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Kaliakbarb/persona/internal/api"
	"github.com/Kaliakbarb/persona/internal/config"
	"github.com/Kaliakbarb/persona/internal/pipeline"
	"github.com/Kaliakbarb/persona/internal/provider"
	"github.com/Kaliakbarb/persona/internal/store"
	"github.com/Kaliakbarb/persona/internal/worker"
)

func main() {
	cfg := config.Load()

	// Artifact store.
	var artifacts store.ArtifactStore
	switch cfg.StoreBackend {
	case "sqlite":
		db, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer db.Close()
		s, err := store.NewSQLiteStore(db)
		if err != nil {
			log.Fatalf("init store: %v", err)
		}
		artifacts = s
		log.Printf("using sqlite artifact store at %s", cfg.DBPath)
	default:
		s, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("init store: %v", err)
		}
		artifacts = s
		log.Printf("using file artifact store at %s", cfg.DataDir)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Provider adapters.
	var searcher provider.Searcher
	var generator provider.Generator
	var transcriber provider.Transcriber
	var extractor provider.Extractor

	if cfg.UseStubProviders() {
		log.Println("no provider API keys set, using stub providers")
		searcher = &provider.StubSearcher{}
		generator = &provider.StubGenerator{}
		transcriber = &provider.StubTranscriber{}
		extractor = &provider.StubExtractor{}
	} else {
		searcher = provider.NewSerpClient(cfg.SerpAPIKey,
			provider.WithSerpLocale(cfg.SearchCountry, cfg.SearchLanguage),
			provider.WithSerpTimeout(cfg.HTTPTimeout),
			provider.WithSerpRateLimit(cfg.SearchRPS, cfg.SearchBurst),
		)
		generator = provider.NewGeminiClient(cfg.GeminiKey,
			provider.WithGeminiModel(cfg.GeminiModel),
			provider.WithGeminiTimeout(cfg.HTTPTimeout),
		)
		extractor = provider.NewPageExtractor(cfg.HTTPTimeout)

		switch cfg.Transcriber {
		case "gspeech":
			t, err := provider.NewGoogleSpeechTranscriber(ctx, cfg.SpeechLanguage)
			if err != nil {
				log.Fatalf("init transcriber: %v", err)
			}
			defer t.Close()
			transcriber = t
			log.Println("using Google Cloud Speech transcriber")
		default:
			transcriber = provider.NewWhisperXTranscriber(cfg.WhisperXBin)
			log.Printf("using whisperx transcriber (%s)", cfg.WhisperXBin)
		}
	}

	pipelines := pipeline.New(artifacts, searcher, generator, transcriber,
		pipeline.WithExtractor(extractor),
		pipeline.WithMaxContext(cfg.MaxContextLength),
	)

	// Background worker for audio jobs.
	queue := worker.NewQueue()
	w := worker.New(queue, pipelines, cfg.WorkerInterval)
	go w.Start(ctx)

	// API server.
	srv := api.New(pipelines, artifacts, queue, api.Config{
		CORSOrigin:     cfg.CORSOrigin,
		UploadDir:      filepath.Join(cfg.DataDir, "uploads"),
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Handler(),
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down...")
		cancel()
		httpServer.Shutdown(context.Background())
	}()

	fmt.Printf("persona server listening on http://localhost:%s\n", cfg.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
