package main

import (
	"context"
	"log"
	"os"

	"wsi-recon/config"
	telegram "wsi-recon/internal/api"
	"wsi-recon/internal/container"
	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/domain/port"
	"wsi-recon/internal/infrastructure/storage"
	"wsi-recon/internal/recon"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if len(os.Args) < 2 {
		log.Fatal("Usage: wsi-recon <detections.json> [results.json]")
	}
	detectionsPath := os.Args[1]
	resultsPath := "results.json"
	if len(os.Args) > 2 {
		resultsPath = os.Args[2]
	}

	// Прогоны храним в SQLite, если задан путь к базе
	var store port.ResultStore
	if cfg.ResultsDB != "" {
		sqliteStore, err := storage.NewSQLiteResultStore(cfg.ResultsDB)
		if err != nil {
			log.Fatalf("Failed to open results database: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	} else {
		store = storage.NewMemoryResultStore()
	}

	var notifier port.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		notifier, err = telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("Failed to create notifier: %v", err)
		}
	}

	appContainer := container.New(container.Deps{
		Store:    store,
		Notifier: notifier,
		Options: recon.Options{
			IoUThreshold:        cfg.IoUThreshold,
			MaxPolygonPoints:    cfg.MaxPolygonPoints,
			MinTolerance:        cfg.MinTolerance,
			MaxTolerance:        cfg.MaxTolerance,
			MaxSearchIterations: cfg.MaxSearchIterations,
		},
		MinConfidence: cfg.MinConfidence,
		TileSize:      cfg.TileSize,
		OverlapRatio:  cfg.OverlapRatio,
	})

	dets, err := storage.LoadDetections(detectionsPath)
	if err != nil {
		log.Fatalf("Failed to load detections: %v", err)
	}
	log.Printf("Loaded %d detections from %s", len(dets), detectionsPath)

	slide := entity.SlideInfo{Path: detectionsPath}
	out, err := appContainer.ReconcileService.Reconcile(context.Background(), slide, dets)
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	log.Printf("Run %s: %d regions, avg confidence %.3f", out.Run.ID, out.Run.Stats.Total, out.Run.Stats.AvgConfidence)
	for class, count := range out.Run.Stats.ByClass {
		log.Printf("  %s: %d", class, count)
	}
	if out.Report.DroppedPolygons > 0 || out.Report.FallbackCount > 0 || out.Report.OverBudget > 0 {
		log.Printf("Degradations: %d dropped polygons, %d fallbacks, %d over budget",
			out.Report.DroppedPolygons, out.Report.FallbackCount, out.Report.OverBudget)
	}

	if err := storage.SaveResultsJSON(resultsPath, out.Run.Slide, out.Run.Regions); err != nil {
		log.Fatalf("Failed to save results: %v", err)
	}
	log.Printf("Results written to %s", resultsPath)
}
