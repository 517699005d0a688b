package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"tryon/internal/config"
	"tryon/internal/logger"
	"tryon/internal/repository/sqlite"
	"tryon/internal/service/storage"
)

func main() {
	cfg := config.Load()

	capturesDir := flag.String("captures", cfg.CaptureDirectory, "Directory containing captures")
	dbPath := flag.String("db", cfg.DatabasePath, "Database path")
	flag.Parse()

	cfg.CaptureDirectory = *capturesDir
	cfg.DatabasePath = *dbPath

	fmt.Printf("Indexing captures from %s into database %s\n", cfg.CaptureDirectory, cfg.DatabasePath)

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	lg, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to open logs: %v", err)
	}
	defer lg.Close()

	captures := storage.NewCaptureService(cfg, lg, sqlite.NewCaptureRepository(db))
	res, err := captures.Index()
	if err != nil {
		log.Fatalf("Failed to index captures: %v", err)
	}

	fmt.Printf("Indexed %d new captures\n", res.Indexed)
	if res.Skipped > 0 {
		fmt.Printf("Skipped %d files (invalid name or unreadable)\n", res.Skipped)
	}
}
