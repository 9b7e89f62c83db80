package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/quizflow/quizflow/internal/backup"
	"github.com/quizflow/quizflow/internal/catalog"
	"github.com/quizflow/quizflow/internal/config"
	"github.com/quizflow/quizflow/internal/csvparse"
	"github.com/quizflow/quizflow/internal/review"
	"github.com/quizflow/quizflow/internal/storage"
	syncer "github.com/quizflow/quizflow/internal/sync"
	"github.com/quizflow/quizflow/internal/web"
)

func main() {
	defaults := config.Default()
	flags := pflag.NewFlagSet("quizflow", pflag.ExitOnError)
	configPath := flags.String("config", "quizflow.yaml", "Path to the YAML config file")
	flags.String("db", defaults.DB, "Path to the SQLite database file")
	flags.String("addr", defaults.Addr, "HTTP listen address")
	addSource := flags.String("add-source", "", "Register a quiz source (local directory or git URL) and exit")
	runSync := flags.Bool("sync", false, "Sync all registered sources and exit")
	importPath := flags.String("import", "", "Import a quiz CSV file and exit")
	exportPath := flags.String("export", "", "Write a full backup JSON file and exit")
	flags.Parse(os.Args[1:])

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		logger.Error("loading config", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DB)
	if err != nil {
		logger.Error("opening database", "path", cfg.DB, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetDefaultSettings(cfg.DefaultSettings())
	logger.Info("database opened", "path", cfg.DB)

	pipeline := csvparse.New()
	pipeline.DoubleQuote = cfg.CSV.DoubleQuote
	cat := catalog.New(db)
	scheduler := review.NewScheduler(cfg.ReviewPolicy())

	switch {
	case *addSource != "":
		if err := addNewSource(db, *addSource); err != nil {
			logger.Error("adding source", "path", *addSource, "error", err)
			os.Exit(1)
		}
		return
	case *runSync:
		if err := syncer.RunSync(db, pipeline); err != nil {
			logger.Error("syncing sources", "error", err)
			os.Exit(1)
		}
		return
	case *importPath != "":
		if err := importCSV(cat, pipeline, *importPath); err != nil {
			logger.Error("importing CSV", "path", *importPath, "error", err)
			os.Exit(1)
		}
		return
	case *exportPath != "":
		if err := exportBackup(db, *exportPath); err != nil {
			logger.Error("exporting backup", "path", *exportPath, "error", err)
			os.Exit(1)
		}
		return
	}

	server := web.NewServer(db, cat, scheduler, pipeline, logger)
	logger.Info("listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, server); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func addNewSource(db *storage.DB, path string) error {
	sourceType := syncer.DetectSourceType(path)
	if _, err := db.InsertSource(path, sourceType); err != nil {
		return err
	}
	fmt.Printf("Registered %s source: %s\n", sourceType, path)
	return nil
}

func importCSV(cat *catalog.Catalog, pipeline *csvparse.Pipeline, path string) error {
	quizzes, err := pipeline.ParseFile(path)
	if err != nil {
		return err
	}
	if err := cat.AddQuizzes(quizzes, 0); err != nil {
		return err
	}
	questions := 0
	for _, q := range quizzes {
		questions += q.QuestionCount()
	}
	fmt.Printf("Imported %d quizzes, %d questions.\n", len(quizzes), questions)
	return nil
}

func exportBackup(db *storage.DB, path string) error {
	data, err := backup.ExportBackup(db)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Backup written to %s\n", path)
	return nil
}
