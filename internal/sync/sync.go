package sync

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/quizflow/quizflow/internal/csvparse"
	"github.com/quizflow/quizflow/internal/fingerprint"
	"github.com/quizflow/quizflow/internal/gitsource"
	"github.com/quizflow/quizflow/internal/storage"
)

// reposDir is where git sources are checked out locally.
const reposDir = "repos"

// RunSync iterates over all quiz sources and reconciles them against the
// store: unseen quizzes (by content fingerprint) are inserted, quizzes that
// disappeared from their source are deleted.
func RunSync(db *storage.DB, pipeline *csvparse.Pipeline) error {
	slog.Info("Starting sync process for all sources...")
	sources, err := db.GetAllSources()
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}

	if len(sources) == 0 {
		slog.Info("No sources configured. Add one with --add-source <path/or/url.git>")
		return nil
	}

	if err := os.MkdirAll(reposDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create repos directory: %w", err)
	}

	for _, source := range sources {
		slog.Info("Syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		sourceToReconcile := source

		switch source.Type {
		case storage.SourceTypeLocal:
			reconcileLocalSource(db, pipeline, &sourceToReconcile)
		case storage.SourceTypeGit:
			localRepoPath, err := gitURLToLocalPath(reposDir, source.Path)
			if err != nil {
				slog.Error("Error determining local path for git repo", "url", source.Path, "error", err)
				continue
			}

			if err := gitsource.Sync(source.Path, localRepoPath); err != nil {
				slog.Error("Error syncing git repo", "url", source.Path, "error", err)
				continue
			}

			sourceToReconcile.Path = localRepoPath
			reconcileLocalSource(db, pipeline, &sourceToReconcile)
		}
	}
	slog.Info("Sync process complete.")
	return nil
}

// reconcileLocalSource walks one checked-out source for .csv files and
// brings the store in line with what it finds. A file that fails ingestion
// is logged and skipped whole (the pipeline is all-or-nothing per file);
// the rest of the source still syncs.
func reconcileLocalSource(db *storage.DB, pipeline *csvparse.Pipeline, source *storage.Source) {
	var parsedQuizzes int
	var parseErrors []error
	foundFingerprints := make(map[string]bool)

	walkErr := filepath.WalkDir(source.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".csv") {
			return nil
		}

		quizzes, parseErr := pipeline.ParseFile(path)
		if parseErr != nil {
			parseErrors = append(parseErrors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}

		for _, quiz := range quizzes {
			fp := fingerprint.Hash(quiz)
			parsedQuizzes++
			foundFingerprints[fp] = true

			existing, findErr := db.FindQuizByFingerprint(fp)
			if findErr != nil {
				parseErrors = append(parseErrors, fmt.Errorf("db check for %s: %w", fp, findErr))
				continue
			}
			if existing == nil {
				slog.Info("New quiz found, inserting...", "title", quiz.Title, "fingerprint", fp)
				if insertErr := db.AddCustomQuiz(quiz, fp, source.ID); insertErr != nil {
					parseErrors = append(parseErrors, fmt.Errorf("db insert for %s: %w", fp, insertErr))
				}
			}
		}
		return nil
	})

	if walkErr != nil {
		slog.Error("Error walking directory", "path", source.Path, "error", walkErr)
		return
	}

	dbQuizzes, err := db.QuizzesBySourceID(source.ID)
	if err != nil {
		slog.Error("Error getting quizzes for source", "source_id", source.ID, "error", err)
		return
	}

	var orphanedQuizzes int
	for _, dbQuiz := range dbQuizzes {
		if !foundFingerprints[fingerprint.Hash(dbQuiz)] {
			slog.Info("Orphaned quiz, deleting", "id", dbQuiz.ID, "title", dbQuiz.Title)
			orphanedQuizzes++
			if err := db.DeleteCustomQuiz(dbQuiz.ID); err != nil {
				slog.Warn("Failed to delete orphaned quiz", "id", dbQuiz.ID, "error", err)
			}
		}
	}

	if err := db.UpdateSourceLastScanned(source.ID); err != nil {
		slog.Warn("Failed to update last scanned for source", "source_id", source.ID, "error", err)
	}

	slog.Info("reconciliation complete",
		"path", source.Path,
		"parsed_quizzes", parsedQuizzes,
		"orphaned_deleted", orphanedQuizzes,
		"errors", len(parseErrors),
	)
}

// DetectSourceType classifies a source path as local or git.
func DetectSourceType(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") || strings.HasPrefix(path, "https://") {
		return storage.SourceTypeGit
	}
	return storage.SourceTypeLocal
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
