package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/quizflow/quizflow/internal/backup"
	"github.com/quizflow/quizflow/internal/catalog"
	"github.com/quizflow/quizflow/internal/csvparse"
	"github.com/quizflow/quizflow/internal/domain"
	"github.com/quizflow/quizflow/internal/review"
	"github.com/quizflow/quizflow/internal/session"
	"github.com/quizflow/quizflow/internal/storage"
	syncer "github.com/quizflow/quizflow/internal/sync"
)

// Server holds the dependencies for the HTTP API.
type Server struct {
	db        *storage.DB
	catalog   *catalog.Catalog
	scheduler *review.Scheduler
	pipeline  *csvparse.Pipeline
	router    *http.ServeMux
	logger    *slog.Logger

	// One attempt runs at a time; the mutex guards the session across
	// concurrent requests.
	mu      sync.Mutex
	session *session.Session
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, cat *catalog.Catalog, scheduler *review.Scheduler, pipeline *csvparse.Pipeline, logger *slog.Logger) *Server {
	s := &Server{
		db:        db,
		catalog:   cat,
		scheduler: scheduler,
		pipeline:  pipeline,
		router:    http.NewServeMux(),
		logger:    logger,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("/api/subjects", s.handleSubjects())
	s.router.HandleFunc("/api/subjects/", s.handleSubjectByID())
	s.router.HandleFunc("/api/quizzes", s.handleQuizzes())
	s.router.HandleFunc("/api/quizzes/", s.handleQuizByID())
	s.router.HandleFunc("/api/folders", s.handleFolders())
	s.router.HandleFunc("/api/folders/", s.handleFolderByID())

	s.router.HandleFunc("/api/session", s.handleSessionState())
	s.router.HandleFunc("/api/session/start", s.handleStartSession())
	s.router.HandleFunc("/api/session/answer", s.handleAnswer())
	s.router.HandleFunc("/api/session/advance", s.handleAdvance())
	s.router.HandleFunc("/api/session/finish", s.handleFinish())

	s.router.HandleFunc("/api/review/stats", s.handleReviewStats())
	s.router.HandleFunc("/api/review/start", s.handleStartReview())

	s.router.HandleFunc("/api/import/csv", s.handleImportCSV())
	s.router.HandleFunc("/api/import/quizzes", s.handleImportQuizzes())
	s.router.HandleFunc("/api/import/backup", s.handleRestoreBackup())
	s.router.HandleFunc("/api/export/backup", s.handleExportBackup())
	s.router.HandleFunc("/api/export/quizzes", s.handleExportQuizzes())
	s.router.HandleFunc("/api/template.csv", s.handleTemplate())

	s.router.HandleFunc("/api/settings", s.handleSettings())
	s.router.HandleFunc("/api/stats", s.handleStats())
	s.router.HandleFunc("/api/stats/", s.handleQuizStats())

	s.router.HandleFunc("/api/sources", s.handleSources())
	s.router.HandleFunc("/api/sources/", s.handleDeleteSource())
	s.router.HandleFunc("/api/sync", s.handlePostSync())
	s.router.HandleFunc("/api/clear", s.handleClearAll())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) internalError(w http.ResponseWriter, context string, err error) {
	s.logger.Error(context, "error", err)
	s.writeError(w, http.StatusInternalServerError, "internal server error")
}

// sessionError maps the session state machine's sentinel errors onto HTTP
// statuses. Guard violations are conflicts, not malformed requests.
func (s *Server) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidOption):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrEmptyQuiz):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNotInProgress),
		errors.Is(err, session.ErrNoQuestion),
		errors.Is(err, session.ErrAnswerLocked):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.internalError(w, "session operation", err)
	}
}

// sessionStateResponse is the wire shape of a session snapshot.
type sessionStateResponse struct {
	Status         string                `json:"status"`
	QuizID         string                `json:"quizId,omitempty"`
	QuizTitle      string                `json:"quizTitle,omitempty"`
	QuestionIndex  int                   `json:"questionIndex"`
	TotalQuestions int                   `json:"totalQuestions"`
	Question       *session.FlatQuestion `json:"question,omitempty"`
	UserAnswer     *int                  `json:"userAnswer,omitempty"`
	ShowResult     bool                  `json:"showResult"`
	Progress       int                   `json:"progress"`
}

func snapshotResponse(state session.State) sessionStateResponse {
	resp := sessionStateResponse{
		Status:         state.Status.String(),
		QuestionIndex:  state.QuestionIndex,
		TotalQuestions: state.TotalQuestions,
		Question:       state.Question,
		UserAnswer:     state.UserAnswer,
		ShowResult:     state.ShowResult,
		Progress:       state.Progress,
	}
	if state.Quiz != nil {
		resp.QuizID = state.Quiz.ID
		resp.QuizTitle = state.Quiz.Title
	}
	return resp
}

func (s *Server) handleSubjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			subjects, err := s.catalog.Subjects()
			if err != nil {
				s.internalError(w, "listing subjects", err)
				return
			}
			s.writeJSON(w, http.StatusOK, subjects)
		case http.MethodPost:
			var subject domain.Subject
			if err := json.NewDecoder(r.Body).Decode(&subject); err != nil {
				s.writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			if err := s.catalog.CreateSubject(subject); err != nil {
				if errors.Is(err, catalog.ErrBuiltinSubject) {
					s.writeError(w, http.StatusConflict, err.Error())
					return
				}
				s.writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.writeJSON(w, http.StatusCreated, subject)
		case http.MethodPut:
			var subjects []domain.Subject
			if err := json.NewDecoder(r.Body).Decode(&subjects); err != nil {
				s.writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			if err := s.catalog.ReplaceSubjects(subjects); err != nil {
				if errors.Is(err, catalog.ErrBuiltinSubject) {
					s.writeError(w, http.StatusConflict, err.Error())
					return
				}
				s.writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.writeJSON(w, http.StatusOK, subjects)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) handleSubjectByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		subjectID := strings.TrimPrefix(r.URL.Path, "/api/subjects/")
		if err := s.catalog.DeleteSubject(subjectID); err != nil {
			if errors.Is(err, catalog.ErrBuiltinSubject) {
				s.writeError(w, http.StatusConflict, err.Error())
				return
			}
			s.internalError(w, "deleting subject", err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"deleted": subjectID})
	}
}

func (s *Server) handleQuizzes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var (
			quizzes []domain.Quiz
			err     error
		)
		if subjectID := r.URL.Query().Get("subject"); subjectID != "" {
			quizzes, err = s.catalog.QuizzesBySubject(subjectID)
		} else {
			quizzes, err = s.catalog.AllQuizzes()
		}
		if err != nil {
			s.internalError(w, "listing quizzes", err)
			return
		}
		s.writeJSON(w, http.StatusOK, quizzes)
	}
}

func (s *Server) handleQuizByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := strings.TrimPrefix(r.URL.Path, "/api/quizzes/")
		switch r.Method {
		case http.MethodGet:
			quiz, ok := s.catalog.QuizByID(quizID)
			if !ok {
				s.writeError(w, http.StatusNotFound, "quiz not found")
				return
			}
			s.writeJSON(w, http.StatusOK, quiz)
		case http.MethodDelete:
			if err := s.catalog.DeleteQuiz(quizID); err != nil {
				s.internalError(w, "deleting quiz", err)
				return
			}
			s.writeJSON(w, http.StatusOK, map[string]string{"deleted": quizID})
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) handleFolders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			subjectID := r.URL.Query().Get("subject")
			if subjectID == "" {
				s.writeError(w, http.StatusBadRequest, "subject query parameter is required")
				return
			}
			folders, err := s.catalog.Folders(subjectID)
			if err != nil {
				s.internalError(w, "listing folders", err)
				return
			}
			s.writeJSON(w, http.StatusOK, folders)
		case http.MethodPost:
			var folder domain.Folder
			if err := json.NewDecoder(r.Body).Decode(&folder); err != nil {
				s.writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			if err := s.catalog.CreateFolder(folder); err != nil {
				s.writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.writeJSON(w, http.StatusCreated, folder)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) handleFolderByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		folderID := strings.TrimPrefix(r.URL.Path, "/api/folders/")
		if err := s.catalog.DeleteFolder(folderID); err != nil {
			s.internalError(w, "deleting folder", err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"deleted": folderID})
	}
}

func (s *Server) handleSessionState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session == nil {
			s.writeJSON(w, http.StatusOK, sessionStateResponse{Status: session.Idle.String()})
			return
		}
		s.writeJSON(w, http.StatusOK, snapshotResponse(s.session.Snapshot()))
	}
}

func (s *Server) handleStartSession() http.HandlerFunc {
	type request struct {
		QuizID string `json:"quizId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		quiz, ok := s.catalog.QuizByID(req.QuizID)
		if !ok {
			s.writeError(w, http.StatusNotFound, "quiz not found")
			return
		}
		s.startQuiz(w, quiz)
	}
}

// startQuiz replaces any existing attempt with a fresh one. Abandoning an
// unfinished attempt records nothing.
func (s *Server) startQuiz(w http.ResponseWriter, quiz domain.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := session.New()
	if err := sess.Start(&quiz); err != nil {
		s.sessionError(w, err)
		return
	}
	s.session = sess
	s.writeJSON(w, http.StatusOK, snapshotResponse(sess.Snapshot()))
}

func (s *Server) handleAnswer() http.HandlerFunc {
	type request struct {
		Option int `json:"option"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session == nil {
			s.writeError(w, http.StatusConflict, session.ErrNotInProgress.Error())
			return
		}
		if err := s.session.SelectAnswer(req.Option); err != nil {
			s.sessionError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, snapshotResponse(s.session.Snapshot()))
	}
}

func (s *Server) handleAdvance() http.HandlerFunc {
	type response struct {
		Outcome string               `json:"outcome"`
		State   sessionStateResponse `json:"state"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session == nil {
			s.writeError(w, http.StatusConflict, session.ErrNotInProgress.Error())
			return
		}
		outcome, err := s.session.Advance()
		if err != nil {
			s.sessionError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, response{Outcome: outcome, State: snapshotResponse(s.session.Snapshot())})
	}
}

// streakWriter stamps streaks onto a finishing batch before it reaches the
// database. With streak tracking off it is a pass-through.
type streakWriter struct {
	db        *storage.DB
	scheduler *review.Scheduler
	history   []domain.AttemptResult
}

func (w *streakWriter) AddResults(batch []domain.AttemptResult) error {
	return w.db.AddResults(w.scheduler.ApplyStreaks(w.history, batch))
}

func (s *Server) handleFinish() http.HandlerFunc {
	type response struct {
		Summary domain.Summary         `json:"summary"`
		Results []domain.AttemptResult `json:"results"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session == nil {
			s.writeError(w, http.StatusConflict, session.ErrNotInProgress.Error())
			return
		}

		history, err := s.db.GetResults()
		if err != nil {
			s.internalError(w, "loading history", err)
			return
		}
		writer := &streakWriter{db: s.db, scheduler: s.scheduler, history: history}
		summary, results, err := s.session.Finish(writer)
		if err != nil {
			s.sessionError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, response{Summary: summary, Results: results})
	}
}

func (s *Server) handleReviewStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		stats := make(map[review.Mode]review.Stats, len(review.Modes))
		for _, mode := range review.Modes {
			modeStats, err := s.scheduler.StatsFromStore(s.db, mode)
			if err != nil {
				s.internalError(w, "loading history", err)
				return
			}
			stats[mode] = modeStats
		}
		s.writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) handleStartReview() http.HandlerFunc {
	type request struct {
		Mode review.Mode `json:"mode"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		valid := false
		for _, mode := range review.Modes {
			if req.Mode == mode {
				valid = true
				break
			}
		}
		if !valid {
			s.writeError(w, http.StatusBadRequest, "unknown review mode")
			return
		}

		cohort, err := s.scheduler.CohortFromStore(s.db, req.Mode)
		if err != nil {
			s.internalError(w, "loading history", err)
			return
		}
		resolved := review.Resolve(cohort, s.catalog)
		quiz := review.ToQuiz(req.Mode, resolved)
		if quiz.QuestionCount() == 0 {
			s.writeError(w, http.StatusNotFound, "nothing to review in this mode")
			return
		}
		s.startQuiz(w, quiz)
	}
}

func (s *Server) handleImportCSV() http.HandlerFunc {
	type response struct {
		Imported  int `json:"imported"`
		Questions int `json:"questions"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		body := s.uploadBody(r)
		quizzes, err := s.pipeline.Parse(body)
		body.Close()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.catalog.AddQuizzes(quizzes, 0); err != nil {
			if errors.Is(err, catalog.ErrDuplicateQuiz) {
				s.writeError(w, http.StatusConflict, err.Error())
				return
			}
			s.internalError(w, "saving imported quizzes", err)
			return
		}
		questions := 0
		for _, q := range quizzes {
			questions += q.QuestionCount()
		}
		s.writeJSON(w, http.StatusCreated, response{Imported: len(quizzes), Questions: questions})
	}
}

// uploadBody returns the "file" part of a multipart upload when one is
// present, otherwise the raw request body.
func (s *Server) uploadBody(r *http.Request) io.ReadCloser {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if file, _, err := r.FormFile("file"); err == nil {
			return file
		}
	}
	return r.Body
}

func (s *Server) handleImportQuizzes() http.HandlerFunc {
	type response struct {
		Imported int `json:"imported"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "could not read request body")
			return
		}
		quizzes, err := backup.ImportQuizzes(data)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.catalog.AddQuizzes(quizzes, 0); err != nil {
			if errors.Is(err, catalog.ErrDuplicateQuiz) {
				s.writeError(w, http.StatusConflict, err.Error())
				return
			}
			s.internalError(w, "saving imported quizzes", err)
			return
		}
		s.writeJSON(w, http.StatusCreated, response{Imported: len(quizzes)})
	}
}

func (s *Server) handleRestoreBackup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "could not read request body")
			return
		}
		if err := backup.RestoreBackup(data, s.db); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.mu.Lock()
		s.session = nil
		s.mu.Unlock()
		s.writeJSON(w, http.StatusOK, map[string]bool{"restored": true})
	}
}

func (s *Server) handleExportBackup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		data, err := backup.ExportBackup(s.db)
		if err != nil {
			s.internalError(w, "exporting backup", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="quizflow_backup.json"`)
		w.Write(data)
	}
}

func (s *Server) handleExportQuizzes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		quizzes, err := s.db.GetCustomQuizzes()
		if err != nil {
			s.internalError(w, "loading custom quizzes", err)
			return
		}
		data, err := backup.ExportQuizzes(quizzes)
		if err != nil {
			s.internalError(w, "exporting quizzes", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="quizflow_quizzes.json"`)
		w.Write(data)
	}
}

func (s *Server) handleTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="quiz_template.csv"`)
		io.WriteString(w, backup.CSVTemplate)
	}
}

func (s *Server) handleSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			settings, err := s.db.GetSettings()
			if err != nil {
				s.internalError(w, "loading settings", err)
				return
			}
			s.writeJSON(w, http.StatusOK, settings)
		case http.MethodPut:
			var settings domain.Settings
			if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
				s.writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			if settings.ColorMode != domain.ColorModeBW && settings.ColorMode != domain.ColorModeColor {
				s.writeError(w, http.StatusBadRequest, "colorMode must be bw or color")
				return
			}
			if err := s.db.SaveSettings(settings); err != nil {
				s.internalError(w, "saving settings", err)
				return
			}
			s.writeJSON(w, http.StatusOK, settings)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		history, err := s.db.GetResults()
		if err != nil {
			s.internalError(w, "loading history", err)
			return
		}
		s.writeJSON(w, http.StatusOK, catalog.StatsForHistory(history))
	}
}

func (s *Server) handleQuizStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		quizID := strings.TrimPrefix(r.URL.Path, "/api/stats/")
		history, err := s.db.GetResults()
		if err != nil {
			s.internalError(w, "loading history", err)
			return
		}
		s.writeJSON(w, http.StatusOK, catalog.StatsForQuiz(quizID, history))
	}
}

func (s *Server) handleSources() http.HandlerFunc {
	type request struct {
		Path string `json:"path"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			sources, err := s.db.GetAllSources()
			if err != nil {
				s.internalError(w, "listing sources", err)
				return
			}
			s.writeJSON(w, http.StatusOK, sources)
		case http.MethodPost:
			var req request
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			if req.Path == "" {
				s.writeError(w, http.StatusBadRequest, "path cannot be empty")
				return
			}
			sourceType := syncer.DetectSourceType(req.Path)
			if _, err := s.db.InsertSource(req.Path, sourceType); err != nil {
				s.internalError(w, "inserting source", err)
				return
			}
			source, err := s.db.FindSourceByPath(req.Path)
			if err != nil {
				s.internalError(w, "loading new source", err)
				return
			}
			s.writeJSON(w, http.StatusCreated, source)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) handleDeleteSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		idStr := strings.TrimPrefix(r.URL.Path, "/api/sources/")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid source ID")
			return
		}
		if err := s.db.DeleteSource(id); err != nil {
			s.internalError(w, "deleting source", err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
	}
}

func (s *Server) handlePostSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		// Foreground so the caller sees the refreshed source list.
		if err := syncer.RunSync(s.db, s.pipeline); err != nil {
			s.internalError(w, "running sync", err)
			return
		}
		sources, err := s.db.GetAllSources()
		if err != nil {
			s.internalError(w, "listing sources after sync", err)
			return
		}
		s.writeJSON(w, http.StatusOK, sources)
	}
}

func (s *Server) handleClearAll() http.HandlerFunc {
	type request struct {
		Confirm bool `json:"confirm"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !req.Confirm {
			s.writeError(w, http.StatusBadRequest, "clearing all data requires confirm: true")
			return
		}
		if err := s.db.ClearAll(); err != nil {
			s.internalError(w, "clearing data", err)
			return
		}
		s.mu.Lock()
		s.session = nil
		s.mu.Unlock()
		s.writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
	}
}
