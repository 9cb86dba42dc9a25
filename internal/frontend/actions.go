package frontend

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"ragdesk/internal/backend"
	"ragdesk/internal/duckdb"
	"ragdesk/internal/metrics"
	"ragdesk/internal/view"
)

type askRequest struct {
	Subject        string `json:"subject"`
	Question       string `json:"question"`
	LLM            string `json:"llm"`
	IncludeContext bool   `json:"include_context"`
}

type feedbackRequest struct {
	SessionID string `json:"session_id"`
	Helpful   bool   `json:"helpful"`
	Comment   string `json:"comment"`
	LLM       string `json:"llm"`
}

type ingestRequest struct {
	Subject         string `json:"subject"`
	Filename        string `json:"filename"`
	AdvancedParsing bool   `json:"advanced_parsing"`
}

type categoriesResponse struct {
	Categories []metrics.Category  `json:"categories"`
	Labels     map[string]string   `json:"labels"`
	Defaults   map[string][]string `json:"defaults"`
	Columns    []metrics.Column    `json:"columns"`
	Subjects   []string            `json:"subjects"`
	LLMs       []LLM               `json:"llms"`
	Questions  questionOptions     `json:"question_paper"`
}

type questionOptions struct {
	Types        []string `json:"types"`
	Difficulties []string `json:"difficulties"`
}

type stateResponse struct {
	Mode     string          `json:"mode"`
	Category string          `json:"category"`
	Models   []string        `json:"models"`
	Shown    []string        `json:"shown"`
	InFlight []view.Action   `json:"in_flight"`
	Error    string          `json:"error,omitempty"`
	Notice   string          `json:"notice,omitempty"`
	Snapshot *snapshotHeader `json:"snapshot,omitempty"`
}

type snapshotHeader struct {
	Mode      string   `json:"mode"`
	Category  string   `json:"category"`
	Models    []string `json:"models"`
	Rows      int      `json:"rows"`
	FetchedAt string   `json:"fetched_at"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	cats := s.snapshotState().Categories()
	defaults := make(map[string][]string, len(cats))
	for _, cat := range cats {
		defaults[cat.Key] = metrics.DefaultShown(cat.Key)
	}
	subjects := s.cfg.Subjects
	if subjects == nil {
		subjects = []string{}
	}
	llms := s.cfg.LLMs
	if llms == nil {
		llms = []LLM{}
	}
	writeJSON(w, http.StatusOK, categoriesResponse{
		Categories: cats,
		Labels:     metrics.Labels(),
		Defaults:   defaults,
		Columns:    metrics.StaticColumns(),
		Subjects:   subjects,
		LLMs:       llms,
		Questions: questionOptions{
			Types:        backend.QuestionTypes,
			Difficulties: backend.Difficulties,
		},
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	state := s.snapshotState()
	resp := stateResponse{
		Mode:     state.Mode.String(),
		Category: state.Category,
		Models:   state.Models,
		Shown:    state.ShownMetrics(state.Category),
		InFlight: []view.Action{},
		Error:    state.Error,
		Notice:   state.Notice,
	}
	for action, busy := range state.InFlight {
		if busy {
			resp.InFlight = append(resp.InFlight, action)
		}
	}
	slices.Sort(resp.InFlight)
	if snap := state.Snapshot; snap != nil {
		resp.Snapshot = &snapshotHeader{
			Mode:      snap.Mode.String(),
			Category:  snap.Category,
			Models:    snap.Models,
			Rows:      snap.Results.Len(),
			FetchedAt: snap.FetchedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	if !s.begin(view.ActionAsk) {
		writeBusy(w)
		return
	}
	defer s.settleOnPanic(view.ActionAsk)
	resp, err := s.client.Ask(r.Context(), backend.AskRequest{
		Subject:        req.Subject,
		Question:       req.Question,
		LLM:            s.llm(req.LLM),
		IncludeContext: req.IncludeContext,
	})
	s.finish(view.ActionAsk, view.Result{Err: err, Fallback: "Failed to get answer"})
	if err != nil {
		writeError(w, err, "Failed to get answer")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	if !s.begin(view.ActionFeedback) {
		writeBusy(w)
		return
	}
	defer s.settleOnPanic(view.ActionFeedback)
	err := s.client.Feedback(r.Context(), backend.FeedbackRequest{
		SessionID: req.SessionID,
		Helpful:   req.Helpful,
		Comment:   req.Comment,
		LLM:       s.llm(req.LLM),
	})
	s.finish(view.ActionFeedback, view.Result{Err: err, Fallback: "Feedback failed", Notice: "Thanks for your feedback!"})
	if err != nil {
		writeError(w, err, "Feedback failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": statusSuccess, "message": "Thanks for your feedback!"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeMessage(w, http.StatusBadRequest, "Failed to parse multipart form.")
		return
	}
	req := backend.UploadRequest{
		Subject:     r.FormValue("subject"),
		Description: r.FormValue("description"),
	}
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		req.Filename = header.Filename
		req.Content = file
	}
	if !s.begin(view.ActionUpload) {
		writeBusy(w)
		return
	}
	defer s.settleOnPanic(view.ActionUpload)
	resp, err := s.client.Upload(r.Context(), req)
	s.finish(view.ActionUpload, view.Result{Err: err, Fallback: "Upload failed", Notice: resp.Message})
	if err != nil {
		writeError(w, err, "Upload failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	if !s.begin(view.ActionIngest) {
		writeBusy(w)
		return
	}
	defer s.settleOnPanic(view.ActionIngest)
	resp, err := s.client.Ingest(r.Context(), backend.IngestRequest{
		Subject:         req.Subject,
		Filename:        req.Filename,
		AdvancedParsing: req.AdvancedParsing,
	})
	s.finish(view.ActionIngest, view.Result{Err: err, Fallback: "Ingestion failed", Notice: resp.Message})
	if err != nil {
		writeError(w, err, "Ingestion failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuestionPaper(w http.ResponseWriter, r *http.Request) {
	var req backend.PaperRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	req.LLM = s.llm(req.LLM)
	if !s.begin(view.ActionPaper) {
		writeBusy(w)
		return
	}
	defer s.settleOnPanic(view.ActionPaper)
	resp, err := s.client.GeneratePaper(r.Context(), req)
	s.finish(view.ActionPaper, view.Result{Err: err, Fallback: "Failed to generate question paper"})
	if err != nil {
		writeError(w, err, "Failed to generate question paper")
		return
	}
	if resp.Questions == nil {
		resp.Questions = []backend.Question{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := backend.DefaultLogLimit
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeMessage(w, http.StatusBadRequest, "Invalid limit.")
			return
		}
		limit = n
	}
	if !s.begin(view.ActionLogs) {
		writeBusy(w)
		return
	}
	defer s.settleOnPanic(view.ActionLogs)
	entries, err := s.client.Logs(r.Context(), limit)
	s.finish(view.ActionLogs, view.Result{Err: err, Fallback: "Failed to load logs"})
	if err != nil {
		writeError(w, err, "Failed to load logs")
		return
	}
	filtered := backend.FilterLogs(entries, query.Get("level"), query.Get("q"))
	if filtered == nil {
		filtered = []backend.LogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"total":   len(entries),
		"entries": filtered,
	})
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Archive == nil {
		writeMessage(w, http.StatusNotFound, "Archive is not enabled.")
		return
	}
	list, err := duckdb.ListSnapshots(r.Context(), s.cfg.Archive)
	if err != nil {
		s.log.Error("list snapshots failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to list snapshots.")
		return
	}
	if list == nil {
		list = []duckdb.SnapshotRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": statusSuccess, "snapshots": list})
}

// llm falls back to the first configured LLM.
func (s *Server) llm(choice string) string {
	if strings.TrimSpace(choice) != "" || len(s.cfg.LLMs) == 0 {
		return choice
	}
	return s.cfg.LLMs[0].ID
}
