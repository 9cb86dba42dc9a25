package frontend

import (
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"ragdesk/internal/metrics"
	"ragdesk/internal/report"
	"ragdesk/internal/view"
)

var apiEndpoints = []struct {
	Method string
	Path   string
	Help   string
}{
	{http.MethodGet, "/api/categories", "metric categories, labels and defaults"},
	{http.MethodGet, "/api/state", "current view state"},
	{http.MethodPost, "/api/evaluate", "evaluate one model: {model, category, metrics?}"},
	{http.MethodPost, "/api/compare", "compare models: {models, category, metrics?}"},
	{http.MethodPost, "/api/ask", "ask a question: {subject, question, llm, include_context}"},
	{http.MethodPost, "/api/feedback", "rate an answer: {session_id, helpful, comment, llm}"},
	{http.MethodPost, "/api/upload", "upload a PDF (multipart: subject, description, file)"},
	{http.MethodPost, "/api/ingest", "index an uploaded PDF: {subject, filename, advanced_parsing}"},
	{http.MethodPost, "/api/question-paper", "generate a question paper"},
	{http.MethodGet, "/api/logs", "backend logs: ?level=&q=&limit="},
	{http.MethodGet, "/api/archive", "archived evaluations"},
	{http.MethodGet, "/report", "HTML report of the latest evaluation"},
}

type categoryLine struct {
	Label   string
	Metrics string
}

// IndexPage lists the available actions and metric categories.
func IndexPage(state view.State) templ.Component {
	actions := report.Table{Headers: []string{"Method", "Path", "Description"}}
	for _, ep := range apiEndpoints {
		actions.Rows = append(actions.Rows, []report.Cell{{Text: ep.Method}, {Text: ep.Path}, {Text: ep.Help}})
	}
	var categories []categoryLine
	for _, cat := range state.Categories() {
		labels := make([]string, 0, len(cat.Metrics))
		for _, metric := range cat.Metrics {
			labels = append(labels, metrics.Label(metric))
		}
		categories = append(categories, categoryLine{Label: cat.Label, Metrics: strings.Join(labels, ", ")})
	}
	return report.Page("ragdesk", indexBody(actions, categories))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := IndexPage(s.snapshotState()).Render(r.Context(), w); err != nil {
		s.log.Error("render index failed", "error", err)
	}
}

// handleReport renders the latest evaluation, or an archived snapshot when
// ?snapshot= names one ("latest" selects the newest archived).
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state := s.snapshotState()
	input := report.Input{
		ShowContexts: query.Get("contexts") == "1" || state.ShowContexts,
		Scale:        state.Scale,
		GeneratedAt:  s.now(),
	}
	switch query.Get("scale") {
	case "abs":
		input.Scale = metrics.ScaleAbsolute
	case "pct":
		input.Scale = metrics.ScalePercent
	}

	if ref := query.Get("snapshot"); ref != "" {
		if s.cfg.Archive == nil {
			writeMessage(w, http.StatusNotFound, "Archive is not enabled.")
			return
		}
		record, results, err := report.ResolveSnapshot(r.Context(), s.cfg.Archive, ref)
		if err != nil {
			writeMessage(w, http.StatusNotFound, "Snapshot not found.")
			return
		}
		input.Mode = record.Mode
		input.Category = record.Category
		input.Models = record.Models
		input.Results = results
	} else {
		snap := state.Snapshot
		if snap == nil {
			writeMessage(w, http.StatusNotFound, "No evaluation yet.")
			return
		}
		input.Mode = snap.Mode.String()
		input.Category = snap.Category
		input.Models = snap.Models
		input.Results = snap.Results
		if snap.Category == state.Category {
			input.Metrics = state.ShownMetrics(state.Category)
		}
	}

	html, err := report.RenderReportHTML(r.Context(), input)
	if err != nil {
		s.log.Error("render report failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to render report.")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}
