package frontend

import (
	"context"
	"net/http"

	"ragdesk/internal/duckdb"
	"ragdesk/internal/eval"
	"ragdesk/internal/metrics"
	"ragdesk/internal/view"
)

type evaluateRequest struct {
	Model    string   `json:"model"`
	Category string   `json:"category"`
	Metrics  []string `json:"metrics,omitempty"`
}

type compareRequest struct {
	Models   []string `json:"models"`
	Category string   `json:"category"`
	Metrics  []string `json:"metrics,omitempty"`
}

// cellJSON is one rendered metric value. Value is null when absent.
type cellJSON struct {
	Value *float64 `json:"value"`
	Text  string   `json:"text"`
	Band  string   `json:"band,omitempty"`
	Color string   `json:"color,omitempty"`
}

type averageJSON struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
	Text  string  `json:"text"`
}

type evaluateResponse struct {
	Status     string                 `json:"status"`
	Model      string                 `json:"model"`
	Category   string                 `json:"category"`
	Metrics    []string               `json:"metrics"`
	Labels     map[string]string      `json:"labels"`
	Rows       []eval.Row             `json:"rows"`
	Cells      []map[string]cellJSON  `json:"cells"`
	Averages   map[string]averageJSON `json:"averages"`
	SnapshotID string                 `json:"snapshot_id,omitempty"`
}

type drilldownJSON struct {
	ID       eval.ID                        `json:"id"`
	Question string                         `json:"question"`
	Cells    map[string]map[string]cellJSON `json:"cells"`
}

type compareResponse struct {
	Status      string                            `json:"status"`
	Models      []string                          `json:"models"`
	Category    string                            `json:"category"`
	Metrics     []string                          `json:"metrics"`
	Labels      map[string]string                 `json:"labels"`
	Rows        []metrics.AlignedRow              `json:"rows"`
	Averages    map[string]map[string]averageJSON `json:"averages"`
	Drilldown   []drilldownJSON                   `json:"drilldown"`
	Correlation map[string][][]float64            `json:"correlation"`
	ScaleMax    float64                           `json:"scale_max"`
	SnapshotID  string                            `json:"snapshot_id,omitempty"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	shown, err := s.selectMetrics(req.Category, req.Metrics)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if !s.begin(view.ActionEvaluate) {
		writeBusy(w)
		return
	}
	defer s.settleOnPanic(view.ActionEvaluate)
	rows, err := s.client.Evaluate(r.Context(), req.Model, req.Category)
	if err != nil {
		s.finish(view.ActionEvaluate, view.Result{Err: err, Fallback: "Evaluation failed"})
		writeError(w, err, "Evaluation failed")
		return
	}
	results := eval.Single(req.Model, rows)
	snap := &view.Snapshot{
		Mode:      view.ModeSingle,
		Category:  req.Category,
		Models:    []string{req.Model},
		Results:   results,
		FetchedAt: s.now(),
	}
	s.finish(view.ActionEvaluate, view.Result{Snapshot: snap})
	s.update(func(st view.State) view.State { return view.SelectCategory(st, req.Category) })

	resp := evaluateResponse{
		Status:     statusSuccess,
		Model:      req.Model,
		Category:   req.Category,
		Metrics:    shown,
		Labels:     labelsFor(shown),
		Rows:       rows,
		Cells:      make([]map[string]cellJSON, 0, len(rows)),
		Averages:   map[string]averageJSON{},
		SnapshotID: s.archive(r.Context(), snap),
	}
	if resp.Rows == nil {
		resp.Rows = []eval.Row{}
	}
	for _, row := range rows {
		cells := make(map[string]cellJSON, len(shown))
		for _, metric := range shown {
			cells[metric] = cellOf(metrics.Resolve(row, metric))
		}
		resp.Cells = append(resp.Cells, cells)
	}
	for metric, avg := range metrics.AveragesWithCount(rows, shown) {
		resp.Averages[metric] = averageOf(avg)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	shown, err := s.selectMetrics(req.Category, req.Metrics)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if !s.begin(view.ActionCompare) {
		writeBusy(w)
		return
	}
	defer s.settleOnPanic(view.ActionCompare)
	results, err := s.client.Compare(r.Context(), req.Models, req.Category)
	if err != nil {
		s.finish(view.ActionCompare, view.Result{Err: err, Fallback: "Comparison failed"})
		writeError(w, err, "Comparison failed")
		return
	}
	models := req.Models
	snap := &view.Snapshot{
		Mode:      view.ModeCompare,
		Category:  req.Category,
		Models:    models,
		Results:   results,
		FetchedAt: s.now(),
	}
	s.finish(view.ActionCompare, view.Result{Snapshot: snap})
	s.update(func(st view.State) view.State { return view.SelectCategory(st, req.Category) })

	aligned := metrics.Align(results)
	s.cfg.Metrics.SetAlignedRows(len(aligned))

	resp := compareResponse{
		Status:      statusSuccess,
		Models:      models,
		Category:    req.Category,
		Metrics:     shown,
		Labels:      labelsFor(shown),
		Rows:        aligned,
		Averages:    map[string]map[string]averageJSON{},
		Correlation: map[string][][]float64{},
		ScaleMax:    metrics.ScaleMax(results, models, shown),
		SnapshotID:  s.archive(r.Context(), snap),
	}
	for model, byMetric := range metrics.PerModelWithCount(results, models, shown) {
		out := make(map[string]averageJSON, len(byMetric))
		for metric, avg := range byMetric {
			out[metric] = averageOf(avg)
		}
		resp.Averages[model] = out
	}
	for _, model := range models {
		resp.Correlation[model] = metrics.CorrelationMatrix(metrics.EntryRows(aligned, model), shown)
	}
	for _, row := range metrics.Drilldown(results, models, shown) {
		item := drilldownJSON{ID: row.ID, Question: row.Question, Cells: map[string]map[string]cellJSON{}}
		for _, metric := range shown {
			byModel := make(map[string]cellJSON, len(models))
			for _, model := range models {
				byModel[model] = cellOf(row.Cell(metric, model))
			}
			item.Cells[metric] = byModel
		}
		resp.Drilldown = append(resp.Drilldown, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// selectMetrics validates category and picks the metrics to show: the
// requested ones when given, otherwise the category defaults.
func (s *Server) selectMetrics(category string, requested []string) ([]string, error) {
	cat, ok := metrics.CategoryByKey(category)
	if !ok {
		return nil, badRequest("Unknown category.")
	}
	if len(requested) > 0 {
		return requested, nil
	}
	if shown := metrics.DefaultShown(category); len(shown) > 0 {
		return shown, nil
	}
	return cat.Metrics, nil
}

// archive stores snap when an archive is configured. Failures are logged
// and never fail the request.
func (s *Server) archive(ctx context.Context, snap *view.Snapshot) string {
	if s.cfg.Archive == nil {
		return ""
	}
	id, _, err := duckdb.SaveSnapshot(ctx, s.cfg.Archive, duckdb.SnapshotInput{
		Mode:      snap.Mode.String(),
		Category:  snap.Category,
		Results:   snap.Results,
		CreatedAt: snap.FetchedAt,
	})
	if err != nil {
		s.log.Warn("archive snapshot failed", "error", err)
		return ""
	}
	return id
}

func cellOf(value metrics.Value) cellJSON {
	cell := cellJSON{Text: metrics.Format(value)}
	if n, ok := value.Float(); ok {
		cell.Value = &n
		band := metrics.BandOf(value)
		cell.Band = band.String()
		cell.Color = band.Color()
	}
	return cell
}

func averageOf(avg metrics.Average) averageJSON {
	text := metrics.Placeholder
	if avg.Count > 0 {
		text = metrics.Format(metrics.Number(metrics.Round(avg.Mean, 3)))
	}
	return averageJSON{Mean: avg.Mean, Count: avg.Count, Text: text}
}

func labelsFor(metricNames []string) map[string]string {
	out := make(map[string]string, len(metricNames))
	for _, metric := range metricNames {
		out[metric] = metrics.Label(metric)
	}
	return out
}
