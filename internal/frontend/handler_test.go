package frontend

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ragdesk/internal/backend"
	duckdbtesting "ragdesk/internal/duckdb/testing"
	"ragdesk/internal/observability"
	"ragdesk/internal/testutil"
)

const evaluatePath = "/evaluate-ragas/"

func startFrontend(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	handler, err := NewHandler(cfg)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newFixture(t *testing.T) (*testutil.FakeBackend, *httptest.Server, *observability.Metrics) {
	t.Helper()
	fake := testutil.StartBackend(t)
	m := observability.NewMetrics()
	server := startFrontend(t, Config{
		Client:   backend.New(fake.URL),
		Metrics:  m,
		Category: "retrieval",
		Models:   []string{"groq"},
		LLMs:     []LLM{{ID: "groq", Label: "Groq"}},
		Subjects: []string{"AI"},
	})
	return fake, server, m
}

// TestEvaluateReturnsCellsAndAverages verifies rendered cells and averages with counts.
func TestEvaluateReturnsCellsAndAverages(t *testing.T) {
	fake, server, _ := newFixture(t)
	fake.Respond(evaluatePath, http.StatusOK, `{"status":"success","results":[
		{"id":1,"question":"Q1","context_precision":0.8,"context_recall":"0.4"},
		{"id":2,"question":"Q2","context_precision":{"score":0.2}}
	]}`)

	status, body := testutil.HTTPPostJSON(t, server.URL+"/api/evaluate", map[string]any{"model": "groq", "category": "retrieval"})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var resp evaluateResponse
	testutil.DecodeJSON(t, body, &resp)
	if len(resp.Rows) != 2 || len(resp.Cells) != 2 {
		t.Fatalf("expected 2 rows and cells, got %d/%d", len(resp.Rows), len(resp.Cells))
	}
	precision := resp.Averages["context_precision"]
	if precision.Count != 2 || precision.Mean < 0.4999 || precision.Mean > 0.5001 {
		t.Fatalf("unexpected precision average %+v", precision)
	}
	recall := resp.Averages["context_recall"]
	if recall.Count != 1 || recall.Text != "0.400" {
		t.Fatalf("unexpected recall average %+v", recall)
	}
	if cell := resp.Cells[1]["context_recall"]; cell.Value != nil || cell.Text != "-" {
		t.Fatalf("expected missing cell, got %+v", cell)
	}
	if cell := resp.Cells[0]["context_precision"]; cell.Band != "good" || cell.Color != "#d0f5e0" {
		t.Fatalf("unexpected band %+v", cell)
	}
	if resp.Labels["context_precision"] != "Context Precision" {
		t.Fatalf("unexpected labels %v", resp.Labels)
	}
}

// TestCompareAlignsRows verifies rows are aligned by id across models.
func TestCompareAlignsRows(t *testing.T) {
	fake, server, m := newFixture(t)
	fake.Respond(evaluatePath, http.StatusOK, `{"status":"success","results":{
		"x":[{"id":1,"context_precision":0.2},{"id":2,"context_precision":0.8}],
		"y":[{"id":2,"context_precision":0.4},{"id":3,"context_precision":0.6}]
	}}`)

	status, body := testutil.HTTPPostJSON(t, server.URL+"/api/compare", map[string]any{
		"models":   []string{"x", "y"},
		"category": "retrieval",
		"metrics":  []string{"context_precision"},
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var resp struct {
		Rows     []map[string]any                  `json:"rows"`
		Averages map[string]map[string]averageJSON `json:"averages"`
		ScaleMax float64                           `json:"scale_max"`
		Drill    []drilldownJSON                   `json:"drilldown"`
	}
	testutil.DecodeJSON(t, body, &resp)
	if len(resp.Rows) != 3 {
		t.Fatalf("expected 3 aligned rows, got %d", len(resp.Rows))
	}
	if got := resp.Averages["y"]["context_precision"]; got.Count != 2 || got.Mean < 0.4999 || got.Mean > 0.5001 {
		t.Fatalf("unexpected average for y: %+v", got)
	}
	if resp.ScaleMax != 0.8 {
		t.Fatalf("expected scale max 0.8, got %v", resp.ScaleMax)
	}
	if len(resp.Drill) != 3 {
		t.Fatalf("expected 3 drilldown rows, got %d", len(resp.Drill))
	}
	if cell := resp.Drill[0].Cells["context_precision"]["y"]; cell.Value != nil {
		t.Fatalf("expected id 1 to be missing for y, got %+v", cell)
	}
	if got := gaugeValue(m); got != 3 {
		t.Fatalf("expected aligned rows gauge 3, got %v", got)
	}
}

func gaugeValue(m *observability.Metrics) float64 {
	families, err := m.Gatherer().Gather()
	if err != nil {
		return -1
	}
	for _, family := range families {
		if family.GetName() == "ragdesk_aligned_rows" && len(family.GetMetric()) > 0 {
			return family.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

// TestEvaluateUnknownCategory verifies bad categories are rejected before the backend.
func TestEvaluateUnknownCategory(t *testing.T) {
	fake, server, _ := newFixture(t)
	status, body := testutil.HTTPPostJSON(t, server.URL+"/api/evaluate", map[string]any{"model": "groq", "category": "bogus"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", status, body)
	}
	if len(fake.Requests(evaluatePath)) != 0 {
		t.Fatalf("expected no backend call")
	}
}

// TestBackendErrorsMapToStatus verifies the error taxonomy reaches the browser.
func TestBackendErrorsMapToStatus(t *testing.T) {
	fake, server, _ := newFixture(t)
	fake.Respond(evaluatePath, http.StatusOK, `{"status":"error","message":"Model not loaded"}`)

	status, body := testutil.HTTPPostJSON(t, server.URL+"/api/evaluate", map[string]any{"model": "groq", "category": "retrieval"})
	if status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", status)
	}
	var resp errorResponse
	testutil.DecodeJSON(t, body, &resp)
	if resp.Status != "error" || resp.Message != "Model not loaded" {
		t.Fatalf("unexpected error body %+v", resp)
	}

	status, body = testutil.HTTPPostJSON(t, server.URL+"/api/ask", map[string]any{"subject": "AI"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for validation, got %d", status)
	}
	testutil.DecodeJSON(t, body, &resp)
	if !strings.Contains(resp.Message, "question") {
		t.Fatalf("unexpected validation message %q", resp.Message)
	}
}

// TestTransportErrorIsNetworkError verifies unreachable backends report a network error.
func TestTransportErrorIsNetworkError(t *testing.T) {
	server := startFrontend(t, Config{Client: backend.New("http://127.0.0.1:1")})
	status, body := testutil.HTTPPostJSON(t, server.URL+"/api/evaluate", map[string]any{"model": "groq", "category": "retrieval"})
	if status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", status)
	}
	var resp errorResponse
	testutil.DecodeJSON(t, body, &resp)
	if resp.Message != backend.NetworkErrorMessage {
		t.Fatalf("expected network error, got %q", resp.Message)
	}
}

// TestSecondSubmitWhileInFlightConflicts verifies the in-flight guard.
func TestSecondSubmitWhileInFlightConflicts(t *testing.T) {
	fake, server, m := newFixture(t)
	fake.Respond(evaluatePath, http.StatusOK, `{"status":"success","results":[{"id":1,"context_precision":0.5}]}`)
	release := fake.Hold(t, evaluatePath)

	payload := []byte(`{"model":"groq","category":"retrieval"}`)
	done := make(chan int, 1)
	go func() {
		resp, err := http.Post(server.URL+"/api/evaluate", "application/json", bytes.NewReader(payload))
		if err != nil {
			done <- 0
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		done <- resp.StatusCode
	}()
	testutil.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		return len(fake.Requests(evaluatePath)) == 1
	}, "first evaluation never reached the backend")

	status, _ := testutil.HTTPDo(t, http.MethodPost, server.URL+"/api/evaluate", "application/json", payload)
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
	status, _ = testutil.HTTPPostJSON(t, server.URL+"/api/logs", nil)
	if status != http.StatusMethodNotAllowed {
		t.Fatalf("expected other routes to stay available, got %d", status)
	}

	release()
	select {
	case code := <-done:
		if code != http.StatusOK {
			t.Fatalf("expected first evaluation to succeed, got %d", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("first evaluation did not finish")
	}
	if len(fake.Requests(evaluatePath)) != 1 {
		t.Fatalf("expected a single backend call")
	}
	if got := counterValue(t, m, "ragdesk_rejected_submits_total"); got != 1 {
		t.Fatalf("expected 1 rejected submit, got %v", got)
	}
}

// TestPanicDoesNotLeaveActionInFlight verifies a panicking handler releases its action.
func TestPanicDoesNotLeaveActionInFlight(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond(evaluatePath, http.StatusOK, `{"status":"success","results":[{"id":1,"context_precision":0.5}]}`)
	var calls atomic.Int32
	server := startFrontend(t, Config{
		Client:   backend.New(fake.URL),
		Category: "retrieval",
		Models:   []string{"groq"},
		Now: func() time.Time {
			if calls.Add(1) == 1 {
				panic("clock unavailable")
			}
			return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		},
	})

	payload := map[string]any{"model": "groq", "category": "retrieval"}
	status, _ := testutil.HTTPPostJSON(t, server.URL+"/api/evaluate", payload)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500 from the panicking request, got %d", status)
	}
	status, body := testutil.HTTPPostJSON(t, server.URL+"/api/evaluate", payload)
	if status != http.StatusOK {
		t.Fatalf("expected the next evaluation to run, got %d: %s", status, body)
	}
}

func counterValue(t *testing.T, m *observability.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	total := 0.0
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

// TestReportAfterEvaluate verifies the report reflects the latest evaluation.
func TestReportAfterEvaluate(t *testing.T) {
	fake, server, _ := newFixture(t)
	status, _ := testutil.HTTPDo(t, http.MethodGet, server.URL+"/report", "", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 before any evaluation, got %d", status)
	}

	fake.Respond(evaluatePath, http.StatusOK, `{"status":"success","results":[{"id":1,"question":"What is RAG?","context_precision":0.9}]}`)
	if status, body := testutil.HTTPPostJSON(t, server.URL+"/api/evaluate", map[string]any{"model": "groq", "category": "retrieval"}); status != http.StatusOK {
		t.Fatalf("evaluate failed: %d %s", status, body)
	}

	status, body := testutil.HTTPDo(t, http.MethodGet, server.URL+"/report?scale=abs", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	html := string(body)
	if !strings.Contains(html, "What is RAG?") || !strings.Contains(html, "0.900") {
		t.Fatalf("report missing evaluation content: %s", html)
	}
}

// TestArchiveStoresEvaluations verifies snapshots are archived and listed.
func TestArchiveStoresEvaluations(t *testing.T) {
	fake := testutil.StartBackend(t)
	db := duckdbtesting.Open(t)
	server := startFrontend(t, Config{Client: backend.New(fake.URL), Archive: db, Category: "retrieval"})
	fake.Respond(evaluatePath, http.StatusOK, `{"status":"success","results":[{"id":1,"context_precision":0.9}]}`)

	status, body := testutil.HTTPPostJSON(t, server.URL+"/api/evaluate", map[string]any{"model": "groq", "category": "retrieval"})
	if status != http.StatusOK {
		t.Fatalf("evaluate failed: %d %s", status, body)
	}
	var resp evaluateResponse
	testutil.DecodeJSON(t, body, &resp)
	if resp.SnapshotID == "" {
		t.Fatalf("expected snapshot id")
	}

	status, body = testutil.HTTPDo(t, http.MethodGet, server.URL+"/api/archive", "", nil)
	if status != http.StatusOK || !strings.Contains(string(body), resp.SnapshotID) {
		t.Fatalf("expected archive listing with %s, got %d %s", resp.SnapshotID, status, body)
	}
	status, _ = testutil.HTTPDo(t, http.MethodGet, server.URL+"/report?snapshot=latest", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected archived report, got %d", status)
	}
}

// TestUploadForwardsMultipart verifies the PDF reaches the backend.
func TestUploadForwardsMultipart(t *testing.T) {
	fake, server, _ := newFixture(t)
	fake.Respond("/upload-pdf/", http.StatusOK, `{"message":"stored","filename":"notes.pdf"}`)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("subject", "AI")
	part, err := writer.CreateFormFile("file", "notes.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("%PDF-1.4"))
	_ = writer.Close()

	status, body := testutil.HTTPDo(t, http.MethodPost, server.URL+"/api/upload", writer.FormDataContentType(), buf.Bytes())
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	got := fake.Last(t, "/upload-pdf/")
	if got.FileName != "notes.pdf" || string(got.FileContent) != "%PDF-1.4" || got.Form.Get("subject") != "AI" {
		t.Fatalf("unexpected upload %+v", got)
	}
}

// TestAskDefaultsLLM verifies the first configured LLM is used when none is chosen.
func TestAskDefaultsLLM(t *testing.T) {
	fake, server, _ := newFixture(t)
	fake.Respond("/ask-question/", http.StatusOK, `{"answer":"42","session_id":"s1"}`)

	status, body := testutil.HTTPPostJSON(t, server.URL+"/api/ask", map[string]any{"subject": "AI", "question": "Meaning?"})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if got := fake.Last(t, "/ask-question/").Form.Get("llm_choice"); got != "groq" {
		t.Fatalf("expected default llm groq, got %q", got)
	}
	var resp backend.AskResponse
	testutil.DecodeJSON(t, body, &resp)
	if resp.Answer != "42" || resp.SessionID != "s1" {
		t.Fatalf("unexpected answer %+v", resp)
	}
}

// TestLogsFiltersEntries verifies level and search filtering.
func TestLogsFiltersEntries(t *testing.T) {
	fake, server, _ := newFixture(t)
	fake.Respond("/logs", http.StatusOK, `[
		{"timestamp":"t1","level":"INFO","event":"ask","subject":"AI"},
		{"timestamp":"t2","level":"ERROR","event":"ingest","subject":"DBMS"}
	]`)

	status, body := testutil.HTTPDo(t, http.MethodGet, server.URL+"/api/logs?level=ERROR&limit=10", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var resp struct {
		Total   int              `json:"total"`
		Entries []map[string]any `json:"entries"`
	}
	testutil.DecodeJSON(t, body, &resp)
	if resp.Total != 2 || len(resp.Entries) != 1 || resp.Entries[0]["event"] != "ingest" {
		t.Fatalf("unexpected logs %+v", resp)
	}
	if got := fake.Last(t, "/logs").Query.Get("limit"); got != "10" {
		t.Fatalf("expected limit 10, got %q", got)
	}

	status, _ = testutil.HTTPDo(t, http.MethodGet, server.URL+"/api/logs?limit=x", "", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", status)
	}
}

// TestIndexAndCategories verifies the HTML shell and category listing.
func TestIndexAndCategories(t *testing.T) {
	_, server, _ := newFixture(t)
	status, body := testutil.HTTPDo(t, http.MethodGet, server.URL+"/", "", nil)
	if status != http.StatusOK || !strings.Contains(string(body), "<li><strong>Retrieval Metrics</strong>: ") {
		t.Fatalf("unexpected index %d %s", status, body)
	}
	if !strings.Contains(string(body), "<td>/api/evaluate</td>") {
		t.Fatalf("expected actions table in index %s", body)
	}

	status, body = testutil.HTTPDo(t, http.MethodGet, server.URL+"/api/categories", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var resp categoriesResponse
	testutil.DecodeJSON(t, body, &resp)
	if len(resp.Categories) != 3 || resp.Categories[0].Key != "retrieval" {
		t.Fatalf("unexpected categories %+v", resp.Categories)
	}
	if len(resp.Questions.Types) != 5 || resp.Subjects[0] != "AI" {
		t.Fatalf("unexpected form options %+v", resp)
	}
}

// TestPingAndMetrics verifies the heartbeat and Prometheus endpoints.
func TestPingAndMetrics(t *testing.T) {
	fake, server, _ := newFixture(t)
	fake.Respond(evaluatePath, http.StatusOK, `{"status":"success","results":[]}`)
	if status, _ := testutil.HTTPDo(t, http.MethodGet, server.URL+"/ping", "", nil); status != http.StatusOK {
		t.Fatalf("expected ping 200, got %d", status)
	}
	testutil.HTTPPostJSON(t, server.URL+"/api/evaluate", map[string]any{"model": "groq", "category": "retrieval"})

	status, body := testutil.HTTPDo(t, http.MethodGet, server.URL+"/metrics", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	text := string(body)
	for _, name := range []string{"ragdesk_backend_requests_total", "ragdesk_http_requests_total"} {
		if !strings.Contains(text, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}

// TestServeStopsOnCancel verifies graceful shutdown.
func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- Serve(ctx, Config{Addr: "127.0.0.1:0", Client: backend.New("")})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatalf("serve did not stop")
	}
}

// TestServeRequiresAddr verifies configuration errors.
func TestServeRequiresAddr(t *testing.T) {
	if err := Serve(context.Background(), Config{Client: backend.New("")}); err == nil {
		t.Fatalf("expected addr error")
	}
	if _, err := NewHandler(Config{}); err == nil {
		t.Fatalf("expected client error")
	}
}
