package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"ragdesk/internal/eval"
	"ragdesk/internal/testutil"
)

// TestEvaluateSingleSendsModelName verifies the single-model payload and row decoding.
func TestEvaluateSingleSendsModelName(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond(evaluatePath, http.StatusOK, `{"status":"success","results":[{"id":1,"faithfulness":0.9},{"id":2}]}`)
	client := New(fake.URL)

	rows, err := client.Evaluate(testutil.Context(t, 0), "groq", "retrieval")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	var sent map[string]any
	testutil.DecodeJSON(t, fake.Last(t, evaluatePath).Body, &sent)
	if sent["model_name"] != "groq" || sent["category"] != "retrieval" {
		t.Fatalf("unexpected payload %v", sent)
	}
	if _, ok := sent["model_names"]; ok {
		t.Fatalf("single request must not send model_names")
	}
}

// TestCompareKeepsModelOrder verifies multi-model results keep backend order.
func TestCompareKeepsModelOrder(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond(evaluatePath, http.StatusOK, `{"status":"success","results":{"ollama":[{"id":1}],"groq":[{"id":1}]}}`)
	client := New(fake.URL)

	set, err := client.Compare(testutil.Context(t, 0), []string{"groq", "ollama"}, "language")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if got := set.Models(); !reflect.DeepEqual(got, []string{"ollama", "groq"}) {
		t.Fatalf("unexpected model order %v", got)
	}
	var sent struct {
		ModelNames []string `json:"model_names"`
	}
	testutil.DecodeJSON(t, fake.Last(t, evaluatePath).Body, &sent)
	if !reflect.DeepEqual(sent.ModelNames, []string{"groq", "ollama"}) {
		t.Fatalf("unexpected model_names %v", sent.ModelNames)
	}
}

// TestEvaluateStatusError verifies a non-success status surfaces the server message.
func TestEvaluateStatusError(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond(evaluatePath, http.StatusOK, `{"status":"error","message":"dataset missing"}`)
	client := New(fake.URL)

	_, err := client.Evaluate(testutil.Context(t, 0), "groq", "retrieval")
	var status *StatusError
	if !errors.As(err, &status) {
		t.Fatalf("expected status error, got %v", err)
	}
	if got := UserMessage(err, "Evaluation failed."); got != "dataset missing" {
		t.Fatalf("unexpected message %q", got)
	}
}

// TestEvaluateMalformedBody verifies decode failures carry the package prefix.
func TestEvaluateMalformedBody(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond(evaluatePath, http.StatusOK, `{"status":`)
	client := New(fake.URL)

	_, err := client.Evaluate(testutil.Context(t, 0), "groq", "retrieval")
	if err == nil || !strings.HasPrefix(err.Error(), "backend: decode evaluation:") {
		t.Fatalf("expected prefixed decode error, got %v", err)
	}
}

// TestEvaluateHTTPErrorFallsBack verifies a bare failure uses the fallback message.
func TestEvaluateHTTPErrorFallsBack(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond(evaluatePath, http.StatusInternalServerError, `oops`)
	client := New(fake.URL)

	_, err := client.Compare(testutil.Context(t, 0), []string{"a"}, "retrieval")
	if got := UserMessage(err, "Evaluation failed."); got != "Evaluation failed." {
		t.Fatalf("unexpected message %q", got)
	}
}

// TestTransportErrorMessage verifies unreachable backends read as a network error.
func TestTransportErrorMessage(t *testing.T) {
	client := NewWithTimeout("http://127.0.0.1:1", 500*time.Millisecond)
	_, err := client.Evaluate(testutil.Context(t, 0), "groq", "retrieval")
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if got := UserMessage(err, "ignored"); got != NetworkErrorMessage {
		t.Fatalf("unexpected message %q", got)
	}
}

// TestAskSendsForm verifies the ask form fields and answer decoding.
func TestAskSendsForm(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond("/ask-question/", http.StatusOK, `{"answer":"42","contexts":["p1","p2"],"session_id":17}`)
	client := New(fake.URL)

	resp, err := client.Ask(testutil.Context(t, 0), AskRequest{Subject: "ML", Question: "why?", LLM: "gemini", IncludeContext: true})
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if resp.Answer != "42" || resp.SessionID != "17" || len(resp.Contexts) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	form := fake.Last(t, "/ask-question/").Form
	if form.Get("subject") != "ML" || form.Get("llm_choice") != "gemini" || form.Get("include_context") != "true" {
		t.Fatalf("unexpected form %v", form)
	}
}

// TestAskValidation verifies empty input never reaches the backend.
func TestAskValidation(t *testing.T) {
	fake := testutil.StartBackend(t)
	client := New(fake.URL)
	_, err := client.Ask(testutil.Context(t, 0), AskRequest{Subject: "ML", Question: "  "})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(fake.Requests("/ask-question/")) != 0 {
		t.Fatalf("expected no request")
	}
}

// TestFeedback verifies feedback fields.
func TestFeedback(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond("/feedback/", http.StatusOK, `{"status":"ok"}`)
	client := New(fake.URL)
	err := client.Feedback(testutil.Context(t, 0), FeedbackRequest{SessionID: "s1", Helpful: false, Comment: "vague", LLM: "groq"})
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	form := fake.Last(t, "/feedback/").Form
	if form.Get("helpful") != "false" || form.Get("comment") != "vague" {
		t.Fatalf("unexpected form %v", form)
	}
}

// TestUploadMultipart verifies the file and fields are sent as multipart data.
func TestUploadMultipart(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond("/upload-pdf/", http.StatusOK, `{"message":"stored","filename":"notes.pdf"}`)
	client := New(fake.URL)

	resp, err := client.Upload(testutil.Context(t, 0), UploadRequest{
		Subject:     "NLP",
		Description: "unit 1",
		Filename:    "notes.pdf",
		Content:     strings.NewReader("%PDF-1.4"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.Filename != "notes.pdf" || resp.Message != "stored" {
		t.Fatalf("unexpected response %+v", resp)
	}
	req := fake.Last(t, "/upload-pdf/")
	if req.FileName != "notes.pdf" || string(req.FileContent) != "%PDF-1.4" || req.Form.Get("subject") != "NLP" {
		t.Fatalf("unexpected multipart request %+v", req)
	}
}

// TestIngestFailure verifies a non-success ingest carries the server message.
func TestIngestFailure(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond("/ingest/", http.StatusOK, `{"status":"error","message":"parse failed"}`)
	client := New(fake.URL)
	_, err := client.Ingest(testutil.Context(t, 0), IngestRequest{Subject: "NLP", Filename: "notes.pdf", AdvancedParsing: true})
	if got := UserMessage(err, "Ingest failed."); got != "parse failed" {
		t.Fatalf("unexpected message %q", got)
	}
	if fake.Last(t, "/ingest/").Form.Get("advanced_parsing") != "true" {
		t.Fatalf("expected advanced_parsing to be sent")
	}
}

// TestPaperValidation covers the form checks.
func TestPaperValidation(t *testing.T) {
	base := PaperRequest{
		Subject:   "ML",
		Filenames: []string{"a.pdf"},
		Config:    QuestionConfig{TotalQuestions: 3, Difficulty: "easy", Distribution: map[string]int{"one_liner": 1, "descriptive": 2}},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	cases := map[string]func(r *PaperRequest){
		"no files":     func(r *PaperRequest) { r.Filenames = nil },
		"no types":     func(r *PaperRequest) { r.Config.Distribution = map[string]int{} },
		"bad sum":      func(r *PaperRequest) { r.Config.TotalQuestions = 4 },
		"negative":     func(r *PaperRequest) { r.Config.Distribution = map[string]int{"one_liner": -1, "descriptive": 4} },
		"unknown type": func(r *PaperRequest) { r.Config.Distribution = map[string]int{"essay": 3} },
		"difficulty":   func(r *PaperRequest) { r.Config.Difficulty = "brutal" },
	}
	for name, mutate := range cases {
		req := base
		req.Config.Distribution = map[string]int{"one_liner": 1, "descriptive": 2}
		mutate(&req)
		if err := req.Validate(); !IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

// TestGeneratePaperDecodesStringQuestions verifies JSON-encoded question strings are parsed.
func TestGeneratePaperDecodesStringQuestions(t *testing.T) {
	fake := testutil.StartBackend(t)
	questions := `[{"type":"true_false","question":"Sky is blue?","answer":"True"}]`
	body, _ := json.Marshal(map[string]string{"summary": "Two units", "questions": "```json\n" + questions + "\n```"})
	fake.Respond("/generate-question-paper/", http.StatusOK, string(body))
	client := New(fake.URL)

	resp, err := client.GeneratePaper(testutil.Context(t, 0), PaperRequest{
		Subject:   "ML",
		Filenames: []string{"a.pdf"},
		LLM:       "groq",
		Config:    QuestionConfig{TotalQuestions: 1, Distribution: map[string]int{"true_false": 1}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Summary != "Two units" || len(resp.Questions) != 1 || resp.Questions[0].Answer != "True" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(resp.Issues) != 0 {
		t.Fatalf("unexpected issues %v", resp.Issues)
	}
	var sent map[string]any
	testutil.DecodeJSON(t, fake.Last(t, "/generate-question-paper/").Body, &sent)
	config := sent["question_config"].(map[string]any)
	if config["difficulty"] != "medium" {
		t.Fatalf("expected default difficulty, got %v", config["difficulty"])
	}
}

// TestDecodeQuestionsReportsSchemaIssues verifies malformed questions are flagged.
func TestDecodeQuestionsReportsSchemaIssues(t *testing.T) {
	value, err := eval.ParseJSONValue([]byte(`[{"type":"essay","question":"x"}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	resp := DecodeQuestions(value)
	if len(resp.Issues) == 0 {
		t.Fatalf("expected schema issues")
	}
	raw := DecodeQuestions(eval.StringValueOf("not json at all"))
	if raw.Raw != "not json at all" || raw.Questions != nil {
		t.Fatalf("expected raw fallback, got %+v", raw)
	}
}

// TestLogsFilterAndDetails verifies log decoding, filtering and detail rendering.
func TestLogsFilterAndDetails(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond("/logs", http.StatusOK, `[
		{"timestamp":"t1","level":"INFO","event":"ask","subject":"ML","question":"q","latency":1.5,"model":"groq"},
		"junk",
		{"timestamp":"t2","level":"ERROR","event":"ingest","error":"Disk Full"}
	]`)
	client := New(fake.URL)

	entries, err := client.Logs(testutil.Context(t, 0), 0)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected non-object items dropped, got %d", len(entries))
	}
	if got := fake.Last(t, "/logs").Query.Get("limit"); got != "500" {
		t.Fatalf("expected default limit 500, got %q", got)
	}
	if got := entries[0].Details(); got != "latency: 1.5 | model: groq" {
		t.Fatalf("unexpected details %q", got)
	}
	if got := FilterLogs(entries, "ERROR", ""); len(got) != 1 || got[0].Event() != "ingest" {
		t.Fatalf("unexpected level filter %+v", got)
	}
	if got := FilterLogs(entries, LevelAll, "disk full"); len(got) != 1 {
		t.Fatalf("expected case-insensitive search match, got %d", len(got))
	}
	if got := FilterLogs(entries, "", ""); len(got) != 2 {
		t.Fatalf("expected all entries, got %d", len(got))
	}
}

type recordingObserver struct {
	endpoints []string
	codes     []int
}

func (o *recordingObserver) ObserveRequest(endpoint string, code int, err error, elapsed time.Duration) {
	o.endpoints = append(o.endpoints, endpoint)
	o.codes = append(o.codes, code)
}

// TestObserverSeesRequests verifies the observer hook receives endpoint names.
func TestObserverSeesRequests(t *testing.T) {
	fake := testutil.StartBackend(t)
	fake.Respond("/logs", http.StatusOK, `[]`)
	client := New(fake.URL)
	observer := &recordingObserver{}
	client.SetObserver(observer)
	if _, err := client.Logs(testutil.Context(t, 0), 10); err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !reflect.DeepEqual(observer.endpoints, []string{"logs"}) || observer.codes[0] != http.StatusOK {
		t.Fatalf("unexpected observations %v %v", observer.endpoints, observer.codes)
	}
}
