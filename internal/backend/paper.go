package backend

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"ragdesk/internal/eval"
)

//go:embed question_paper.schema.json
var questionPaperSchema string

// QuestionTypes lists the accepted question types in display order.
var QuestionTypes = []string{"one_liner", "true_false", "fill_blank", "multiple_choice", "descriptive"}

// Difficulties lists the accepted difficulty levels.
var Difficulties = []string{"easy", "medium", "hard"}

// QuestionConfig shapes the generated paper.
type QuestionConfig struct {
	TotalQuestions int            `json:"total_questions"`
	Difficulty     string         `json:"difficulty"`
	Distribution   map[string]int `json:"distribution"`
}

// PaperRequest asks for a question paper over selected files.
type PaperRequest struct {
	Subject      string         `json:"subject"`
	Filenames    []string       `json:"filenames"`
	LLM          string         `json:"llm_choice"`
	Config       QuestionConfig `json:"question_config"`
	ExtraContext string         `json:"extra_context"`
}

// Question is one generated exam question.
type Question struct {
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer"`
}

// PaperResponse is the generated paper. Raw holds the questions text when
// the backend returned something that is not a question list.
type PaperResponse struct {
	Summary   string     `json:"summary"`
	Questions []Question `json:"questions"`
	Raw       string     `json:"raw,omitempty"`
	Issues    []string   `json:"issues,omitempty"`
}

// Validate checks the request the way the form does before sending.
func (r PaperRequest) Validate() error {
	if strings.TrimSpace(r.Subject) == "" || len(r.Filenames) == 0 {
		return invalid("Select subject and PDF(s).")
	}
	if len(r.Config.Distribution) == 0 {
		return invalid("Select at least one question type.")
	}
	if r.Config.Difficulty != "" && !slices.Contains(Difficulties, r.Config.Difficulty) {
		return invalid(fmt.Sprintf("Unknown difficulty %q.", r.Config.Difficulty))
	}
	sum := 0
	for kind, count := range r.Config.Distribution {
		if !slices.Contains(QuestionTypes, kind) {
			return invalid(fmt.Sprintf("Unknown question type %q.", kind))
		}
		if count < 0 {
			return invalid("Question counts cannot be negative.")
		}
		sum += count
	}
	if sum != r.Config.TotalQuestions {
		return invalid("Sum of question types must equal total questions.")
	}
	return nil
}

type paperPayload struct {
	Summary   eval.JSONValue `json:"summary"`
	Questions eval.JSONValue `json:"questions"`
}

// GeneratePaper requests a question paper.
func (c *Client) GeneratePaper(ctx context.Context, req PaperRequest) (PaperResponse, error) {
	if req.Config.Difficulty == "" {
		req.Config.Difficulty = "medium"
	}
	if err := req.Validate(); err != nil {
		return PaperResponse{}, err
	}
	body, status, err := c.postJSON(ctx, "/generate-question-paper/", req)
	if err != nil {
		return PaperResponse{}, err
	}
	if !isSuccess(status) {
		return PaperResponse{}, decodeHTTPError("generate-question-paper", status, body)
	}
	var payload paperPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return PaperResponse{}, fmt.Errorf("backend: decode question paper: %w", err)
	}
	resp := DecodeQuestions(payload.Questions)
	resp.Summary = payload.Summary.Text()
	return resp, nil
}

// DecodeQuestions accepts a question list, an object holding one, or a
// string that encodes either. Anything else is kept as raw text.
func DecodeQuestions(value eval.JSONValue) PaperResponse {
	if value.Kind == eval.JSONString {
		parsed, err := eval.ParseJSONValue([]byte(stripFence(value.String)))
		if err != nil {
			return PaperResponse{Raw: value.String}
		}
		value = parsed
	}
	if value.Kind == eval.JSONObject {
		if inner, ok := value.Field("questions"); ok {
			value = inner
		}
	}
	if value.Kind != eval.JSONArray {
		return PaperResponse{Raw: value.Text()}
	}
	resp := PaperResponse{Issues: validateQuestions(value)}
	data, err := value.MarshalJSON()
	if err != nil {
		return PaperResponse{Raw: value.Text()}
	}
	if err := json.Unmarshal(data, &resp.Questions); err != nil {
		return PaperResponse{Raw: value.Text(), Issues: resp.Issues}
	}
	return resp
}

func stripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimPrefix(trimmed, "json")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

const questionPaperSchemaURL = "mem://ragdesk/question_paper.schema.json"

var compileQuestionSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(questionPaperSchemaURL, strings.NewReader(questionPaperSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(questionPaperSchemaURL)
})

func validateQuestions(value eval.JSONValue) []string {
	schema, err := compileQuestionSchema()
	if err != nil {
		return []string{fmt.Sprintf("compile schema: %v", err)}
	}
	if err := schema.Validate(value.ToInterface()); err != nil {
		return []string{err.Error()}
	}
	return nil
}
