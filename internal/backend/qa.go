package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"ragdesk/internal/eval"
)

// AskRequest is one question against a subject's ingested documents.
type AskRequest struct {
	Subject        string
	Question       string
	LLM            string
	IncludeContext bool
}

// AskResponse is the generated answer.
type AskResponse struct {
	Answer    string   `json:"answer"`
	Contexts  []string `json:"contexts,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
}

type askPayload struct {
	Answer    eval.JSONValue `json:"answer"`
	Contexts  eval.JSONValue `json:"contexts"`
	SessionID eval.JSONValue `json:"session_id"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
}

// Ask sends a question and returns the answer with optional contexts.
func (c *Client) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Question) == "" {
		return AskResponse{}, invalid("Please select a subject and enter a question.")
	}
	form := url.Values{}
	form.Set("subject", req.Subject)
	form.Set("question", req.Question)
	form.Set("llm_choice", req.LLM)
	form.Set("include_context", strconv.FormatBool(req.IncludeContext))
	body, status, err := c.postForm(ctx, "/ask-question/", form)
	if err != nil {
		return AskResponse{}, err
	}
	if !isSuccess(status) {
		return AskResponse{}, decodeHTTPError("ask-question", status, body)
	}
	var payload askPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return AskResponse{}, fmt.Errorf("backend: decode answer: %w", err)
	}
	if payload.Status == "error" {
		return AskResponse{}, &StatusError{Op: "ask-question", Code: status, Message: payload.Message}
	}
	resp := AskResponse{
		Answer:    payload.Answer.Text(),
		SessionID: payload.SessionID.Text(),
	}
	switch payload.Contexts.Kind {
	case eval.JSONArray:
		for _, item := range payload.Contexts.Array {
			resp.Contexts = append(resp.Contexts, item.Text())
		}
	case eval.JSONString:
		resp.Contexts = []string{payload.Contexts.String}
	}
	return resp, nil
}

// FeedbackRequest rates an answer.
type FeedbackRequest struct {
	SessionID string
	Helpful   bool
	Comment   string
	LLM       string
}

// Feedback records whether an answer helped.
func (c *Client) Feedback(ctx context.Context, req FeedbackRequest) error {
	if strings.TrimSpace(req.SessionID) == "" {
		return invalid("No answer to rate yet.")
	}
	form := url.Values{}
	form.Set("session_id", req.SessionID)
	form.Set("helpful", strconv.FormatBool(req.Helpful))
	form.Set("comment", req.Comment)
	form.Set("llm_choice", req.LLM)
	body, status, err := c.postForm(ctx, "/feedback/", form)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return decodeHTTPError("feedback", status, body)
	}
	return nil
}
