package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ragdesk/internal/eval"
)

const evaluatePath = "/evaluate-ragas/"

type evaluateSingleRequest struct {
	ModelName string `json:"model_name"`
	Category  string `json:"category"`
}

type evaluateMultiRequest struct {
	ModelNames []string `json:"model_names"`
	Category   string   `json:"category"`
}

type evaluateResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Results eval.JSONValue `json:"results"`
}

// Evaluate runs one model's evaluation for category and returns its rows.
func (c *Client) Evaluate(ctx context.Context, model, category string) ([]eval.Row, error) {
	if strings.TrimSpace(model) == "" {
		return nil, invalid("Select a model.")
	}
	resp, err := c.evaluate(ctx, evaluateSingleRequest{ModelName: model, Category: category})
	if err != nil {
		return nil, err
	}
	if resp.Results.Kind == eval.JSONObject {
		set, err := eval.ResultSetFromValue(resp.Results)
		if err != nil {
			return nil, err
		}
		return set.Rows(model), nil
	}
	return eval.RowsFromValue(resp.Results), nil
}

// Compare runs the evaluation for several models in one request.
func (c *Client) Compare(ctx context.Context, models []string, category string) (eval.ResultSet, error) {
	if len(models) == 0 {
		return nil, invalid("Select at least one model.")
	}
	resp, err := c.evaluate(ctx, evaluateMultiRequest{ModelNames: models, Category: category})
	if err != nil {
		return nil, err
	}
	switch resp.Results.Kind {
	case eval.JSONArray:
		if len(models) != 1 {
			return nil, &StatusError{Op: "evaluate-ragas", Code: http.StatusOK, Message: "Unexpected results format."}
		}
		return eval.Single(models[0], eval.RowsFromValue(resp.Results)), nil
	default:
		return eval.ResultSetFromValue(resp.Results)
	}
}

func (c *Client) evaluate(ctx context.Context, payload any) (evaluateResponse, error) {
	body, status, err := c.postJSON(ctx, evaluatePath, payload)
	if err != nil {
		return evaluateResponse{}, err
	}
	if !isSuccess(status) {
		return evaluateResponse{}, decodeHTTPError("evaluate-ragas", status, body)
	}
	var resp evaluateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return evaluateResponse{}, fmt.Errorf("backend: decode evaluation: %w", err)
	}
	if resp.Status != "success" {
		return evaluateResponse{}, &StatusError{Op: "evaluate-ragas", Code: status, Message: resp.Message}
	}
	return resp, nil
}
