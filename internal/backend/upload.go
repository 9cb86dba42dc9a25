package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// UploadRequest carries one PDF for a subject.
type UploadRequest struct {
	Subject     string
	Description string
	Filename    string
	Content     io.Reader
}

// UploadResponse echoes the stored filename.
type UploadResponse struct {
	Message  string `json:"message,omitempty"`
	Filename string `json:"filename"`
}

// Upload sends a PDF as multipart form data.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	if strings.TrimSpace(req.Subject) == "" || req.Content == nil || strings.TrimSpace(req.Filename) == "" {
		return UploadResponse{}, invalid("Please provide both subject and PDF file.")
	}
	fields := [][2]string{
		{"subject", req.Subject},
		{"description", req.Description},
	}
	body, status, err := c.postMultipart(ctx, "/upload-pdf/", fields, "file", req.Filename, req.Content)
	if err != nil {
		return UploadResponse{}, err
	}
	if !isSuccess(status) {
		return UploadResponse{}, decodeHTTPError("upload-pdf", status, body)
	}
	var resp UploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return UploadResponse{}, fmt.Errorf("backend: decode upload: %w", err)
	}
	if resp.Filename == "" {
		resp.Filename = req.Filename
	}
	return resp, nil
}

// IngestRequest asks the backend to index an uploaded file.
type IngestRequest struct {
	Subject         string
	Filename        string
	AdvancedParsing bool
}

// IngestResponse reports the ingest outcome.
type IngestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Ingest indexes a previously uploaded file.
func (c *Client) Ingest(ctx context.Context, req IngestRequest) (IngestResponse, error) {
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Filename) == "" {
		return IngestResponse{}, invalid("Upload a file before ingesting.")
	}
	form := url.Values{}
	form.Set("subject", req.Subject)
	form.Set("filename", req.Filename)
	form.Set("advanced_parsing", strconv.FormatBool(req.AdvancedParsing))
	body, status, err := c.postForm(ctx, "/ingest/", form)
	if err != nil {
		return IngestResponse{}, err
	}
	if !isSuccess(status) {
		return IngestResponse{}, decodeHTTPError("ingest", status, body)
	}
	var resp IngestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return IngestResponse{}, fmt.Errorf("backend: decode ingest: %w", err)
	}
	if resp.Status != "success" {
		return IngestResponse{}, &StatusError{Op: "ingest", Code: status, Message: resp.Message}
	}
	return resp, nil
}
