package report

import (
	"context"
	"time"

	"ragdesk/internal/eval"
	"ragdesk/internal/metrics"
)

// Input is one evaluation or comparison to render.
type Input struct {
	Title        string
	Mode         string
	Category     string
	Models       []string
	Results      eval.ResultSet
	Metrics      []string
	Scale        metrics.Scale
	ShowContexts bool
	GeneratedAt  time.Time
}

// BuildReportHTML renders the report, returning "" on failure.
func BuildReportHTML(input Input) string {
	html, err := RenderReportHTML(context.Background(), input)
	if err != nil {
		return ""
	}
	return html
}

// normalize fills defaults: models from the result set, metrics from the
// category's defaults, and a title.
func normalize(input Input) Input {
	if len(input.Models) == 0 {
		input.Models = input.Results.Models()
	}
	if len(input.Metrics) == 0 {
		input.Metrics = metrics.DefaultShown(input.Category)
	}
	if input.Mode == "" {
		input.Mode = "single"
		if len(input.Models) > 1 {
			input.Mode = "compare"
		}
	}
	if input.Title == "" {
		input.Title = "Evaluation report"
		if cat, ok := metrics.CategoryByKey(input.Category); ok {
			input.Title = cat.Label
		}
	}
	return input
}
