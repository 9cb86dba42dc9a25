package metrics

// Category is a named, ordered grouping of metric keys used to organize tables.
type Category struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Metrics []string `json:"metrics"`
}

// Column describes a static table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// OtherCategoryKey is the key of the category collecting uncategorized metrics.
const OtherCategoryKey = "other"

var categories = []Category{
	{
		Key:     "retrieval",
		Label:   "Retrieval Metrics",
		Metrics: []string{"context_precision", "context_recall", "faithfulness"},
	},
	{
		Key:     "nvidia",
		Label:   "Nvidia Metrics",
		Metrics: []string{"nv_accuracy", "nv_context_relevance", "nv_response_groundedness"},
	},
	{
		Key:   "language",
		Label: "Language Metrics",
		Metrics: []string{
			"factual_correctness",
			"semantic_similarity",
			"bleu_score",
			"rouge_score",
			"string_present",
			"exact_match",
		},
	},
}

var labels = map[string]string{
	"context_precision":        "Context Precision",
	"context_recall":           "Context Recall",
	"faithfulness":             "Faithfulness",
	"nv_accuracy":              "NV Answer Accuracy",
	"nv_context_relevance":     "NV Context Relevance",
	"nv_response_groundedness": "NV Response Groundedness",
	"factual_correctness":      "Factual Correctness (F1)",
	"semantic_similarity":      "Semantic Similarity",
	"bleu_score":               "BLEU Score",
	"rouge_score":              "ROUGE Score (F-measure)",
	"string_present":           "String Presence",
	"exact_match":              "Exact Match",
}

var defaultShown = map[string][]string{
	"retrieval": {"context_precision", "context_recall"},
	"nvidia":    {"nv_accuracy", "nv_context_relevance"},
	"language":  {"factual_correctness", "semantic_similarity"},
}

var staticColumns = []Column{
	{Key: "id", Label: "Q#"},
	{Key: "question", Label: "Question"},
	{Key: "answer", Label: "Answer"},
	{Key: "ground_truth", Label: "Ground Truth"},
}

// Categories returns a copy of the built-in categories in display order.
func Categories() []Category {
	out := make([]Category, 0, len(categories))
	for _, cat := range categories {
		out = append(out, cloneCategory(cat))
	}
	return out
}

// CategoryByKey returns the built-in category with key.
func CategoryByKey(key string) (Category, bool) {
	for _, cat := range categories {
		if cat.Key == key {
			return cloneCategory(cat), true
		}
	}
	return Category{}, false
}

// MetricsForCategory returns the metric keys of a category, or nil when unknown.
func MetricsForCategory(key string) []string {
	cat, ok := CategoryByKey(key)
	if !ok {
		return nil
	}
	return cat.Metrics
}

// DefaultShown returns the metrics shown by default for a category. Unknown
// categories fall back to their first metric, or nil.
func DefaultShown(key string) []string {
	if shown, ok := defaultShown[key]; ok {
		return append([]string(nil), shown...)
	}
	if metrics := MetricsForCategory(key); len(metrics) > 0 {
		return metrics[:1]
	}
	return nil
}

// Label returns the display label for a metric, or the key itself.
func Label(metric string) string {
	if label, ok := labels[metric]; ok {
		return label
	}
	return metric
}

// Labels returns a copy of the metric label table.
func Labels() map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// StaticColumns returns the always-visible table columns.
func StaticColumns() []Column {
	return append([]Column(nil), staticColumns...)
}

// WithOther returns the built-in categories plus an "Other" category holding
// every labelled metric not already categorized, in the order given.
func WithOther(extraLabelled []string) []Category {
	out := Categories()
	known := map[string]struct{}{}
	for _, cat := range out {
		for _, metric := range cat.Metrics {
			known[metric] = struct{}{}
		}
	}
	var extra []string
	for _, metric := range extraLabelled {
		if _, ok := known[metric]; ok {
			continue
		}
		known[metric] = struct{}{}
		extra = append(extra, metric)
	}
	if len(extra) > 0 {
		out = append(out, Category{Key: OtherCategoryKey, Label: "Other", Metrics: extra})
	}
	return out
}

// AllMetrics flattens categories into one ordered metric list.
func AllMetrics(cats []Category) []string {
	var out []string
	for _, cat := range cats {
		out = append(out, cat.Metrics...)
	}
	return out
}

// FirstOfEach returns the first metric of each category, the default
// selection for charts.
func FirstOfEach(cats []Category) []string {
	var out []string
	for _, cat := range cats {
		if len(cat.Metrics) > 0 {
			out = append(out, cat.Metrics[0])
		}
	}
	return out
}

func cloneCategory(cat Category) Category {
	cat.Metrics = append([]string(nil), cat.Metrics...)
	return cat
}
