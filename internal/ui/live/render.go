package live

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ragdesk/internal/eval"
	"ragdesk/internal/metrics"
	"ragdesk/internal/view"
)

const helpLine = "tab category | 1-9 metric | s scale | c contexts | enter expand | r re-run | q quit"

// renderHeader renders the mode, models and scale line.
func renderHeader(state view.State, noColor bool) string {
	line := "ragdesk " + state.Mode.String()
	if models := snapshotModels(state); len(models) > 0 {
		line += " | Models: " + strings.Join(models, ", ")
	}
	line += " | Scale: " + scaleName(state.Scale)
	if state.Snapshot != nil && !state.Snapshot.FetchedAt.IsZero() {
		line += " | Fetched: " + state.Snapshot.FetchedAt.Format("15:04:05")
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderCategories renders the category tabs with the active one marked.
func renderCategories(state view.State, noColor bool) string {
	parts := make([]string, 0, len(state.Categories()))
	for _, cat := range state.Categories() {
		label := cat.Label
		if cat.Key == state.Category {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return stylize(strings.Join(parts, "  "), noColor, lipgloss.Color("252"))
}

// renderMetricToggles lists the category metrics with their key and state.
func renderMetricToggles(state view.State, noColor bool) string {
	shown := map[string]bool{}
	for _, metric := range state.ShownMetrics(state.Category) {
		shown[metric] = true
	}
	var parts []string
	for _, cat := range state.Categories() {
		if cat.Key != state.Category {
			continue
		}
		for i, metric := range cat.Metrics {
			if i >= 9 {
				break
			}
			parts = append(parts, strconv.Itoa(i+1)+checkbox(shown[metric])+" "+metrics.Label(metric))
		}
	}
	return stylize(strings.Join(parts, "  "), noColor, lipgloss.Color("242"))
}

// renderAverages renders one line of per-model averages.
func renderAverages(state view.State, noColor bool) string {
	if state.Snapshot == nil {
		return stylize("No evaluation yet. Press r to run one.", noColor, lipgloss.Color("244"))
	}
	averages := state.Averages()
	models := make([]string, 0, len(averages))
	for model := range averages {
		models = append(models, model)
	}
	sort.Strings(models)
	shown := state.ShownMetrics(state.Category)
	lines := make([]string, 0, len(models))
	for _, model := range models {
		parts := make([]string, 0, len(shown))
		for _, metric := range shown {
			parts = append(parts, metrics.Label(metric)+": "+formatAverage(averages[model][metric], state.Scale))
		}
		lines = append(lines, "Avg "+model+" | "+strings.Join(parts, " | "))
	}
	return stylize(strings.Join(lines, "\n"), noColor, lipgloss.Color("242"))
}

// renderDetail renders the expanded row: full question, ground truth,
// answers and, when enabled, contexts.
func renderDetail(state view.State) string {
	if state.Expanded == nil {
		return ""
	}
	aligned := state.Aligned()
	if state.Expanded.Row < 0 || state.Expanded.Row >= len(aligned) {
		return ""
	}
	row := aligned[state.Expanded.Row]
	var b strings.Builder
	b.WriteString("Question: " + row.Question.Text())
	if gt := row.GroundTruth.Text(); gt != "" {
		b.WriteString("\nGround truth: " + gt)
	}
	for _, model := range row.Models() {
		entry, _ := row.Entry(model)
		answer := metrics.Placeholder
		if entry.HasAnswer() {
			answer = entry.Answer.Text()
		}
		b.WriteString("\n" + model + ": " + answer)
	}
	if state.ShowContexts {
		contexts, _ := eval.NewRow(eval.JSONValue{}).With(eval.FieldContexts, row.Contexts).Contexts()
		for i, passage := range contexts {
			b.WriteString("\nContext " + fmtInt(i+1) + ": " + passage)
		}
	}
	return b.String()
}

// renderFooter renders the status line and key help.
func renderFooter(state view.State, noColor bool) string {
	var status string
	switch {
	case state.Error != "":
		status = stylize("Error: "+state.Error, noColor, lipgloss.Color("196"))
	case state.Busy(view.ActionEvaluate) || state.Busy(view.ActionCompare):
		status = stylize("Evaluating...", noColor, lipgloss.Color("39"))
	case state.Notice != "":
		status = stylize(state.Notice, noColor, lipgloss.Color("42"))
	}
	help := stylize(helpLine, noColor, lipgloss.Color("240"))
	if status == "" {
		return help
	}
	return status + "\n" + help
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func fmtInt(value int) string {
	return strconv.Itoa(value)
}
