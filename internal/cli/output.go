package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"ragdesk/internal/metrics"
	"ragdesk/internal/view"
)

const questionWidth = 60

// renderTable draws a bordered plain-text table.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		Render()
}

// printEvaluation writes the aligned rows and the averages of the settled
// snapshot.
func printEvaluation(w io.Writer, state view.State, shown []string) {
	snap := state.Snapshot
	aligned := state.Aligned()
	label := "Model"
	if len(snap.Models) > 1 {
		label = "Models"
	}
	fmt.Fprintf(w, "Category: %s | %s: %s | Rows: %d\n",
		categoryLabel(snap.Category), label, strings.Join(snap.Models, ", "), len(aligned))

	compare := len(snap.Models) > 1
	headers := []string{"Q#", "Question"}
	for _, model := range snap.Models {
		for _, metric := range shown {
			if compare {
				headers = append(headers, model+" "+metrics.Label(metric))
			} else {
				headers = append(headers, metrics.Label(metric))
			}
		}
	}
	rows := make([][]string, 0, len(aligned))
	for i, row := range aligned {
		id := row.ID.String()
		if row.ID.IsZero() {
			id = strconv.Itoa(i + 1)
		}
		cells := []string{id, truncate(row.Question.Text(), questionWidth)}
		for _, model := range snap.Models {
			entry, ok := row.Entry(model)
			for _, metric := range shown {
				if !ok {
					cells = append(cells, metrics.Placeholder)
					continue
				}
				cells = append(cells, metrics.FormatScaled(metrics.Resolve(entry.Row, metric), state.Scale))
			}
		}
		rows = append(rows, cells)
	}
	fmt.Fprintln(w, renderTable(headers, rows))

	fmt.Fprintln(w, "Averages")
	averages := metrics.PerModelWithCount(snap.Results, snap.Models, shown)
	avgHeaders := []string{"Model"}
	for _, metric := range shown {
		avgHeaders = append(avgHeaders, metrics.Label(metric))
	}
	avgRows := make([][]string, 0, len(snap.Models))
	for _, model := range snap.Models {
		cells := []string{model}
		for _, metric := range shown {
			cells = append(cells, averageText(averages[model][metric], state.Scale))
		}
		avgRows = append(avgRows, cells)
	}
	fmt.Fprintln(w, renderTable(avgHeaders, avgRows))
}

// averageText renders a mean with its contributing row count.
func averageText(avg metrics.Average, scale metrics.Scale) string {
	if avg.Count == 0 {
		return metrics.Placeholder
	}
	return fmt.Sprintf("%s (n=%d)", metrics.FormatScaled(metrics.Number(avg.Mean), scale), avg.Count)
}

func categoryLabel(key string) string {
	if cat, ok := metrics.CategoryByKey(key); ok {
		return cat.Label
	}
	return key
}

// truncate shortens text to limit runes, ending in "...".
func truncate(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if limit <= 3 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
