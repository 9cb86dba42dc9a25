package live

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"ragdesk/internal/metrics"
	"ragdesk/internal/view"
)

const (
	defaultWidth  = 100
	idColumnWidth = 5
	metricWidth   = 14
	minQuestion   = 20
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// metricColumns lists the (model, metric) pairs shown as columns.
func metricColumns(state view.State) [][2]string {
	shown := state.ShownMetrics(state.Category)
	models := snapshotModels(state)
	if state.Mode != view.ModeCompare && len(models) > 1 {
		models = models[:1]
	}
	out := make([][2]string, 0, len(models)*len(shown))
	for _, model := range models {
		for _, metric := range shown {
			out = append(out, [2]string{model, metric})
		}
	}
	return out
}

func snapshotModels(state view.State) []string {
	if state.Snapshot != nil && len(state.Snapshot.Models) > 0 {
		return state.Snapshot.Models
	}
	return state.Models
}

// columnsFor sizes the columns to width, giving the question the remainder.
func columnsFor(state view.State, width int) []table.Column {
	if width <= 0 {
		width = defaultWidth
	}
	pairs := metricColumns(state)
	question := width - idColumnWidth - len(pairs)*metricWidth - 2*(len(pairs)+2)
	question = max(question, minQuestion)
	cols := []table.Column{
		{Title: "Q#", Width: idColumnWidth},
		{Title: "Question", Width: question},
	}
	compare := state.Mode == view.ModeCompare
	for _, pair := range pairs {
		title := metrics.Label(pair[1])
		if compare {
			title = pair[0] + " " + title
		}
		cols = append(cols, table.Column{Title: title, Width: metricWidth})
	}
	return cols
}

// rowsForState converts the aligned snapshot into table rows.
func rowsForState(state view.State, questionWidth int, noColor bool) []table.Row {
	aligned := state.Aligned()
	pairs := metricColumns(state)
	rows := make([]table.Row, 0, len(aligned))
	for i, row := range aligned {
		id := row.ID.String()
		if row.ID.IsZero() {
			id = strconv.Itoa(i + 1)
		}
		cells := table.Row{id, formatQuestionText(row.Question.Text(), questionWidth)}
		for _, pair := range pairs {
			entry, ok := row.Entry(pair[0])
			if !ok {
				cells = append(cells, metrics.Placeholder)
				continue
			}
			cells = append(cells, formatValue(metrics.Resolve(entry.Row, pair[1]), state.Scale, noColor))
		}
		rows = append(rows, cells)
	}
	return rows
}
