package report

import (
	"context"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"ragdesk/internal/eval"
	"ragdesk/internal/metrics"
)

// Table kinds select the class of the rendered table.
const (
	TableSingle   = "single"
	TableCompare  = "compare"
	TableAverages = "averages"
)

// Cell is one rendered table cell. Band names the colour bucket; empty leaves
// the cell unstyled.
type Cell struct {
	Text string
	Band string
}

// Table is the precomputed content of one HTML table.
type Table struct {
	Kind    string
	Headers []string
	Rows    [][]Cell
}

type reportView struct {
	Title    string
	Meta     string
	Body     Table
	Averages Table
}

// RenderReportHTML renders the report page into a string.
func RenderReportHTML(ctx context.Context, input Input) (string, error) {
	var builder strings.Builder
	if err := ReportPage(input).Render(ctx, &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// ReportPage is the full HTML document for input.
func ReportPage(input Input) templ.Component {
	v := buildView(normalize(input))
	return Page(v.Title, reportBody(v))
}

func buildView(input Input) reportView {
	v := reportView{
		Title:    input.Title,
		Meta:     "Category: " + input.Category + " | Models: " + strings.Join(input.Models, ", "),
		Averages: averagesTable(input),
	}
	if !input.GeneratedAt.IsZero() {
		v.Meta += " | Generated: " + input.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")
	}
	if input.Mode == "compare" {
		v.Body = compareTable(input)
	} else {
		v.Body = singleTable(input)
	}
	return v
}

// singleTable lists one model's rows with one column per metric.
func singleTable(input Input) Table {
	model := ""
	if len(input.Models) > 0 {
		model = input.Models[0]
	}
	table := Table{Kind: TableSingle}
	for _, col := range metrics.StaticColumns() {
		table.Headers = append(table.Headers, col.Label)
	}
	if input.ShowContexts {
		table.Headers = append(table.Headers, "Contexts")
	}
	for _, metric := range input.Metrics {
		table.Headers = append(table.Headers, metrics.Label(metric))
	}
	for _, row := range input.Results.Rows(model) {
		var cells []Cell
		for _, col := range metrics.StaticColumns() {
			value, _ := row.Get(col.Key)
			cells = append(cells, Cell{Text: value.Text()})
		}
		if input.ShowContexts {
			contexts, _ := row.Contexts()
			cells = append(cells, Cell{Text: strings.Join(contexts, "\n---\n")})
		}
		for _, metric := range input.Metrics {
			cells = append(cells, scoreCell(metrics.Resolve(row, metric), input.Scale))
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// compareTable lists aligned rows with an answer and metric columns per model.
func compareTable(input Input) Table {
	table := Table{Kind: TableCompare, Headers: []string{"Q#", "Question", "Ground Truth"}}
	if input.ShowContexts {
		table.Headers = append(table.Headers, "Contexts")
	}
	for _, model := range input.Models {
		table.Headers = append(table.Headers, model+" answer")
		for _, metric := range input.Metrics {
			table.Headers = append(table.Headers, model+" "+metrics.Label(metric))
		}
	}
	for _, row := range metrics.Align(input.Results) {
		cells := []Cell{{Text: row.ID.String()}, {Text: row.Question.Text()}, {Text: row.GroundTruth.Text()}}
		if input.ShowContexts {
			cells = append(cells, Cell{Text: contextsText(row.Contexts)})
		}
		for _, model := range input.Models {
			entry, ok := row.Entry(model)
			if !ok {
				for i := 0; i <= len(input.Metrics); i++ {
					cells = append(cells, Cell{Text: metrics.Placeholder})
				}
				continue
			}
			answer := metrics.Placeholder
			if entry.HasAnswer() {
				answer = entry.Answer.Text()
			}
			cells = append(cells, Cell{Text: answer})
			for _, metric := range input.Metrics {
				cells = append(cells, scoreCell(metrics.Resolve(entry.Row, metric), input.Scale))
			}
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// averagesTable lists per-model means with contributing counts.
func averagesTable(input Input) Table {
	averages := metrics.PerModelWithCount(input.Results, input.Models, input.Metrics)
	table := Table{Kind: TableAverages, Headers: []string{"Model"}}
	for _, metric := range input.Metrics {
		table.Headers = append(table.Headers, metrics.Label(metric))
	}
	for _, model := range input.Models {
		cells := []Cell{{Text: model}}
		for _, metric := range input.Metrics {
			avg := averages[model][metric]
			cell := Cell{Text: formatAverage(avg, input.Scale)}
			if avg.Count > 0 {
				cell.Band = bandName(metrics.Number(avg.Mean))
			}
			cells = append(cells, cell)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

func scoreCell(value metrics.Value, scale metrics.Scale) Cell {
	return Cell{Text: metrics.FormatScaled(value, scale), Band: bandName(value)}
}

func contextsText(value eval.JSONValue) string {
	row := eval.NewRow(eval.JSONValue{}).With(eval.FieldContexts, value)
	contexts, _ := row.Contexts()
	return strings.Join(contexts, "\n---\n")
}

const baseCSS = "table{border-collapse:collapse;margin:1em 0}" +
	"td,th{border:1px solid #ccc;padding:4px 8px;vertical-align:top;white-space:pre-wrap}" +
	".meta{color:#666}"

// stylesheet emits the page styles, including one background rule per band.
func stylesheet() templ.Component {
	var css strings.Builder
	css.WriteString("<style>")
	css.WriteString(baseCSS)
	for _, band := range []metrics.Band{metrics.BandGood, metrics.BandFair, metrics.BandPoor} {
		css.WriteString("td[data-band=" + strconv.Quote(band.String()) + "]{background:" + band.Color() + "}")
	}
	css.WriteString("</style>")
	return templ.Raw(css.String())
}
