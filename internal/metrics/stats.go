package metrics

import (
	"math"
	"sort"

	"ragdesk/internal/eval"
)

// Pearson returns the population correlation of xs and ys over their common
// length. Fewer than two points or zero variance yields 0.
func Pearson(xs, ys []float64) float64 {
	n := min(len(xs), len(ys))
	if n < 2 {
		return 0
	}
	var sx, sy, sxx, syy, sxy float64
	for i := 0; i < n; i++ {
		x, y := xs[i], ys[i]
		sx += x
		sy += y
		sxx += x * x
		syy += y * y
		sxy += x * y
	}
	fn := float64(n)
	cov := sxy/fn - (sx/fn)*(sy/fn)
	vx := sxx/fn - (sx/fn)*(sx/fn)
	vy := syy/fn - (sy/fn)*(sy/fn)
	denom := math.Sqrt(math.Max(vx, 0)) * math.Sqrt(math.Max(vy, 0))
	if denom == 0 {
		return 0
	}
	return cov / denom
}

// CorrelationMatrix returns the square matrix of pairwise correlations between
// metrics over rows. Each pair only uses rows where both metrics resolve.
func CorrelationMatrix(rows []eval.Row, metricNames []string) [][]float64 {
	resolved := make([][]Value, len(metricNames))
	for i, metric := range metricNames {
		resolved[i] = make([]Value, len(rows))
		for j, row := range rows {
			resolved[i][j] = Resolve(row, metric)
		}
	}
	matrix := make([][]float64, len(metricNames))
	for i := range metricNames {
		matrix[i] = make([]float64, len(metricNames))
		for j := range metricNames {
			xs, ys := pairwise(resolved[i], resolved[j])
			matrix[i][j] = Pearson(xs, ys)
		}
	}
	return matrix
}

func pairwise(a, b []Value) ([]float64, []float64) {
	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(a))
	for k := range a {
		x, okX := a[k].Float()
		y, okY := b[k].Float()
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

// ScaleMax returns the largest resolved value for the selected models and
// metrics, used as the axis domain on absolute scale. It is 1 when nothing
// positive resolves.
func ScaleMax(results eval.ResultSet, models, metricNames []string) float64 {
	maxValue := 0.0
	for _, model := range models {
		for _, row := range results.Rows(model) {
			for _, metric := range metricNames {
				if n, ok := Resolve(row, metric).Float(); ok && n > maxValue {
					maxValue = n
				}
			}
		}
	}
	if maxValue <= 0 {
		return 1
	}
	return maxValue
}

// DrilldownRow is one question in the per-question matrix.
type DrilldownRow struct {
	ID       eval.ID                     `json:"id"`
	Question string                      `json:"question"`
	Cells    map[string]map[string]Value `json:"-"`
}

// Cell returns the value for metric and model.
func (d DrilldownRow) Cell(metric, model string) Value {
	byModel, ok := d.Cells[metric]
	if !ok {
		return Missing()
	}
	value, ok := byModel[model]
	if !ok {
		return Missing()
	}
	return value
}

// Drilldown builds the per-question matrix (metric → model → value) for the
// selected models. Rows without an id take their 1-based position. Question
// text falls back to user_input, then "Q<id>". Ids sort numerically when both
// parse as numbers, otherwise lexically.
func Drilldown(results eval.ResultSet, models, metricNames []string) []DrilldownRow {
	index := map[eval.ID]int{}
	var out []DrilldownRow
	for _, model := range models {
		for pos, row := range results.Rows(model) {
			id := row.ID()
			if id.IsZero() {
				id = eval.NumberID(float64(pos + 1))
			}
			i, seen := index[id]
			if !seen {
				i = len(out)
				index[id] = i
				out = append(out, DrilldownRow{
					ID:       id,
					Question: questionText(row, id),
					Cells:    map[string]map[string]Value{},
				})
			}
			for _, metric := range metricNames {
				if out[i].Cells[metric] == nil {
					out[i].Cells[metric] = map[string]Value{}
				}
				out[i].Cells[metric][model] = Resolve(row, metric)
			}
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return lessID(out[a].ID, out[b].ID)
	})
	return out
}

func questionText(row eval.Row, id eval.ID) string {
	if q, ok := row.Question(); ok && q != "" {
		return q
	}
	if value, ok := row.Get(eval.FieldUserInput); ok && value.Text() != "" {
		return value.Text()
	}
	return "Q" + id.String()
}

func lessID(a, b eval.ID) bool {
	na, okA := a.Number()
	nb, okB := b.Number()
	if okA && okB {
		return na < nb
	}
	return a.String() < b.String()
}

// Round rounds n to the given number of decimals.
func Round(n float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(n*factor) / factor
}
