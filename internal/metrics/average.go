package metrics

import "ragdesk/internal/eval"

// Average is a metric mean together with the number of rows that contributed.
type Average struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// AveragesWithCount computes the mean of each metric over rows. Rows without
// a numeric value for a metric are excluded from both sum and count. A metric
// with no contributing rows has Mean 0 and Count 0.
func AveragesWithCount(rows []eval.Row, metricNames []string) map[string]Average {
	out := make(map[string]Average, len(metricNames))
	for _, metric := range metricNames {
		if _, seen := out[metric]; seen {
			continue
		}
		var sum float64
		count := 0
		for _, row := range rows {
			n, ok := Resolve(row, metric).Float()
			if !ok {
				continue
			}
			sum += n
			count++
		}
		avg := Average{Count: count}
		if count > 0 {
			avg.Mean = sum / float64(count)
		}
		out[metric] = avg
	}
	return out
}

// Averages computes the mean of each metric over rows. No data renders as 0;
// use AveragesWithCount to tell that apart from a real zero mean.
func Averages(rows []eval.Row, metricNames []string) map[string]float64 {
	withCount := AveragesWithCount(rows, metricNames)
	out := make(map[string]float64, len(withCount))
	for metric, avg := range withCount {
		out[metric] = avg.Mean
	}
	return out
}

// PerModel averages each listed model independently. Models absent from the
// result set yield all-zero averages.
func PerModel(results eval.ResultSet, models []string, metricNames []string) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(models))
	for _, model := range models {
		out[model] = Averages(results.Rows(model), metricNames)
	}
	return out
}

// PerModelWithCount is PerModel with contributing-row counts.
func PerModelWithCount(results eval.ResultSet, models []string, metricNames []string) map[string]map[string]Average {
	out := make(map[string]map[string]Average, len(models))
	for _, model := range models {
		out[model] = AveragesWithCount(results.Rows(model), metricNames)
	}
	return out
}

// EntryRows collects one model's entries from aligned rows, skipping rows
// where the model has no entry.
func EntryRows(aligned []AlignedRow, model string) []eval.Row {
	rows := make([]eval.Row, 0, len(aligned))
	for _, row := range aligned {
		if entry, ok := row.Entry(model); ok {
			rows = append(rows, entry.Row)
		}
	}
	return rows
}
