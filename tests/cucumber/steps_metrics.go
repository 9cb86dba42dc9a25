//go:build cucumber

package cucumber

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"ragdesk/internal/eval"
	"ragdesk/internal/metrics"
)

const tolerance = 1e-9

func (s *featureState) theResults(doc *godog.DocString) error {
	var results eval.ResultSet
	if err := json.Unmarshal([]byte(doc.Content), &results); err != nil {
		return fmt.Errorf("decode results: %w", err)
	}
	s.results = results
	return nil
}

func (s *featureState) theRows(doc *godog.DocString) error {
	value, err := eval.ParseJSONValue([]byte(doc.Content))
	if err != nil {
		return fmt.Errorf("decode rows: %w", err)
	}
	s.rows = eval.RowsFromValue(value)
	return nil
}

func (s *featureState) theRow(raw string) error {
	row, err := eval.ParseRow([]byte(raw))
	if err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	s.row = row
	return nil
}

func (s *featureState) iAlignTheResults() error {
	s.aligned = metrics.Align(s.results)
	return nil
}

func (s *featureState) iResolveTheMetric(metric string) error {
	s.resolved = metrics.Resolve(s.row, metric)
	return nil
}

func (s *featureState) iAverageTheMetrics(list string) error {
	s.names = splitNames(list)
	s.averages = metrics.AveragesWithCount(s.rows, s.names)
	return nil
}

func (s *featureState) thereAreAlignedRows(count int) error {
	if len(s.aligned) != count {
		return fmt.Errorf("expected %d aligned rows, got %d", count, len(s.aligned))
	}
	return nil
}

func (s *featureState) theAlignedRowHasModels(id, list string) error {
	for _, row := range s.aligned {
		if row.ID.String() != id {
			continue
		}
		got := row.Models()
		want := splitNames(list)
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			return fmt.Errorf("row %s: expected models %v, got %v", id, want, got)
		}
		return nil
	}
	return fmt.Errorf("no aligned row with id %s", id)
}

func (s *featureState) theResolvedValueIs(expected string) error {
	if expected == "missing" {
		if !s.resolved.IsMissing() {
			return fmt.Errorf("expected a missing value, got %v", s.resolved)
		}
		return nil
	}
	want, err := strconv.ParseFloat(expected, 64)
	if err != nil {
		return err
	}
	got, ok := s.resolved.Float()
	if !ok || math.Abs(got-want) > tolerance {
		return fmt.Errorf("expected %v, got %v (ok=%v)", want, got, ok)
	}
	return nil
}

func (s *featureState) theAverageIs(metric, mean string, count int) error {
	want, err := strconv.ParseFloat(mean, 64)
	if err != nil {
		return err
	}
	got, ok := s.averages[metric]
	if !ok {
		return fmt.Errorf("no average for %q", metric)
	}
	if got.Count != count || math.Abs(got.Mean-want) > tolerance {
		return fmt.Errorf("expected %v over %d rows, got %+v", want, count, got)
	}
	return nil
}

func (s *featureState) reverseOrderGivesSameAverages() error {
	reversed := slices.Clone(s.rows)
	slices.Reverse(reversed)
	again := metrics.AveragesWithCount(reversed, s.names)
	for _, name := range s.names {
		a, b := s.averages[name], again[name]
		if a.Count != b.Count || math.Abs(a.Mean-b.Mean) > tolerance {
			return fmt.Errorf("%s: %+v forward, %+v reversed", name, a, b)
		}
	}
	return nil
}

func splitNames(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
