// Copyright 2026 OD Matrix

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package odm

import (
	"math"
	"sort"

	"github.com/odmatrix/odmatrix/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the numeric metrics of a result table. Statistics are
// computed over resolved pairs only and are NaN when no pair resolved.
type Summary struct {
	Pairs          int // total origin-destination pairs
	Resolved       int // pairs with a numeric distance
	DistanceMean   float64
	DistanceMedian float64
	DistanceMax    float64
	DurationMean   float64
	DurationMedian float64
	DurationMax    float64
}

// metricStats computes mean, median and max of xs, sorting xs in place.
func metricStats(xs []float64) (mean, median, max float64) {
	if len(xs) == 0 {
		nan := math.NaN()
		return nan, nan, nan
	}
	sort.Float64s(xs)
	mean = stat.Mean(xs, nil)
	median = stat.Quantile(0.5, stat.Empirical, xs, nil)
	max = floats.Max(xs)
	return mean, median, max
}

// Summarize computes summary statistics of the result rows.
func Summarize(rows []ResultRow) Summary {
	var dists, durs []float64
	for _, r := range rows {
		if !math.IsNaN(r.DistanceMeters) {
			dists = append(dists, r.DistanceMeters)
		}
		if !math.IsNaN(r.DurationSeconds) {
			durs = append(durs, r.DurationSeconds)
		}
	}
	s := Summary{Pairs: len(rows), Resolved: len(dists)}
	s.DistanceMean, s.DistanceMedian, s.DistanceMax = metricStats(dists)
	s.DurationMean, s.DurationMedian, s.DurationMax = metricStats(durs)
	return s
}

// CSV implements table.Row.
func (s Summary) CSV() []string {
	return []string{
		formatMetric(float64(s.Pairs)),
		formatMetric(float64(s.Resolved)),
		formatMetric(s.DistanceMean),
		formatMetric(s.DistanceMedian),
		formatMetric(s.DistanceMax),
		formatMetric(s.DurationMean),
		formatMetric(s.DurationMedian),
		formatMetric(s.DurationMax),
	}
}

// Table renders the summary as a single-row table.
func (s Summary) Table() *table.Table {
	t := table.NewTable(
		"pairs", "resolved",
		"distance_mean", "distance_median", "distance_max",
		"duration_mean", "duration_median", "duration_max")
	t.AddRow(s)
	return t
}
