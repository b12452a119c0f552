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
	"strconv"

	"github.com/odmatrix/odmatrix/gmaps"
	"github.com/odmatrix/odmatrix/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
)

// ResultRow is one flattened origin-destination pair. Numeric metrics are NaN
// when the pair has no result: a failed per-pair status, or a field absent
// from the response. NaN deliberately differs from a legitimate zero.
type ResultRow struct {
	OriginID               string
	OriginAddress          string
	DestinationID          string
	DestinationAddress     string
	DistanceMeters         float64
	DurationSeconds        float64
	TrafficDurationSeconds float64
	Status                 string
}

// Header returns the column names matching ResultRow.CSV().
func Header() []string {
	return []string{
		"origin_id",
		"origin_address",
		"destination_id",
		"destination_address",
		"distance",
		"duration",
		"duration_in_traffic",
		"status",
	}
}

func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CSV implements table.Row. NaN metrics render as empty cells.
func (r ResultRow) CSV() []string {
	return []string{
		r.OriginID,
		r.OriginAddress,
		r.DestinationID,
		r.DestinationAddress,
		formatMetric(r.DistanceMeters),
		formatMetric(r.DurationSeconds),
		formatMetric(r.TrafficDurationSeconds),
		r.Status,
	}
}

// ToTable wraps result rows into a printable table.
func ToTable(rows []ResultRow) *table.Table {
	t := table.NewTable(Header()...)
	for _, r := range rows {
		t.AddRow(r)
	}
	return t
}

// pairRow converts one response element into a result row.
func pairRow(b Batch, resp *gmaps.Response, oi, di int) ResultRow {
	el := resp.Rows[oi].Elements[di]
	row := ResultRow{
		OriginID:               b.Origins[oi].ID,
		DestinationID:          b.Destinations[di].ID,
		DistanceMeters:         math.NaN(),
		DurationSeconds:        math.NaN(),
		TrafficDurationSeconds: math.NaN(),
		Status:                 el.Status,
	}
	// Addresses are informational and may be absent from the response.
	if oi < len(resp.OriginAddresses) {
		row.OriginAddress = resp.OriginAddresses[oi]
	}
	if di < len(resp.DestinationAddresses) {
		row.DestinationAddress = resp.DestinationAddresses[di]
	}
	if el.Status != gmaps.StatusOK {
		return row
	}
	if el.Distance != nil {
		row.DistanceMeters = el.Distance.Value
	}
	if el.Duration != nil {
		row.DurationSeconds = el.Duration.Value
	}
	if el.DurationInTraffic != nil {
		row.TrafficDurationSeconds = el.DurationInTraffic.Value
	}
	return row
}

type batchResponse struct {
	batch Batch
	resp  *gmaps.Response
}

// checkCoverage verifies that each response matches its batch dimensions and
// that the batches cover the full m x n grid exactly once.
func checkCoverage(batches []Batch, responses []*gmaps.Response, m, n int) error {
	if len(batches) != len(responses) {
		return errors.Reason("%d batches but %d responses",
			len(batches), len(responses))
	}
	seen := make([]bool, m*n)
	for k, b := range batches {
		resp := responses[k]
		if resp == nil {
			return errors.Reason("batch %d has no response", k)
		}
		if len(resp.Rows) != len(b.Origins) {
			return errors.Reason("batch %d: response has %d rows, expected %d",
				k, len(resp.Rows), len(b.Origins))
		}
		for oi, row := range resp.Rows {
			if len(row.Elements) != len(b.Destinations) {
				return errors.Reason(
					"batch %d: row %d has %d elements, expected %d",
					k, oi, len(row.Elements), len(b.Destinations))
			}
		}
		for oi := range b.Origins {
			for di := range b.Destinations {
				o := b.OriginOffset + oi
				d := b.DestinationOffset + di
				if o >= m || d >= n {
					return errors.Reason(
						"batch %d: pair (%d, %d) is outside the %dx%d grid",
						k, o, d, m, n)
				}
				if seen[o*n+d] {
					return errors.Reason(
						"batch %d: pair (%d, %d) is covered more than once",
						k, o, d)
				}
				seen[o*n+d] = true
			}
		}
	}
	for i, ok := range seen {
		if !ok {
			return errors.Reason("pair (%d, %d) is not covered by any batch",
				i/n, i%n)
		}
	}
	return nil
}

// Flatten converts the responses of an m x n grid job into rows ordered
// origin-major, destination-minor following the original input order,
// regardless of how the grid was tiled. It requires the batch each response
// came from to place the rows correctly.
func Flatten(batches []Batch, responses []*gmaps.Response, m, n int) ([]ResultRow, error) {
	if err := checkCoverage(batches, responses, m, n); err != nil {
		return nil, errors.Annotate(err, "invalid batch responses")
	}
	pairs := make([]batchResponse, len(batches))
	for i, b := range batches {
		pairs[i] = batchResponse{batch: b, resp: responses[i]}
	}
	rows := iterator.Reduce[batchResponse, []ResultRow](
		iterator.FromSlice(pairs), make([]ResultRow, m*n),
		func(br batchResponse, rows []ResultRow) []ResultRow {
			b := br.batch
			for oi := range b.Origins {
				for di := range b.Destinations {
					idx := (b.OriginOffset+oi)*n + b.DestinationOffset + di
					rows[idx] = pairRow(b, br.resp, oi, di)
				}
			}
			return rows
		})
	return rows, nil
}
