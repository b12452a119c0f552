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

// Package odm computes origin-destination matrices: it splits a large
// origin-destination grid into batches that fit the Distance Matrix API
// limits, issues one call per batch, and flattens the replies into a table
// with one row per pair.
package odm

import (
	"context"
	"fmt"

	"github.com/odmatrix/odmatrix/gmaps"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

// Point is one origin or destination: a location with a stable identifier
// that survives into the output table.
type Point struct {
	ID  string
	Loc gmaps.Location
}

// MakeIDs returns n unique zero-padded identifiers of the form
// prefix<number>, e.g. MakeIDs(3, "row_") = [row_0 row_1 row_2] and
// MakeIDs(11, "s") = [s00 .. s10].
func MakeIDs(n int, prefix string) []string {
	if n <= 0 {
		return nil
	}
	digits := 1
	for m := n - 1; m >= 10; m /= 10 {
		digits++
	}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%0*d", prefix, digits, i)
	}
	return ids
}

// Limits cap the size of a single API request.
type Limits struct {
	MaxElements     int // origins x destinations per request
	MaxOrigins      int
	MaxDestinations int
}

// DefaultLimits returns the documented Distance Matrix API caps.
func DefaultLimits() Limits {
	return Limits{MaxElements: 100, MaxOrigins: 25, MaxDestinations: 25}
}

// norm fills in defaults for unset fields.
func (l Limits) norm() Limits {
	d := DefaultLimits()
	if l.MaxElements == 0 {
		l.MaxElements = d.MaxElements
	}
	if l.MaxOrigins == 0 {
		l.MaxOrigins = d.MaxOrigins
	}
	if l.MaxDestinations == 0 {
		l.MaxDestinations = d.MaxDestinations
	}
	return l
}

func (l Limits) validate() error {
	if l.MaxElements < 1 || l.MaxOrigins < 1 || l.MaxDestinations < 1 {
		return errors.Reason("limits must be positive: %+v", l)
	}
	return nil
}

// Batch is one rectangular tile of the origin-destination grid. The offsets
// locate the tile within the original (unbatched) lists.
type Batch struct {
	OriginOffset      int
	DestinationOffset int
	Origins           []Point
	Destinations      []Point
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Tile deterministically partitions the origin-destination grid into batches
// respecting the limits. Batches are ordered origin-major, and together cover
// the full cartesian product of the inputs exactly once.
func Tile(origins, destinations []Point, limits Limits) ([]Batch, error) {
	if len(origins) == 0 {
		return nil, errors.Reason("no origins")
	}
	if len(destinations) == 0 {
		return nil, errors.Reason("no destinations")
	}
	limits = limits.norm()
	if err := limits.validate(); err != nil {
		return nil, err
	}
	oChunk := min3(len(origins), limits.MaxOrigins, limits.MaxElements)
	dChunk := min3(len(destinations), limits.MaxDestinations,
		limits.MaxElements/oChunk)

	var batches []Batch
	for i := 0; i < len(origins); i += oChunk {
		oEnd := i + oChunk
		if oEnd > len(origins) {
			oEnd = len(origins)
		}
		for j := 0; j < len(destinations); j += dChunk {
			dEnd := j + dChunk
			if dEnd > len(destinations) {
				dEnd = len(destinations)
			}
			batches = append(batches, Batch{
				OriginOffset:      i,
				DestinationOffset: j,
				Origins:           origins[i:oEnd],
				Destinations:      destinations[j:dEnd],
			})
		}
	}
	return batches, nil
}

// Submitter issues one distance-matrix call for one batch. It is the only
// capability the job runner needs from the remote client, so tests can
// substitute a deterministic stand-in.
type Submitter interface {
	Submit(ctx context.Context, origins, destinations []gmaps.Location) (*gmaps.Response, error)
}

// APISubmitter submits batches through the gmaps client in the context,
// applying the options of the Request template to every call.
type APISubmitter struct {
	Request *gmaps.Request // optional; nil means default options
}

var _ Submitter = APISubmitter{}

// Submit implements Submitter.
func (s APISubmitter) Submit(ctx context.Context, origins, destinations []gmaps.Location) (*gmaps.Response, error) {
	r := s.Request
	if r == nil {
		r = gmaps.NewRequest()
	}
	return r.Origins(origins...).Destinations(destinations...).Fetch(ctx)
}

// Job computes one origin-destination matrix through a Submitter.
type Job struct {
	submitter Submitter
	limits    Limits
}

// NewJob creates a job. Zero fields in limits assume the API defaults.
func NewJob(s Submitter, limits Limits) *Job {
	return &Job{submitter: s, limits: limits.norm()}
}

func locations(points []Point) []gmaps.Location {
	ls := make([]gmaps.Location, len(points))
	for i, p := range points {
		ls[i] = p.Loc
	}
	return ls
}

// Run tiles the grid, issues one call per batch strictly in batch order, and
// flattens the replies into rows ordered origin-major, destination-minor
// following the input order. Any batch failure aborts the whole job; no
// partial result is returned, and no retries are attempted.
func (j *Job) Run(ctx context.Context, origins, destinations []Point) ([]ResultRow, error) {
	batches, err := Tile(origins, destinations, j.limits)
	if err != nil {
		return nil, errors.Annotate(err, "failed to tile the grid")
	}
	responses := make([]*gmaps.Response, len(batches))
	for i, b := range batches {
		resp, err := j.submitter.Submit(ctx, locations(b.Origins), locations(b.Destinations))
		if err != nil {
			return nil, errors.Annotate(err, "batch %d of %d failed",
				i+1, len(batches))
		}
		logging.Infof(ctx, "distance matrix: batch %d of %d done (%dx%d elements)",
			i+1, len(batches), len(b.Origins), len(b.Destinations))
		responses[i] = resp
	}
	rows, err := Flatten(batches, responses, len(origins), len(destinations))
	if err != nil {
		return nil, errors.Annotate(err, "failed to flatten responses")
	}
	return rows, nil
}
