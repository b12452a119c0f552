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

// Package geo reads origin and destination points from CSV files. It is the
// only input format the library understands; anything tabular can be exported
// to it.
package geo

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odmatrix/odmatrix/gmaps"
	"github.com/odmatrix/odmatrix/odm"
	"github.com/stockparfait/errors"
)

// PointColumns sets the custom CSV headers for point rows. A row needs either
// both coordinate columns or an address column; coordinates win when both are
// present. Points without an ID column receive generated identifiers.
type PointColumns struct {
	ID       string `toml:"id"`
	Lat      string `toml:"lat"`
	Lng      string `toml:"lng"`
	Address  string `toml:"address"`
	IDPrefix string `toml:"id_prefix"` // prefix for generated IDs
}

// DefaultPointColumns returns the default header names.
func DefaultPointColumns() PointColumns {
	return PointColumns{
		ID:       "id",
		Lat:      "lat",
		Lng:      "lng",
		Address:  "address",
		IDPrefix: "row_",
	}
}

// norm fills in defaults for unset fields.
func (c PointColumns) norm() PointColumns {
	d := DefaultPointColumns()
	if c.ID == "" {
		c.ID = d.ID
	}
	if c.Lat == "" {
		c.Lat = d.Lat
	}
	if c.Lng == "" {
		c.Lng = d.Lng
	}
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.IDPrefix == "" {
		c.IDPrefix = d.IDPrefix
	}
	return c
}

// mapColumns maps the i'th header column to the j'th configured column:
// 0=ID, 1=Lat, 2=Lng, 3=Address. Unrecognized headers map to -1.
func (c PointColumns) mapColumns(header []string) []int {
	cols := []string{c.ID, c.Lat, c.Lng, c.Address}
	m := make([]int, len(header))
	for i, h := range header {
		m[i] = -1
		for j, n := range cols {
			if h == n {
				m[i] = j
				break
			}
		}
	}
	return m
}

func has(colMap []int, col int) bool {
	for _, j := range colMap {
		if j == col {
			return true
		}
	}
	return false
}

// ReadPoints reads CSV point rows from r. The first row must be a header
// matching cols (zero-value fields assume the defaults).
func ReadPoints(r io.Reader, cols PointColumns) ([]odm.Point, error) {
	cols = cols.norm()
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Annotate(err, "failed to read CSV header")
	}
	colMap := cols.mapColumns(header)
	hasCoords := has(colMap, 1) && has(colMap, 2)
	if !hasCoords && !has(colMap, 3) {
		return nil, errors.Reason(
			"CSV header %v has neither '%s'+'%s' nor '%s' columns",
			header, cols.Lat, cols.Lng, cols.Address)
	}

	var points []odm.Point
	hasID := has(colMap, 0)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Annotate(err, "failed to read CSV row")
		}
		var p odm.Point
		var lat, lng float64
		var latOK, lngOK bool
		var address string
		for i, cell := range row {
			if i >= len(colMap) {
				break
			}
			switch colMap[i] {
			case 0:
				p.ID = cell
			case 1:
				if cell == "" {
					continue
				}
				if lat, err = strconv.ParseFloat(cell, 64); err != nil {
					return nil, errors.Annotate(err,
						"line %d: invalid latitude '%s'", line, cell)
				}
				latOK = true
			case 2:
				if cell == "" {
					continue
				}
				if lng, err = strconv.ParseFloat(cell, 64); err != nil {
					return nil, errors.Annotate(err,
						"line %d: invalid longitude '%s'", line, cell)
				}
				lngOK = true
			case 3:
				address = cell
			}
		}
		switch {
		case latOK && lngOK:
			p.Loc = gmaps.Coord(lat, lng)
		case address != "":
			p.Loc = gmaps.Place(address)
		default:
			return nil, errors.Reason(
				"line %d: point has neither coordinates nor an address", line)
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, errors.Reason("no points in CSV")
	}
	if !hasID {
		ids := odm.MakeIDs(len(points), cols.IDPrefix)
		for i := range points {
			points[i].ID = ids[i]
		}
	}
	return points, nil
}
