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

// Package gmaps is a minimal client for the Google Maps Distance Matrix API.
// It covers only the request shape and response fields needed to build
// origin-destination tables; everything else the API offers is ignored.
package gmaps

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"golang.org/x/exp/slices"
)

type contextKey int

const (
	clientContextKey contextKey = iota
)

// URL is the default base URL of the API. It may be overwritten in tests
// before creating a new client.
var URL = "https://maps.googleapis.com/maps/api"

// Client for querying the Distance Matrix API.
type Client struct {
	baseURL string // the base URL of the API
	apiKey  string // your very own secret key
}

// newClient creates a new client.
func newClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// GetClient extracts the Client from the context, if any.
func GetClient(ctx context.Context) *Client {
	c, ok := ctx.Value(clientContextKey).(*Client)
	if !ok {
		return nil
	}
	return c
}

// UseClient creates a new client based on the API key and injects it into the
// context.
func UseClient(ctx context.Context, apiKey string) context.Context {
	return context.WithValue(ctx, clientContextKey, newClient(URL, apiKey))
}

// Location is one end of a distance-matrix query: either a latitude/longitude
// pair or a named place (a free-form address or a place ID). A non-empty
// place takes precedence over the coordinates.
type Location struct {
	Lat   float64
	Lng   float64
	Place string
}

// Coord creates a coordinate Location.
func Coord(lat, lng float64) Location {
	return Location{Lat: lat, Lng: lng}
}

// Place creates a named-place Location.
func Place(s string) Location {
	return Location{Place: s}
}

// String renders the location in the API wire format: the place string, or
// "lat,lng". Note, that the API expects latitude first, the opposite of the
// common (x, y) = (lng, lat) order of geospatial tools.
func (l Location) String() string {
	if l.Place != "" {
		return l.Place
	}
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

// Mode of travel.
type Mode string

// Values of Mode.
const (
	ModeDriving   = Mode("driving")
	ModeWalking   = Mode("walking")
	ModeBicycling = Mode("bicycling")
	ModeTransit   = Mode("transit")
)

// Units for the human-readable metric texts in the response. Numeric values
// are always meters and seconds regardless of this setting.
type Units string

// Values of Units.
const (
	UnitsMetric   = Units("metric")
	UnitsImperial = Units("imperial")
)

// TrafficModel selects the duration-in-traffic estimate. It only takes effect
// together with a departure time.
type TrafficModel string

// Values of TrafficModel.
const (
	TrafficBestGuess   = TrafficModel("best_guess")
	TrafficPessimistic = TrafficModel("pessimistic")
	TrafficOptimistic  = TrafficModel("optimistic")
)

// requestOptions are options common to all matrix requests.
type requestOptions struct {
	Mode          Mode
	Units         Units
	Language      string
	Avoid         []string // road features to avoid: tolls, highways, ferries
	DepartureTime string   // "now" or Unix seconds
	TrafficModel  TrafficModel
}

// Request is a builder for one Distance Matrix API call.
type Request struct {
	origins      []Location
	destinations []Location
	options      requestOptions
}

// NewRequest creates a new empty request.
func NewRequest() *Request {
	return &Request{}
}

// Copy creates a deep copy of the request. It is primarily used in its
// builder methods.
func (r *Request) Copy() *Request {
	r2 := Request{
		origins:      slices.Clone(r.origins),
		destinations: slices.Clone(r.destinations),
		options:      r.options,
	}
	r2.options.Avoid = slices.Clone(r.options.Avoid)
	return &r2
}

// Origins sets the origin list. This and other builder methods always create
// a deep copy of the request, leaving the original intact.
func (r *Request) Origins(origins ...Location) *Request {
	r2 := r.Copy()
	r2.origins = slices.Clone(origins)
	return r2
}

// Destinations sets the destination list.
func (r *Request) Destinations(destinations ...Location) *Request {
	r2 := r.Copy()
	r2.destinations = slices.Clone(destinations)
	return r2
}

// Mode sets the travel mode.
func (r *Request) Mode(m Mode) *Request {
	r2 := r.Copy()
	r2.options.Mode = m
	return r2
}

// Units sets the display units.
func (r *Request) Units(u Units) *Request {
	r2 := r.Copy()
	r2.options.Units = u
	return r2
}

// Language sets the language of the returned addresses.
func (r *Request) Language(l string) *Request {
	r2 := r.Copy()
	r2.options.Language = l
	return r2
}

// Avoid adds road features to avoid: "tolls", "highways" or "ferries".
func (r *Request) Avoid(features ...string) *Request {
	r2 := r.Copy()
	r2.options.Avoid = append(r2.options.Avoid, features...)
	return r2
}

// DepartureTime sets the departure time, which enables duration-in-traffic
// estimates in the response.
func (r *Request) DepartureTime(t time.Time) *Request {
	r2 := r.Copy()
	r2.options.DepartureTime = strconv.FormatInt(t.Unix(), 10)
	return r2
}

// DepartNow sets the departure time to the current time of the request.
func (r *Request) DepartNow() *Request {
	r2 := r.Copy()
	r2.options.DepartureTime = "now"
	return r2
}

// TrafficModel sets the traffic model; requires a departure time.
func (r *Request) TrafficModel(m TrafficModel) *Request {
	r2 := r.Copy()
	r2.options.TrafficModel = m
	return r2
}

// NumOrigins returns the number of origins currently set.
func (r *Request) NumOrigins() int { return len(r.origins) }

// NumDestinations returns the number of destinations currently set.
func (r *Request) NumDestinations() int { return len(r.destinations) }

func joinLocations(ls []Location) string {
	strs := make([]string, len(ls))
	for i, l := range ls {
		strs[i] = l.String()
	}
	return strings.Join(strs, "|")
}

// Values returns the query values for the request. Each call creates a new
// object, so the caller is free to modify it without affecting the request.
func (r *Request) Values() url.Values {
	v := make(url.Values)
	if len(r.origins) > 0 {
		v["origins"] = []string{joinLocations(r.origins)}
	}
	if len(r.destinations) > 0 {
		v["destinations"] = []string{joinLocations(r.destinations)}
	}
	if r.options.Mode != "" {
		v["mode"] = []string{string(r.options.Mode)}
	}
	if r.options.Units != "" {
		v["units"] = []string{string(r.options.Units)}
	}
	if r.options.Language != "" {
		v["language"] = []string{r.options.Language}
	}
	if len(r.options.Avoid) > 0 {
		v["avoid"] = []string{strings.Join(r.options.Avoid, "|")}
	}
	if r.options.DepartureTime != "" {
		v["departure_time"] = []string{r.options.DepartureTime}
	}
	if r.options.TrafficModel != "" {
		v["traffic_model"] = []string{string(r.options.TrafficModel)}
	}
	return v
}

// StatusOK is the top-level and per-element success status.
const StatusOK = "OK"

// Per-element statuses other than OK. The numeric metrics are absent for all
// of these.
const (
	StatusNotFound               = "NOT_FOUND"
	StatusZeroResults            = "ZERO_RESULTS"
	StatusMaxRouteLengthExceeded = "MAX_ROUTE_LENGTH_EXCEEDED"
)

// Metric is a single distance or duration value. Value is meters for
// distances and seconds for durations; Text is its human-readable rendering.
type Metric struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

// Element holds the metrics for one origin-destination pair. The metric
// fields are pointers: an absent field is distinguishable from a zero value.
type Element struct {
	Status            string  `json:"status"`
	Distance          *Metric `json:"distance,omitempty"`
	Duration          *Metric `json:"duration,omitempty"`
	DurationInTraffic *Metric `json:"duration_in_traffic,omitempty"`
}

// Row holds the elements for one origin, in destination order.
type Row struct {
	Elements []Element `json:"elements"`
}

// Response is the decoded reply to one Distance Matrix API call.
type Response struct {
	Status               string   `json:"status"`
	ErrorMessage         string   `json:"error_message,omitempty"`
	OriginAddresses      []string `json:"origin_addresses"`
	DestinationAddresses []string `json:"destination_addresses"`
	Rows                 []Row    `json:"rows"`
}

// TestResponseJSON generates the JSON string in the format returned by the
// Distance Matrix API. For use in tests.
func TestResponseJSON(r *Response) (string, error) {
	bytes, err := json.Marshal(r)
	return string(bytes), err
}

// Fetch executes the request using the Client from the context and returns
// the decoded response. A non-OK top-level status or a response whose matrix
// dimensions do not match the request is an error.
func (r *Request) Fetch(ctx context.Context) (*Response, error) {
	client := GetClient(ctx)
	if client == nil {
		return nil, errors.Reason("Request.Fetch: no client in context")
	}
	if len(r.origins) == 0 || len(r.destinations) == 0 {
		return nil, errors.Reason(
			"Request.Fetch: requires at least one origin and one destination")
	}
	uri := client.baseURL + "/distancematrix/json"
	query := r.Values()
	query["key"] = []string{client.apiKey}

	var resp Response
	if err := fetch.FetchJSON(ctx, uri, &resp, query, nil); err != nil {
		return nil, errors.Annotate(err, "Request.Fetch: failed to fetch URL")
	}
	if resp.Status != StatusOK {
		msg := resp.Status
		if resp.ErrorMessage != "" {
			msg += ": " + resp.ErrorMessage
		}
		return nil, errors.Reason("distance matrix request failed: %s", msg)
	}
	if len(resp.Rows) != len(r.origins) {
		return nil, errors.Reason("response has %d rows, expected %d",
			len(resp.Rows), len(r.origins))
	}
	for i, row := range resp.Rows {
		if len(row.Elements) != len(r.destinations) {
			return nil, errors.Reason(
				"response row %d has %d elements, expected %d",
				i, len(row.Elements), len(r.destinations))
		}
	}
	return &resp, nil
}
