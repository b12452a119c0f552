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

package gmaps

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stockparfait/fetch"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func metric(v float64) *Metric {
	return &Metric{Value: v}
}

func TestGmaps(t *testing.T) {
	t.Parallel()

	Convey("Location renders in wire format", t, func() {
		So(Coord(1.5, -2.25).String(), ShouldEqual, "1.5,-2.25")
		So(Coord(-36.9, 174.78).String(), ShouldEqual, "-36.9,174.78")
		So(Place("Auckland Airport").String(), ShouldEqual, "Auckland Airport")
	})

	Convey("Request builds nondestructively", t, func() {
		Convey("Endpoints", func() {
			q := NewRequest()
			q2 := q.Origins(Coord(1, 2), Coord(3, 4)).Destinations(Place("work"))
			So(len(q.Values()), ShouldEqual, 0)
			So(q2.Values(), ShouldResemble, url.Values{
				"origins":      []string{"1,2|3,4"},
				"destinations": []string{"work"},
			})
			So(q2.NumOrigins(), ShouldEqual, 2)
			So(q2.NumDestinations(), ShouldEqual, 1)
		})

		Convey("Options", func() {
			q := NewRequest()
			q2 := q.Mode(ModeTransit)
			q3 := q.Units(UnitsImperial).Language("mi")
			q4 := q.Avoid("tolls", "ferries")
			q5 := q.DepartureTime(time.Unix(1700000000, 0)).TrafficModel(TrafficPessimistic)
			q6 := q.DepartNow()
			So(len(q.Values()), ShouldEqual, 0)
			So(q2.Values(), ShouldResemble, url.Values{"mode": []string{"transit"}})
			So(q3.Values(), ShouldResemble, url.Values{
				"units":    []string{"imperial"},
				"language": []string{"mi"},
			})
			So(q4.Values(), ShouldResemble, url.Values{
				"avoid": []string{"tolls|ferries"},
			})
			So(q5.Values(), ShouldResemble, url.Values{
				"departure_time": []string{"1700000000"},
				"traffic_model":  []string{"pessimistic"},
			})
			So(q6.Values(), ShouldResemble, url.Values{
				"departure_time": []string{"now"},
			})
		})
	})

	Convey("API calls work correctly", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()

		testKey := "testkey"
		ctx := fetch.UseClient(context.Background(), server.Client())
		URL = server.URL() + "/maps/api"
		ctx = UseClient(ctx, testKey)

		q := NewRequest().Origins(Coord(1, 2)).Destinations(Place("work"), Place("gym"))

		Convey("Fetch decodes a well-formed response", func() {
			page, err := TestResponseJSON(&Response{
				Status:               StatusOK,
				OriginAddresses:      []string{"1 Origin Rd"},
				DestinationAddresses: []string{"2 Work St", "3 Gym Ln"},
				Rows: []Row{{Elements: []Element{
					{
						Status:            StatusOK,
						Distance:          metric(1000),
						Duration:          metric(600),
						DurationInTraffic: metric(720),
					},
					{Status: StatusZeroResults},
				}}},
			})
			So(err, ShouldBeNil)
			server.ResponseBody = []string{page}

			resp, err := q.Fetch(ctx)
			So(err, ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/maps/api/distancematrix/json")
			expectedQuery := q.Values()
			expectedQuery["key"] = []string{testKey}
			So(server.RequestQuery, ShouldResemble, expectedQuery)
			So(len(resp.Rows), ShouldEqual, 1)
			So(resp.Rows[0].Elements[0].Distance.Value, ShouldEqual, 1000)
			So(resp.Rows[0].Elements[0].DurationInTraffic.Value, ShouldEqual, 720)
			So(resp.Rows[0].Elements[1].Distance, ShouldBeNil)
		})

		Convey("Fetch fails on a non-OK top-level status", func() {
			page, err := TestResponseJSON(&Response{
				Status:       "REQUEST_DENIED",
				ErrorMessage: "the provided API key is invalid",
			})
			So(err, ShouldBeNil)
			server.ResponseBody = []string{page}

			_, err = q.Fetch(ctx)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "REQUEST_DENIED")
			So(err.Error(), ShouldContainSubstring, "API key is invalid")
		})

		Convey("Fetch fails on mismatched dimensions", func() {
			page, err := TestResponseJSON(&Response{
				Status: StatusOK,
				Rows: []Row{{Elements: []Element{
					{Status: StatusOK, Distance: metric(1), Duration: metric(2)},
				}}},
			})
			So(err, ShouldBeNil)
			server.ResponseBody = []string{page}

			_, err = q.Fetch(ctx)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "expected 2")
		})

		Convey("Fetch requires endpoints", func() {
			_, err := NewRequest().Fetch(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("Fetch requires a client in context", func() {
			_, err := q.Fetch(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}
