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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/odmatrix/odmatrix/gmaps"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(t *testing.T) {
	t.Parallel()

	tmpdir, tmpdirErr := os.MkdirTemp("", "test_odmatrix")
	defer os.RemoveAll(tmpdir)

	Convey("Setup succeeded", t, func() {
		So(tmpdirErr, ShouldBeNil)
	})

	Convey("parseFlags", t, func() {
		flags, err := parseFlags([]string{
			"-conf", "path/to/config", "-origins", "o.csv",
			"-log-level", "warning", "-csv", "-summary"})
		So(err, ShouldBeNil)
		So(flags.Config, ShouldEqual, "path/to/config")
		So(flags.Origins, ShouldEqual, "o.csv")
		So(flags.LogLevel, ShouldEqual, logging.Warning)
		So(flags.CSV, ShouldBeTrue)
		So(flags.Summary, ShouldBeTrue)

		Convey("required arguments", func() {
			_, err := parseFlags([]string{"-origins", "o.csv"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-conf", "c.toml"})
			So(err, ShouldNotBeNil)
		})

		Convey("mutually exclusive formats", func() {
			_, err := parseFlags([]string{
				"-conf", "c.toml", "-origins", "o.csv", "-csv", "-json"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("printMatrix works", t, func() {
		ctx := context.Background()
		configFile := filepath.Join(tmpdir, "config.toml")
		originsFile := filepath.Join(tmpdir, "origins.csv")
		destinationsFile := filepath.Join(tmpdir, "destinations.csv")

		So(testutil.WriteFile(configFile, `
key = "testkey"
mode = "driving"

[columns]
id = "id"
`), ShouldBeNil)
		So(testutil.WriteFile(originsFile, `id,lat,lng
o0,1,2
o1,3,4
`), ShouldBeNil)
		So(testutil.WriteFile(destinationsFile, `id,address
x,X Place
`), ShouldBeNil)

		Convey("cost estimate requires no API calls", func() {
			flags, err := parseFlags([]string{
				"-conf", configFile, "-origins", originsFile,
				"-destinations", destinationsFile, "-estimate", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printMatrix(ctx, flags, &buf), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
elements,exceeds_daily_limit,estimated_usd,estimated_minutes
2,false,0.00,0.00
`)
		})

		Convey("full matrix run", func() {
			server := testutil.NewTestServer()
			defer server.Close()
			ctx := fetch.UseClient(ctx, server.Client())
			gmaps.URL = server.URL() + "/maps/api"

			page, err := gmaps.TestResponseJSON(&gmaps.Response{
				Status:               gmaps.StatusOK,
				OriginAddresses:      []string{"1 First Ave", "2 Second Ave"},
				DestinationAddresses: []string{"3 X Place"},
				Rows: []gmaps.Row{
					{Elements: []gmaps.Element{{
						Status:            gmaps.StatusOK,
						Distance:          &gmaps.Metric{Value: 31495},
						Duration:          &gmaps.Metric{Value: 2304},
						DurationInTraffic: &gmaps.Metric{Value: 2936},
					}}},
					{Elements: []gmaps.Element{{Status: gmaps.StatusNotFound}}},
				},
			})
			So(err, ShouldBeNil)
			server.ResponseBody = []string{page}

			flags, err := parseFlags([]string{
				"-conf", configFile, "-origins", originsFile,
				"-destinations", destinationsFile, "-csv", "-summary"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printMatrix(ctx, flags, &buf), ShouldBeNil)

			So(server.RequestQuery["key"], ShouldResemble, []string{"testkey"})
			So(server.RequestQuery["mode"], ShouldResemble, []string{"driving"})
			So(server.RequestQuery["origins"], ShouldResemble, []string{"1,2|3,4"})
			So(server.RequestQuery["destinations"], ShouldResemble, []string{"X Place"})

			So("\n"+buf.String(), ShouldEqual, `
origin_id,origin_address,destination_id,destination_address,distance,duration,duration_in_traffic,status
o0,1 First Ave,x,3 X Place,31495,2304,2936,OK
o1,2 Second Ave,x,3 X Place,,,,NOT_FOUND
pairs,resolved,distance_mean,distance_median,distance_max,duration_mean,duration_median,duration_max
2,1,31495,31495,31495,2304,2304,2304
`)
		})

		Convey("missing API key is caught before any call", func() {
			noKeyFile := filepath.Join(tmpdir, "nokey.toml")
			So(testutil.WriteFile(noKeyFile, "mode = \"walking\"\n"), ShouldBeNil)
			flags, err := parseFlags([]string{
				"-conf", noKeyFile, "-origins", originsFile})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			err = printMatrix(ctx, flags, &buf)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "missing the API key")
		})

		Convey("missing config file suggests a sample", func() {
			flags, err := parseFlags([]string{
				"-conf", filepath.Join(tmpdir, "nonexistent.toml"),
				"-origins", originsFile})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			err = printMatrix(ctx, flags, &buf)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "does not exist")
		})
	})
}
