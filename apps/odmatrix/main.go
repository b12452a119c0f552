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
	"context"
	"flag"
	"io"
	"os"

	"github.com/odmatrix/odmatrix/geo"
	"github.com/odmatrix/odmatrix/gmaps"
	"github.com/odmatrix/odmatrix/odm"
	"github.com/odmatrix/odmatrix/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"

	toml "github.com/pelletier/go-toml/v2"
)

type Flags struct {
	LogLevel     logging.Level
	Config       string // config file
	Origins      string // origins CSV file
	Destinations string // destinations CSV file; default: same as origins
	CSV          bool   // dump CSV format; default: text
	JSON         bool   // dump JSON format
	Estimate     bool   // print the cost estimate instead of running the job
	Summary      bool   // append a summary table to the output
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("odmatrix", flag.ExitOnError)
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.StringVar(&flags.Config, "conf", "", "config file (required)")
	fs.StringVar(&flags.Origins, "origins", "", "origins CSV file (required)")
	fs.StringVar(&flags.Destinations, "destinations", "",
		"destinations CSV file; default: same as origins")
	fs.BoolVar(&flags.CSV, "csv", false, "print tables in CSV format; default: text")
	fs.BoolVar(&flags.JSON, "json", false, "print tables in JSON format")
	fs.BoolVar(&flags.Estimate, "estimate", false,
		"print the job cost estimate without issuing any API calls")
	fs.BoolVar(&flags.Summary, "summary", false,
		"append a summary table of the computed metrics")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if flags.Config == "" {
		return nil, errors.Reason("missing required -conf argument")
	}
	if flags.Origins == "" {
		return nil, errors.Reason("missing required -origins argument")
	}
	if flags.CSV && flags.JSON {
		return nil, errors.Reason("-csv and -json are mutually exclusive")
	}
	return &flags, err
}

type limitsConfig struct {
	MaxElements     int `toml:"max_elements"`
	MaxOrigins      int `toml:"max_origins"`
	MaxDestinations int `toml:"max_destinations"`
}

// Config is the TOML config file schema.
type Config struct {
	Key          string           `toml:"key"`
	Mode         string           `toml:"mode"`
	Units        string           `toml:"units"`
	Language     string           `toml:"language"`
	Avoid        []string         `toml:"avoid"`
	DepartNow    bool             `toml:"depart_now"`
	TrafficModel string           `toml:"traffic_model"`
	Limits       limitsConfig     `toml:"limits"`
	Columns      geo.PointColumns `toml:"columns"`
}

func parseConfig(filePath string) (*Config, error) {
	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sample := `key = "YourSecretMapsAPIKey"
mode = "driving"
`
			return nil, errors.Annotate(err,
				"config file '%s' does not exist.\nPlease create a config file containing:\n%s",
				filePath, sample)
		}
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	var c Config
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", filePath)
	}
	return &c, nil
}

// request builds the gmaps request template from the config options.
func (c *Config) request() *gmaps.Request {
	r := gmaps.NewRequest()
	if c.Mode != "" {
		r = r.Mode(gmaps.Mode(c.Mode))
	}
	if c.Units != "" {
		r = r.Units(gmaps.Units(c.Units))
	}
	if c.Language != "" {
		r = r.Language(c.Language)
	}
	if len(c.Avoid) > 0 {
		r = r.Avoid(c.Avoid...)
	}
	if c.DepartNow {
		r = r.DepartNow()
	}
	if c.TrafficModel != "" {
		r = r.TrafficModel(gmaps.TrafficModel(c.TrafficModel))
	}
	return r
}

func readPointsFile(filePath string, cols geo.PointColumns) ([]odm.Point, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open points file %s", filePath)
	}
	defer f.Close()
	points, err := geo.ReadPoints(f, cols)
	if err != nil {
		return nil, errors.Annotate(err, "failed to read points from %s", filePath)
	}
	return points, nil
}

func writeTable(flags *Flags, t *table.Table, w io.Writer) error {
	switch {
	case flags.CSV:
		return t.WriteCSV(w, table.Params{})
	case flags.JSON:
		return t.WriteJSON(w, table.Params{})
	}
	return t.WriteText(w, table.Params{})
}

func printMatrix(ctx context.Context, flags *Flags, w io.Writer) error {
	config, err := parseConfig(flags.Config)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	origins, err := readPointsFile(flags.Origins, config.Columns)
	if err != nil {
		return errors.Annotate(err, "failed to read origins")
	}
	destinations := origins
	if flags.Destinations != "" {
		destinations, err = readPointsFile(flags.Destinations, config.Columns)
		if err != nil {
			return errors.Annotate(err, "failed to read destinations")
		}
	}

	if flags.Estimate {
		est := odm.EstimateCost(len(origins)*len(destinations), odm.DefaultCostParams())
		return writeTable(flags, est.Table(), w)
	}

	if config.Key == "" {
		return errors.Reason("config is missing the API key")
	}
	ctx = gmaps.UseClient(ctx, config.Key)
	limits := odm.Limits{
		MaxElements:     config.Limits.MaxElements,
		MaxOrigins:      config.Limits.MaxOrigins,
		MaxDestinations: config.Limits.MaxDestinations,
	}
	job := odm.NewJob(odm.APISubmitter{Request: config.request()}, limits)
	rows, err := job.Run(ctx, origins, destinations)
	if err != nil {
		return errors.Annotate(err, "failed to compute the matrix")
	}
	if err := writeTable(flags, odm.ToTable(rows), w); err != nil {
		return errors.Annotate(err, "failed to print the matrix")
	}
	if flags.Summary {
		if err := writeTable(flags, odm.Summarize(rows).Table(), w); err != nil {
			return errors.Annotate(err, "failed to print the summary")
		}
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := printMatrix(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
