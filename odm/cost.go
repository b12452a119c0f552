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
	"strconv"

	"github.com/odmatrix/odmatrix/table"
)

// CostParams parameterize a job cost estimate.
type CostParams struct {
	USDPerElement   float64 // price of one matrix element
	FreeElements    int     // elements included in the free tier
	DailyLimit      int     // elements allowed per day
	ElementsPerCall int     // elements submitted by one one-second API call
}

// DefaultCostParams returns the standard pricing assumptions: $0.50 per 1000
// elements, a 100k daily element limit, 100 elements per call.
func DefaultCostParams() CostParams {
	return CostParams{
		USDPerElement:   0.5 / 1000,
		FreeElements:    0,
		DailyLimit:      100000,
		ElementsPerCall: 100,
	}
}

// CostEstimate is the estimated price and wall time of a matrix job of a
// given element count.
type CostEstimate struct {
	Elements          int
	ExceedsDailyLimit bool
	USD               float64
	Minutes           float64
}

// EstimateCost estimates the cost of a job of the given number of elements
// before issuing any network calls. Zero ElementsPerCall assumes the default.
func EstimateCost(elements int, p CostParams) CostEstimate {
	if p.ElementsPerCall <= 0 {
		p.ElementsPerCall = DefaultCostParams().ElementsPerCall
	}
	billable := elements - p.FreeElements
	if billable < 0 {
		billable = 0
	}
	return CostEstimate{
		Elements:          elements,
		ExceedsDailyLimit: elements > p.DailyLimit,
		USD:               float64(billable) * p.USDPerElement,
		Minutes:           float64(elements) / float64(p.ElementsPerCall) / 60,
	}
}

// CSV implements table.Row.
func (c CostEstimate) CSV() []string {
	return []string{
		strconv.Itoa(c.Elements),
		strconv.FormatBool(c.ExceedsDailyLimit),
		strconv.FormatFloat(c.USD, 'f', 2, 64),
		strconv.FormatFloat(c.Minutes, 'f', 2, 64),
	}
}

// Table renders the estimate as a single-row table.
func (c CostEstimate) Table() *table.Table {
	t := table.NewTable(
		"elements", "exceeds_daily_limit", "estimated_usd", "estimated_minutes")
	t.AddRow(c)
	return t
}
