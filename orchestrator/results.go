// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/unit"
)

// number of groups listed in a conversion plan
const previewGroups = 3

// UnitResult - outcome of one production
//
// Success means the external service confirmed the production; a
// later failure to record the ids still sets Err
type UnitResult struct {
	Success    bool          `json:"success"`
	UnitIDs    []unit.ID     `json:"unitIds,omitempty"`
	Reference  string        `json:"reference,omitempty"`
	DailyTotal int           `json:"dailyTotal"`
	Err        error         `json:"-"`
	Failure    *fault.Report `json:"failure,omitempty"`
}

// BatchResult - outcome of a batch of productions
type BatchResult struct {
	Requested  int           `json:"requested"`
	Allowed    int           `json:"allowed"`
	Capped     bool          `json:"capped"`
	Shortfall  int           `json:"shortfall,omitempty"`
	Produced   int           `json:"produced"`
	Failed     int           `json:"failed"`
	Units      []unit.ID     `json:"unitIds"`
	Outcomes   []UnitResult  `json:"outcomes"`
	DailyTotal int           `json:"dailyTotal"`
	DailyLimit int           `json:"dailyLimit"`
	Err        error         `json:"-"`
	Failure    *fault.Report `json:"failure,omitempty"`
}

func (r *BatchResult) fail(err error) {
	r.Err = err
	r.Failure = fault.NewReport(err)
}

// GroupResult - one confirmed conversion
type GroupResult struct {
	Index     int       `json:"index"`
	UnitIDs   []unit.ID `json:"unitIds"`
	Reference string    `json:"reference"`
	Removed   int       `json:"removed"`
}

// ConversionResult - plan and outcome of converting the held units
type ConversionResult struct {
	TestMode     bool          `json:"testMode"`
	Units        int           `json:"units"`
	Groups       int           `json:"groups"`
	Remainder    int           `json:"remainder"`
	WouldConsume int           `json:"wouldConsume"`
	WouldProduce int           `json:"wouldProduce"`
	Preview      [][]unit.ID   `json:"preview,omitempty"`
	Completed    []GroupResult `json:"completed"`
	Converted    int           `json:"converted"`
	Consumed     int           `json:"consumed"`
	FailedAt     int           `json:"failedAt,omitempty"`
	Remaining    int           `json:"remaining"`
	Err          error         `json:"-"`
	Failure      *fault.Report `json:"failure,omitempty"`
}

func (r *ConversionResult) fail(err error) {
	r.Err = err
	r.Failure = fault.NewReport(err)
}

// CycleResult - production followed by conversion
type CycleResult struct {
	ID         uuid.UUID         `json:"id"`
	Target     int               `json:"target"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Production BatchResult       `json:"production"`
	Conversion *ConversionResult `json:"conversion,omitempty"`
	Success    bool              `json:"success"`
	Err        error             `json:"-"`
	Failure    *fault.Report     `json:"failure,omitempty"`
}

func (r *CycleResult) fail(err error) {
	r.Err = err
	r.Failure = fault.NewReport(err)
}

func newPlan(groups [][]unit.ID, remainder int, size int) ConversionResult {
	n := len(groups)
	preview := groups
	if n > previewGroups {
		preview = groups[:previewGroups]
	}
	return ConversionResult{
		Units:        n*size + remainder,
		Groups:       n,
		Remainder:    remainder,
		WouldConsume: n * size,
		WouldProduce: n,
		Preview:      preview,
		Completed:    []GroupResult{},
	}
}
