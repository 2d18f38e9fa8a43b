// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package unitstore

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/unit"
)

// current layout of a persisted record
const currentRecordVersion = 1

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ProductionEntry - one AddUnits call
type ProductionEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	ExternalRef string    `json:"externalRef"`
	Units       []unit.ID `json:"units"`
	Count       int       `json:"count"`
}

// ConsumptionEntry - one RemoveUnits, reconcile clear or reset
type ConsumptionEntry struct {
	Timestamp          time.Time `json:"timestamp"`
	Operation          string    `json:"operation"`
	Units              []unit.ID `json:"units"`
	RequestedCount     int       `json:"requestedCount"`
	ActualRemovedCount int       `json:"actualRemovedCount"`
}

// Record - everything known about one owner's units
//
// Units is ascending without duplicates, both logs are append only
type Record struct {
	Version        int                `json:"version"`
	Owner          string             `json:"owner"`
	Units          []unit.ID          `json:"units"`
	ProductionLog  []ProductionEntry  `json:"productionLog"`
	ConsumptionLog []ConsumptionEntry `json:"consumptionLog"`
	LastUpdated    time.Time          `json:"lastUpdated"`
}

func newRecord(owner string) *Record {
	return &Record{
		Version:        currentRecordVersion,
		Owner:          owner,
		Units:          []unit.ID{},
		ProductionLog:  []ProductionEntry{},
		ConsumptionLog: []ConsumptionEntry{},
	}
}

// deep copy so a failed write can be discarded
func (r *Record) clone() *Record {
	c := *r
	c.Units = append([]unit.ID{}, r.Units...)
	c.ProductionLog = append([]ProductionEntry{}, r.ProductionLog...)
	c.ConsumptionLog = append([]ConsumptionEntry{}, r.ConsumptionLog...)
	return &c
}

func (r *Record) pack() ([]byte, error) {
	return json.Marshal(r)
}

func unpackRecord(data []byte) (*Record, error) {
	r := &Record{}
	if err := json.Unmarshal(data, r); nil != err {
		return nil, err
	}
	if r.Version > currentRecordVersion {
		return nil, fault.ErrIncompatibleVersion
	}
	// records written before versioning
	if 0 == r.Version {
		r.Version = currentRecordVersion
	}
	if nil == r.Units {
		r.Units = []unit.ID{}
	}
	if nil == r.ProductionLog {
		r.ProductionLog = []ProductionEntry{}
	}
	if nil == r.ConsumptionLog {
		r.ConsumptionLog = []ConsumptionEntry{}
	}
	return r, nil
}
