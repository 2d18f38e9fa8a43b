// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package schedule

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/bitmark-inc/batchmintd/fault"
)

const (
	currentStateVersion = 1

	// the single schedule record in storage.Schedule
	stateKey = "state"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// State - the persisted schedule
//
// disabled implies no NextRunAt
type State struct {
	Version         int        `json:"version"`
	Enabled         bool       `json:"enabled"`
	NextRunAt       *time.Time `json:"nextRunAt"`
	LastCompletedAt *time.Time `json:"lastCompletedAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (s State) pack() ([]byte, error) {
	return json.Marshal(s)
}

func unpackState(data []byte) (State, error) {
	s := State{}
	if err := json.Unmarshal(data, &s); nil != err {
		return State{}, err
	}
	if s.Version > currentStateVersion {
		return State{}, fault.ErrIncompatibleVersion
	}
	if 0 == s.Version {
		s.Version = currentStateVersion
	}
	return s, nil
}

func timePointer(t time.Time) *time.Time {
	return &t
}
