// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package unitstore

import (
	"time"
)

const recentConsumptions = 5

// Stats - summary for status displays
type Stats struct {
	Owner        string             `json:"owner"`
	Units        int                `json:"units"`
	Groups       int                `json:"groups"`
	Remainder    int                `json:"remainder"`
	Productions  int                `json:"productions"`
	Consumptions int                `json:"consumptions"`
	Recent       []ConsumptionEntry `json:"recentConsumptions"`
	LastUpdated  time.Time          `json:"lastUpdated"`
}

// Stats - counts and the latest consumptions
func (s *Store) Stats() Stats {
	s.RLock()
	defer s.RUnlock()

	r := s.record
	first := len(r.ConsumptionLog) - recentConsumptions
	if first < 0 {
		first = 0
	}

	return Stats{
		Owner:        r.Owner,
		Units:        len(r.Units),
		Groups:       len(r.Units) / GroupSize,
		Remainder:    len(r.Units) % GroupSize,
		Productions:  len(r.ProductionLog),
		Consumptions: len(r.ConsumptionLog),
		Recent:       append([]ConsumptionEntry{}, r.ConsumptionLog[first:]...),
		LastUpdated:  r.LastUpdated,
	}
}
