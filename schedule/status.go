// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package schedule

import (
	"time"
)

// Status - schedule as shown to an operator
type Status struct {
	Enabled         bool       `json:"enabled"`
	NextRunAt       *time.Time `json:"nextRunAt"`
	LastCompletedAt *time.Time `json:"lastCompletedAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Armed           bool       `json:"armed"`
	Overdue         bool       `json:"overdue"`
	TimeRemaining   string     `json:"timeRemaining,omitempty"`
}
