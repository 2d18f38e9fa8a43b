// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"time"

	"github.com/google/uuid"
)

// CycleRequested - ask the consumer to run one full production cycle
type CycleRequested struct {
	ID          uuid.UUID
	RequestedAt time.Time
	Quantity    int
}

// NewCycleRequested - request with a fresh id
func NewCycleRequested(at time.Time, quantity int) CycleRequested {
	return CycleRequested{
		ID:          uuid.New(),
		RequestedAt: at,
		Quantity:    quantity,
	}
}
