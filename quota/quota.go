// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package quota - daily production allowance
//
// the count of productions resets at midnight in the configured
// location
package quota

import (
	"sync"
	"time"
)

// Quota - productions used today against a fixed limit
type Quota struct {
	sync.Mutex
	limit    int
	location *time.Location
	now      func() time.Time
	day      time.Time
	used     int
}

// New - create a quota; a nil location means UTC
func New(limit int, location *time.Location, now func() time.Time) *Quota {
	if nil == location {
		location = time.UTC
	}
	if nil == now {
		now = time.Now
	}
	q := &Quota{
		limit:    limit,
		location: location,
		now:      now,
	}
	q.day = q.today()
	return q
}

// start of the current calendar day
func (q *Quota) today() time.Time {
	t := q.now().In(q.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, q.location)
}

// must hold lock
func (q *Quota) rollover() {
	if today := q.today(); !today.Equal(q.day) {
		q.day = today
		q.used = 0
	}
}

// Window - start and end of the current calendar day
func (q *Quota) Window() (time.Time, time.Time) {
	q.Lock()
	defer q.Unlock()
	q.rollover()
	return q.day, q.day.AddDate(0, 0, 1)
}

// Seed - set today's count, e.g. from the production log after a restart
func (q *Quota) Seed(used int) {
	q.Lock()
	defer q.Unlock()
	q.rollover()
	q.used = used
}

// Add - record n more productions, returns today's total
func (q *Quota) Add(n int) int {
	q.Lock()
	defer q.Unlock()
	q.rollover()
	q.used += n
	return q.used
}

// Used - productions so far today
func (q *Quota) Used() int {
	q.Lock()
	defer q.Unlock()
	q.rollover()
	return q.used
}

// Remaining - productions still allowed today, never negative
func (q *Quota) Remaining() int {
	q.Lock()
	defer q.Unlock()
	q.rollover()
	if q.used >= q.limit {
		return 0
	}
	return q.limit - q.used
}

// Limit - the daily limit
func (q *Quota) Limit() int {
	return q.limit
}
