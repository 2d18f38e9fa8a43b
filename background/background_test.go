// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/batchmintd/background"
)

type ticker struct {
	ticks    int64
	finished bool
}

func (state *ticker) Run(args interface{}, shutdown <-chan struct{}) {
	step := args.(int64)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(time.Millisecond):
			atomic.AddInt64(&state.ticks, step)
		}
	}
	state.finished = true
}

func TestBackground(t *testing.T) {
	proc1 := &ticker{}
	proc2 := &ticker{}

	p := background.Start(background.Processes{proc1, proc2}, int64(3))
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	assert.True(t, proc1.finished, "Stop must wait for process 1")
	assert.True(t, proc2.finished, "Stop must wait for process 2")
	assert.True(t, atomic.LoadInt64(&proc1.ticks) > 0)
	assert.Equal(t, int64(0), atomic.LoadInt64(&proc2.ticks)%3)

	// second stop must not panic on a closed channel
	p.Stop()
}
