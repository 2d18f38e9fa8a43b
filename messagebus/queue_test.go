// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/messagebus"
)

func TestQueueOrder(t *testing.T) {
	q := messagebus.New(3)

	items := []string{"c1", "c2", "c3"}
	for _, item := range items {
		assert.Nil(t, q.Send("test", item))
	}
	assert.Equal(t, 3, q.Len())

	queue := q.Chan()
	for _, item := range items {
		received := <-queue
		assert.Equal(t, "test", received.From)
		assert.Equal(t, item, received.Item)
	}
}

func TestQueueFullDoesNotBlock(t *testing.T) {
	q := messagebus.New(1)

	assert.Nil(t, q.Send("test", 1))
	assert.Equal(t, fault.ErrQueueFull, q.Send("test", 2))

	received := <-q.Chan()
	assert.Equal(t, 1, received.Item)
	assert.Equal(t, 0, q.Len())
}

func TestDefaultSize(t *testing.T) {
	q := messagebus.New(0)
	for i := 0; i < messagebus.DefaultQueueSize; i += 1 {
		assert.Nil(t, q.Send("test", i))
	}
	assert.Equal(t, fault.ErrQueueFull, q.Send("test", "overflow"))
}

func TestCycleRequestedIDs(t *testing.T) {
	at := time.Date(2024, 12, 24, 0, 2, 0, 0, time.UTC)
	a := messagebus.NewCycleRequested(at, 100)
	b := messagebus.NewCycleRequested(at, 100)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, at, a.RequestedAt)
	assert.Equal(t, 100, a.Quantity)
}
