// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"github.com/bitmark-inc/batchmintd/fault"
)

// DefaultQueueSize - capacity used by the daemon
const DefaultQueueSize = 16

// Message - an item and where it came from
type Message struct {
	From string
	Item interface{}
}

// Queue - bounded FIFO, one or more senders, one consumer
type Queue struct {
	queue chan Message
}

// New - create a queue holding at most size messages
func New(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		queue: make(chan Message, size),
	}
}

// Send - queue an item without blocking
//
// a full queue drops the item and returns fault.ErrQueueFull
func (q *Queue) Send(from string, item interface{}) error {
	select {
	case q.queue <- Message{From: from, Item: item}:
		return nil
	default:
		return fault.ErrQueueFull
	}
}

// Chan - channel to read from
func (q *Queue) Chan() <-chan Message {
	return q.queue
}

// Len - number of waiting messages
func (q *Queue) Len() int {
	return len(q.queue)
}
