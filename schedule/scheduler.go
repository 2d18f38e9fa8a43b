// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/messagebus"
	"github.com/bitmark-inc/batchmintd/storage"
	"github.com/bitmark-inc/logger"
)

// defaults
const (
	DefaultCooldown     = 24 * time.Hour
	DefaultSafetyBuffer = 2 * time.Minute
)

// queue source tag
const From = "schedule"

// Configuration - timing of the recurring cycle
type Configuration struct {
	Cooldown     time.Duration
	SafetyBuffer time.Duration
	Quantity     int
}

// Sender - where a due cycle is queued
type Sender interface {
	Send(from string, item interface{}) error
}

// Scheduler - re-arms a cycle after each recorded completion
//
// every change is written to the backend before the timer is armed
type Scheduler struct {
	sync.Mutex
	log        *logger.L
	backend    storage.Backend
	queue      Sender
	clock      clock.Clock
	interval   time.Duration
	quantity   int
	state      State
	loaded     bool
	timer      *clock.Timer
	generation uint64
}

// New - create a scheduler; OnLoad must be called before anything else
func New(backend storage.Backend, queue Sender, conf Configuration, clk clock.Clock) *Scheduler {
	if nil == clk {
		clk = clock.New()
	}
	if 0 == conf.Cooldown {
		conf.Cooldown = DefaultCooldown
	}
	if 0 == conf.SafetyBuffer {
		conf.SafetyBuffer = DefaultSafetyBuffer
	}
	return &Scheduler{
		log:      logger.New("schedule"),
		backend:  backend,
		queue:    queue,
		clock:    clk,
		interval: conf.Cooldown + conf.SafetyBuffer,
		quantity: conf.Quantity,
		state: State{
			Version: currentStateVersion,
		},
	}
}

// OnLoad - read the persisted state and restore the timer
//
// a window that passed while the process was down is reported
// through Status().Overdue, it never fires here
func (s *Scheduler) OnLoad() (Status, error) {
	s.Lock()
	defer s.Unlock()

	if s.loaded {
		return s.status(), fault.ErrAlreadyInitialised
	}

	data, err := s.backend.Get(storage.Schedule, stateKey)
	switch {
	case fault.ErrRecordNotFound == err:
		s.log.Info("no saved schedule, automation disabled")
	case nil != err:
		return Status{}, err
	default:
		state, err := unpackState(data)
		if nil != err {
			return Status{}, fault.NewPersistenceError("load", stateKey, err)
		}
		s.state = state
	}
	s.loaded = true

	if !s.state.Enabled {
		s.log.Info("loaded: disabled")
		return s.status(), nil
	}

	if nil == s.state.NextRunAt {
		s.log.Warn("loaded: enabled with no next run, waiting for a completed cycle")
		return s.status(), nil
	}

	next := *s.state.NextRunAt
	if !next.After(s.clock.Now()) {
		s.log.Warnf("loaded: scheduled run at: %s has passed, run a cycle manually", next.Format(time.RFC3339))
		return s.status(), nil
	}

	s.arm(next)
	return s.status(), nil
}

// Enable - turn automation on
//
// the first run is anchored on the last completed cycle; without one
// nothing is armed until a cycle completes
func (s *Scheduler) Enable() (Status, error) {
	s.Lock()
	defer s.Unlock()

	if !s.loaded {
		return Status{}, fault.ErrNotInitialised
	}

	next := s.state
	next.Enabled = true
	next.NextRunAt = nil
	if nil != s.state.LastCompletedAt {
		next.NextRunAt = timePointer(s.state.LastCompletedAt.Add(s.interval))
	}

	if err := s.save(next); nil != err {
		return s.status(), err
	}
	s.log.Info("enabled")

	if nil == next.NextRunAt {
		s.log.Info("no completed cycle yet, next run is scheduled after the first manual cycle")
		return s.status(), nil
	}
	s.schedule(*next.NextRunAt)
	return s.status(), nil
}

// Disable - turn automation off and cancel any pending run
func (s *Scheduler) Disable() (Status, error) {
	s.Lock()
	defer s.Unlock()

	if !s.loaded {
		return Status{}, fault.ErrNotInitialised
	}

	next := s.state
	next.Enabled = false
	next.NextRunAt = nil

	if err := s.save(next); nil != err {
		return s.status(), err
	}
	s.cancel()
	s.log.Info("disabled")
	return s.status(), nil
}

// RecordCompletion - note a successful cycle and re-arm if enabled
func (s *Scheduler) RecordCompletion(at time.Time) (Status, error) {
	s.Lock()
	defer s.Unlock()

	if !s.loaded {
		return Status{}, fault.ErrNotInitialised
	}

	at = at.UTC()
	next := s.state
	next.LastCompletedAt = timePointer(at)
	next.NextRunAt = nil
	if next.Enabled {
		next.NextRunAt = timePointer(at.Add(s.interval))
	}

	if err := s.save(next); nil != err {
		return s.status(), err
	}
	s.log.Infof("cycle completed at: %s", at.Format(time.RFC3339))

	if nil != next.NextRunAt {
		s.schedule(*next.NextRunAt)
	}
	return s.status(), nil
}

// Status - current state for display
func (s *Scheduler) Status() Status {
	s.Lock()
	defer s.Unlock()
	return s.status()
}

// Stop - cancel the in-memory timer, the persisted state is kept
func (s *Scheduler) Stop() {
	s.Lock()
	defer s.Unlock()
	s.cancel()
}

// must hold lock
func (s *Scheduler) save(next State) error {
	next.Version = currentStateVersion
	next.UpdatedAt = s.clock.Now().UTC()

	data, err := next.pack()
	if nil != err {
		return fault.NewPersistenceError("encode", stateKey, err)
	}
	if err := s.backend.Put(storage.Schedule, stateKey, data); nil != err {
		s.log.Errorf("save error: %s", err)
		return fault.NewPersistenceError("put", stateKey, err)
	}
	s.state = next
	return nil
}

// arm for a future time, or fire now if it has already passed
//
// must hold lock
func (s *Scheduler) schedule(at time.Time) {
	if !at.After(s.clock.Now()) {
		s.log.Warn("next run time is already due, running now")
		s.cancel()
		s.fire()
		return
	}
	s.arm(at)
}

// must hold lock
func (s *Scheduler) arm(at time.Time) {
	s.cancel()

	delay := at.Sub(s.clock.Now())
	generation := s.generation
	s.timer = s.clock.AfterFunc(delay, func() {
		s.Lock()
		defer s.Unlock()
		if generation != s.generation || nil == s.timer {
			return
		}
		s.timer = nil
		s.fire()
	})
	s.log.Infof("next run at: %s (%s from now)", at.Format(time.RFC3339), delay.Round(time.Minute))
}

// must hold lock
func (s *Scheduler) cancel() {
	s.generation += 1
	if nil != s.timer {
		s.timer.Stop()
		s.timer = nil
	}
}

// clear the pending run and hand the cycle to the queue
//
// must hold lock
func (s *Scheduler) fire() {
	if !s.state.Enabled {
		return
	}

	next := s.state
	next.NextRunAt = nil
	if err := s.save(next); nil != err {
		// the run is under way regardless, so memory must not show it due
		s.log.Errorf("fire: could not clear next run: %s", err)
		s.state.NextRunAt = nil
	}

	request := messagebus.NewCycleRequested(s.clock.Now().UTC(), s.quantity)
	if err := s.queue.Send(From, request); nil != err {
		s.log.Errorf("fire: cycle: %s not queued: %s", request.ID, err)
		return
	}
	s.log.Infof("fire: cycle: %s queued", request.ID)
}

// must hold lock
func (s *Scheduler) status() Status {
	now := s.clock.Now()
	st := Status{
		Enabled:         s.state.Enabled,
		NextRunAt:       copyTime(s.state.NextRunAt),
		LastCompletedAt: copyTime(s.state.LastCompletedAt),
		UpdatedAt:       s.state.UpdatedAt,
		Armed:           nil != s.timer,
	}
	if nil != s.state.NextRunAt {
		remaining := s.state.NextRunAt.Sub(now)
		st.Overdue = s.state.Enabled && remaining <= 0
		st.TimeRemaining = timeRemaining(remaining)
	}
	return st
}

func copyTime(t *time.Time) *time.Time {
	if nil == t {
		return nil
	}
	return timePointer(*t)
}

func timeRemaining(d time.Duration) string {
	if d <= 0 {
		return "ready to run"
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
