// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package unitstore

import (
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/storage"
	"github.com/bitmark-inc/batchmintd/unit"
	"github.com/bitmark-inc/logger"
)

// GroupSize - number of units consumed by one conversion
const GroupSize = 10

// consumption log operations
const (
	OperationConversion       = "conversion"
	OperationBalanceSyncClear = "balance_sync_clear"
	OperationReset            = "reset"
)

// Store - the local cache of one owner's units
//
// every mutation is applied to a copy, written to the backend and
// only then made visible; a failed write leaves the store unchanged
type Store struct {
	sync.RWMutex
	log     *logger.L
	backend storage.Backend
	key     string
	record  *Record
	burned  map[unit.ID]struct{}
	now     func() time.Time
}

// Open - load the record for owner, or start an empty one
//
// an empty record is not written until its first mutation
func Open(backend storage.Backend, owner string) (*Store, error) {
	return OpenWithClock(backend, owner, time.Now)
}

// OpenWithClock - Open with the time source used for log timestamps
func OpenWithClock(backend storage.Backend, owner string, now func() time.Time) (*Store, error) {
	key := strings.ToLower(strings.TrimSpace(owner))
	if "" == key {
		return nil, fault.ErrMissingOwner
	}

	log := logger.New("unitstore")

	var record *Record
	data, err := backend.Get(storage.Units, key)
	switch {
	case fault.ErrRecordNotFound == err:
		log.Infof("new record for: %s", key)
		record = newRecord(key)
	case nil != err:
		return nil, err
	default:
		record, err = unpackRecord(data)
		if nil != err {
			log.Errorf("record for: %s  error: %s", key, err)
			return nil, fault.NewPersistenceError("load", key, err)
		}
		log.Infof("loaded: %s  units: %d", key, len(record.Units))
	}

	return &Store{
		log:     log,
		backend: backend,
		key:     key,
		record:  record,
		burned:  consumedIDs(record),
		now:     now,
	}, nil
}

// every id that any consumption entry has recorded
func consumedIDs(r *Record) map[unit.ID]struct{} {
	burned := make(map[unit.ID]struct{})
	for _, entry := range r.ConsumptionLog {
		for _, id := range entry.Units {
			burned[id] = struct{}{}
		}
	}
	return burned
}

// must hold lock, only after the consumption was persisted
func (s *Store) markBurned(ids []unit.ID) {
	for _, id := range ids {
		s.burned[id] = struct{}{}
	}
}

// Owner - the lower case owner key
func (s *Store) Owner() string {
	return s.key
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// apply f to a copy, persist it, then swap it in
func (s *Store) mutate(f func(r *Record, now time.Time)) error {
	next := s.record.clone()
	now := s.timestamp()
	f(next, now)
	next.LastUpdated = now

	data, err := next.pack()
	if nil != err {
		return fault.NewPersistenceError("encode", s.key, err)
	}
	if err := s.backend.Put(storage.Units, s.key, data); nil != err {
		s.log.Errorf("write: %s  error: %s", s.key, err)
		return fault.NewPersistenceError("put", s.key, err)
	}

	s.record = next
	return nil
}

// AddUnits - merge newly produced ids and log the production
//
// ids already held or already consumed are ignored, the log entry
// always records the full list as reported
func (s *Store) AddUnits(ids []unit.ID, externalRef string) (Record, error) {
	s.Lock()
	defer s.Unlock()

	fresh := make([]unit.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.burned[id]; ok {
			s.log.Warnf("ref: %s  unit: %s already consumed, not added", externalRef, id)
			continue
		}
		fresh = append(fresh, id)
	}

	added := 0
	err := s.mutate(func(r *Record, now time.Time) {
		r.Units, added = unit.Merge(r.Units, fresh)
		r.ProductionLog = append(r.ProductionLog, ProductionEntry{
			Timestamp:   now,
			ExternalRef: externalRef,
			Units:       append([]unit.ID{}, ids...),
			Count:       len(ids),
		})
	})
	if nil != err {
		return Record{}, err
	}

	s.log.Infof("added: %d of %d  units: %s  ref: %s  total: %d", added, len(ids), unit.Summary(ids), externalRef, len(s.record.Units))
	return *s.record.clone(), nil
}

// RemoveUnits - drop consumed ids and log the consumption
//
// removed < len(ids) means local state had already diverged
func (s *Store) RemoveUnits(ids []unit.ID, operation string) (int, error) {
	s.Lock()
	defer s.Unlock()

	removed := 0
	err := s.mutate(func(r *Record, now time.Time) {
		r.Units, removed = unit.Subtract(r.Units, ids)
		r.ConsumptionLog = append(r.ConsumptionLog, ConsumptionEntry{
			Timestamp:          now,
			Operation:          operation,
			Units:              append([]unit.ID{}, ids...),
			RequestedCount:     len(ids),
			ActualRemovedCount: removed,
		})
	})
	if nil != err {
		return 0, err
	}
	s.markBurned(ids)

	if removed < len(ids) {
		s.log.Warnf("%s: removed: %d of requested: %d  local state diverged", operation, removed, len(ids))
	} else {
		s.log.Infof("%s: removed: %d  remaining: %d", operation, removed, len(s.record.Units))
	}
	return removed, nil
}

// GetUnits - copy of the current ids
func (s *Store) GetUnits() []unit.ID {
	s.RLock()
	defer s.RUnlock()

	return append([]unit.ID{}, s.record.Units...)
}

// Count - number of units held
func (s *Store) Count() int {
	s.RLock()
	defer s.RUnlock()

	return len(s.record.Units)
}

// PlanConversionGroups - full groups oldest first and the ungrouped remainder
func (s *Store) PlanConversionGroups() ([][]unit.ID, int) {
	s.RLock()
	defer s.RUnlock()

	return planGroups(s.record.Units, GroupSize)
}

func planGroups(units []unit.ID, size int) ([][]unit.ID, int) {
	n := len(units) / size
	groups := make([][]unit.ID, n)
	for i := 0; i < n; i += 1 {
		groups[i] = append([]unit.ID{}, units[i*size:(i+1)*size]...)
	}
	return groups, len(units) % size
}

// ReconcileWithExternalBalance - compare against the authoritative count
//
// a zero balance clears every local unit; an equal count is in sync;
// anything else is left untouched and reported as fault.ErrPartialMismatch
func (s *Store) ReconcileWithExternalBalance(externalBalance int) (int, bool, error) {
	s.Lock()
	defer s.Unlock()

	if externalBalance < 0 {
		return 0, false, fault.ErrInvalidCount
	}

	local := len(s.record.Units)

	switch {
	case 0 == externalBalance && local > 0:
		cleared := 0
		held := append([]unit.ID{}, s.record.Units...)
		err := s.mutate(func(r *Record, now time.Time) {
			cleared = len(r.Units)
			r.ConsumptionLog = append(r.ConsumptionLog, ConsumptionEntry{
				Timestamp:          now,
				Operation:          OperationBalanceSyncClear,
				Units:              append([]unit.ID{}, r.Units...),
				RequestedCount:     cleared,
				ActualRemovedCount: cleared,
			})
			r.Units = []unit.ID{}
		})
		if nil != err {
			return 0, false, err
		}
		s.markBurned(held)
		s.log.Warnf("external balance is zero, cleared: %d stale units", cleared)
		return cleared, true, nil

	case externalBalance == local:
		s.log.Infof("in sync: %d units", local)
		return 0, true, nil

	default:
		s.log.Warnf("mismatch: local: %d  external: %d  no action taken", local, externalBalance)
		return 0, false, fault.ErrPartialMismatch
	}
}

// Reset - forget all units, keep the logs
func (s *Store) Reset() (bool, error) {
	s.Lock()
	defer s.Unlock()

	cleared := 0
	err := s.mutate(func(r *Record, now time.Time) {
		cleared = len(r.Units)
		r.ConsumptionLog = append(r.ConsumptionLog, ConsumptionEntry{
			Timestamp:          now,
			Operation:          OperationReset,
			Units:              []unit.ID{},
			RequestedCount:     cleared,
			ActualRemovedCount: cleared,
		})
		r.Units = []unit.ID{}
	})
	if nil != err {
		return false, err
	}

	s.log.Warnf("reset: cleared: %d units", cleared)
	return true, nil
}

// Snapshot - deep copy of the whole record
func (s *Store) Snapshot() Record {
	s.RLock()
	defer s.RUnlock()

	return *s.record.clone()
}

// ProductionsBetween - number of productions logged in [from, to)
func (s *Store) ProductionsBetween(from time.Time, to time.Time) int {
	s.RLock()
	defer s.RUnlock()

	n := 0
	for _, e := range s.record.ProductionLog {
		if !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			n += 1
		}
	}
	return n
}
