// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/fixtures"
	"github.com/bitmark-inc/batchmintd/schedule"
	"github.com/bitmark-inc/batchmintd/service"
	"github.com/bitmark-inc/batchmintd/storage"
	"github.com/bitmark-inc/batchmintd/submitter"
	"github.com/bitmark-inc/batchmintd/submitter/mocks"
	"github.com/bitmark-inc/batchmintd/unit"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

var start = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

func newBackend(t *testing.T) storage.Backend {
	db, err := storage.Open(storage.LevelDB, filepath.Join(t.TempDir(), "batchmint.leveldb"))
	require.Nil(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func configuration(limit int, quantity int) service.Configuration {
	return service.Configuration{
		Owner:         fixtures.Owner,
		DailyLimit:    limit,
		Location:      time.UTC,
		CycleQuantity: quantity,
	}
}

func production(next *unit.ID) func(context.Context) (submitter.Receipt, error) {
	return func(context.Context) (submitter.Receipt, error) {
		id := *next
		*next += 1
		return submitter.Receipt{Success: true, UnitIDs: []unit.ID{id}, Reference: "mint-" + id.String()}, nil
	}
}

func conversion(_ context.Context, group []unit.ID) (submitter.Receipt, error) {
	return submitter.Receipt{Success: true, Reference: "swap-" + group[0].String()}, nil
}

func TestScheduledCycleRearms(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	next := unit.ID(1)
	sub := mocks.NewMockSubmitter(ctl)
	sub.EXPECT().SubmitProduction(gomock.Any()).DoAndReturn(production(&next)).Times(20)
	sub.EXPECT().SubmitConversion(gomock.Any(), gomock.Any()).DoAndReturn(conversion).Times(2)

	clk := clock.NewMock()
	clk.Set(start)

	s, err := service.New(newBackend(t), sub, configuration(100, 10), clk)
	require.Nil(t, err)
	status, err := s.Start()
	require.Nil(t, err)
	assert.False(t, status.Enabled)
	defer s.Stop()

	status, err = s.EnableSchedule()
	require.Nil(t, err)
	assert.True(t, status.Enabled)
	assert.False(t, status.Armed)

	result, err := s.RunFullCycle(context.Background(), 0)
	require.Nil(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 10, result.Target)

	status = s.ScheduleStatus()
	require.NotNil(t, status.NextRunAt)
	assert.True(t, status.Armed)
	assert.Equal(t, start.Add(schedule.DefaultCooldown+schedule.DefaultSafetyBuffer), *status.NextRunAt)
	assert.Equal(t, "24h 2m", status.TimeRemaining)

	fired := start.Add(schedule.DefaultCooldown + schedule.DefaultSafetyBuffer)
	clk.Add(schedule.DefaultCooldown + schedule.DefaultSafetyBuffer)

	assert.Eventually(t, func() bool {
		st := s.ScheduleStatus()
		return nil != st.LastCompletedAt && st.LastCompletedAt.Equal(fired)
	}, time.Second, 5*time.Millisecond)

	status = s.ScheduleStatus()
	assert.True(t, status.Armed)
	assert.Equal(t, fired.Add(schedule.DefaultCooldown+schedule.DefaultSafetyBuffer), *status.NextRunAt)
	assert.Equal(t, 0, s.Status().Units)
	assert.Equal(t, 10, s.Status().DailyUsed)
}

func TestFailedScheduledCycleIsNotRecorded(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	attempted := make(chan struct{})
	next := unit.ID(1)
	sub := mocks.NewMockSubmitter(ctl)
	gomock.InOrder(
		sub.EXPECT().SubmitProduction(gomock.Any()).DoAndReturn(production(&next)).Times(10),
		sub.EXPECT().SubmitConversion(gomock.Any(), gomock.Any()).DoAndReturn(conversion),
		sub.EXPECT().SubmitProduction(gomock.Any()).DoAndReturn(func(context.Context) (submitter.Receipt, error) {
			close(attempted)
			return submitter.Receipt{}, errors.New("insufficient funds")
		}),
	)

	clk := clock.NewMock()
	clk.Set(start)

	s, err := service.New(newBackend(t), sub, configuration(100, 10), clk)
	require.Nil(t, err)
	_, err = s.Start()
	require.Nil(t, err)
	defer s.Stop()

	result, err := s.RunFullCycle(context.Background(), 10)
	require.Nil(t, err)
	require.True(t, result.Success)
	_, err = s.EnableSchedule()
	require.Nil(t, err)

	clk.Add(schedule.DefaultCooldown + schedule.DefaultSafetyBuffer)

	select {
	case <-attempted:
	case <-time.After(time.Second):
		t.Fatal("scheduled cycle did not run")
	}
	assert.Eventually(t, func() bool {
		return "idle" == s.Status().State
	}, time.Second, 5*time.Millisecond)

	// enabled but unarmed until a cycle succeeds
	status := s.ScheduleStatus()
	assert.True(t, status.Enabled)
	assert.False(t, status.Armed)
	assert.Nil(t, status.NextRunAt)
	assert.True(t, status.LastCompletedAt.Equal(start))
}

func TestDailyQuotaSurvivesRestart(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	next := unit.ID(1)
	sub := mocks.NewMockSubmitter(ctl)
	sub.EXPECT().SubmitProduction(gomock.Any()).DoAndReturn(production(&next)).Times(5)

	clk := clock.NewMock()
	clk.Set(start)
	backend := newBackend(t)

	s, err := service.New(backend, sub, configuration(5, 5), clk)
	require.Nil(t, err)
	batch, err := s.Produce(context.Background(), 3)
	require.Nil(t, err)
	assert.Equal(t, 3, batch.Produced)
	s.Stop()

	clk.Add(time.Hour)
	again, err := service.New(backend, sub, configuration(5, 5), clk)
	require.Nil(t, err)
	defer again.Stop()
	assert.Equal(t, 3, again.Status().DailyUsed)
	assert.Equal(t, 3, again.Status().Units)

	batch, err = again.Produce(context.Background(), 5)
	require.Nil(t, err)
	assert.Equal(t, 2, batch.Allowed)
	assert.Equal(t, 2, batch.Produced)
	assert.True(t, batch.Capped)

	_, err = again.Produce(context.Background(), 1)
	assert.Equal(t, fault.ErrDailyLimitReached, err)

	// next calendar day
	clk.Add(24 * time.Hour)
	assert.Equal(t, 0, again.Status().DailyUsed)
}

func TestReconcileExternal(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	next := unit.ID(40)
	sub := mocks.NewMockSubmitter(ctl)
	gomock.InOrder(
		sub.EXPECT().SubmitProduction(gomock.Any()).DoAndReturn(production(&next)).Times(4),
		sub.EXPECT().ExternalBalance(gomock.Any()).Return(4, nil),
		sub.EXPECT().ExternalBalance(gomock.Any()).Return(2, nil),
		sub.EXPECT().ExternalBalance(gomock.Any()).Return(0, errors.New("timeout exceeded")),
		sub.EXPECT().ExternalBalance(gomock.Any()).Return(0, nil),
	)

	clk := clock.NewMock()
	clk.Set(start)

	s, err := service.New(newBackend(t), sub, configuration(100, 10), clk)
	require.Nil(t, err)
	defer s.Stop()

	_, err = s.Produce(context.Background(), 4)
	require.Nil(t, err)

	r, err := s.ReconcileExternal(context.Background())
	require.Nil(t, err)
	assert.True(t, r.InSync)
	assert.Equal(t, 0, r.Cleared)

	r, err = s.ReconcileExternal(context.Background())
	assert.Equal(t, fault.ErrPartialMismatch, err)
	assert.False(t, r.InSync)
	assert.Equal(t, 4, r.Local)

	_, err = s.ReconcileExternal(context.Background())
	assert.Equal(t, fault.Retryable, fault.CategoryOf(err))

	r, err = s.ReconcileExternal(context.Background())
	require.Nil(t, err)
	assert.True(t, r.InSync)
	assert.Equal(t, 4, r.Cleared)
	assert.Equal(t, 4, r.Local)
	assert.Equal(t, 0, s.Status().Units)

	stats := s.Stats()
	assert.Equal(t, 4, stats.Productions)
	require.Len(t, stats.Recent, 1)
	assert.Equal(t, "balance_sync_clear", stats.Recent[0].Operation)
}

func TestConvertAndReset(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sub := mocks.NewMockSubmitter(ctl)
	sub.EXPECT().SubmitProduction(gomock.Any()).Return(submitter.Receipt{
		Success:   true,
		UnitIDs:   []unit.ID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		Reference: "bulk",
	}, nil)

	clk := clock.NewMock()
	clk.Set(start)

	s, err := service.New(newBackend(t), sub, configuration(100, 10), clk)
	require.Nil(t, err)
	defer s.Stop()

	_, err = s.Produce(context.Background(), 1)
	require.Nil(t, err)

	plan, err := s.Convert(context.Background(), true)
	require.Nil(t, err)
	assert.Equal(t, 1, plan.Groups)
	assert.Equal(t, 2, plan.Remainder)

	ok, err := s.Reset()
	require.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, s.Status().Units)
	assert.Len(t, s.StoreSnapshot().ConsumptionLog, 1)

	_, err = s.Convert(context.Background(), false)
	assert.Equal(t, fault.ErrInsufficientUnits, err)
}

// schedule writes fail once broken is set
type brokenSchedule struct {
	storage.Backend
	broken bool
}

func (b *brokenSchedule) Put(bucket storage.Bucket, key string, value []byte) error {
	if b.broken && storage.Schedule == bucket {
		return errors.New("disk full")
	}
	return b.Backend.Put(bucket, key, value)
}

func TestCycleReportsUnrecordedCompletion(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	next := unit.ID(1)
	sub := mocks.NewMockSubmitter(ctl)
	sub.EXPECT().SubmitProduction(gomock.Any()).DoAndReturn(production(&next)).Times(10)
	sub.EXPECT().SubmitConversion(gomock.Any(), gomock.Any()).DoAndReturn(conversion)

	clk := clock.NewMock()
	clk.Set(start)

	db := &brokenSchedule{Backend: newBackend(t)}
	s, err := service.New(db, sub, configuration(100, 10), clk)
	require.Nil(t, err)
	defer s.Stop()

	_, err = s.Load()
	require.Nil(t, err)
	_, err = s.EnableSchedule()
	require.Nil(t, err)

	db.broken = true
	result, err := s.RunFullCycle(context.Background(), 10)
	assert.True(t, fault.IsErrPersistence(err))
	assert.True(t, result.Success)
	assert.Equal(t, err, result.Err)
	require.NotNil(t, result.Failure)
	assert.Equal(t, 0, s.Status().Units)

	status := s.ScheduleStatus()
	assert.True(t, status.Enabled)
	assert.Nil(t, status.NextRunAt)
	assert.Nil(t, status.LastCompletedAt)
	assert.False(t, status.Armed)
}

func TestMaintenanceRefusedWhileBusy(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	release := make(chan struct{})
	sub := mocks.NewMockSubmitter(ctl)
	sub.EXPECT().SubmitProduction(gomock.Any()).DoAndReturn(func(context.Context) (submitter.Receipt, error) {
		<-release
		return submitter.Receipt{Success: true, UnitIDs: []unit.ID{1}, Reference: "mint-1"}, nil
	})

	clk := clock.NewMock()
	clk.Set(start)

	s, err := service.New(newBackend(t), sub, configuration(100, 10), clk)
	require.Nil(t, err)
	defer s.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.Produce(context.Background(), 1)
		assert.Nil(t, err)
	}()

	assert.Eventually(t, func() bool {
		return "producing" == s.Status().State
	}, time.Second, time.Millisecond)

	_, err = s.Reset()
	assert.Equal(t, fault.ErrOperationInProgress, err)
	_, err = s.Reconcile(0)
	assert.Equal(t, fault.ErrOperationInProgress, err)

	close(release)
	<-done

	assert.Equal(t, 1, s.Status().Units)
	ok, err := s.Reset()
	require.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, "idle", s.Status().State)
	assert.Equal(t, 0, s.Status().Units)
}

func TestStartTwice(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	s, err := service.New(newBackend(t), mocks.NewMockSubmitter(ctl), configuration(0, 0), clock.NewMock())
	require.Nil(t, err)
	defer s.Stop()

	_, err = s.Start()
	require.Nil(t, err)
	_, err = s.Start()
	assert.Equal(t, fault.ErrAlreadyInitialised, err)
	assert.Equal(t, service.DefaultDailyLimit, s.Status().DailyLimit)
}

func TestRunPendingAfterMissedWindow(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	next := unit.ID(1)
	sub := mocks.NewMockSubmitter(ctl)
	sub.EXPECT().SubmitProduction(gomock.Any()).DoAndReturn(production(&next)).Times(20)
	sub.EXPECT().SubmitConversion(gomock.Any(), gomock.Any()).DoAndReturn(conversion).Times(2)

	clk := clock.NewMock()
	clk.Set(start)

	s, err := service.New(newBackend(t), sub, configuration(100, 10), clk)
	require.Nil(t, err)
	defer s.Stop()

	_, err = s.Load()
	require.Nil(t, err)

	result, err := s.RunFullCycle(context.Background(), 10)
	require.Nil(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 0, s.RunPending())

	// enabling after the window has passed queues a cycle at once
	clk.Add(25 * time.Hour)
	status, err := s.EnableSchedule()
	require.Nil(t, err)
	assert.True(t, status.Enabled)
	assert.Nil(t, status.NextRunAt)
	assert.Equal(t, 1, s.Status().Queued)

	assert.Equal(t, 1, s.RunPending())

	status = s.ScheduleStatus()
	assert.True(t, status.LastCompletedAt.Equal(start.Add(25*time.Hour)))
	assert.True(t, status.Armed)
	assert.Equal(t, 0, s.Status().Units)
}
