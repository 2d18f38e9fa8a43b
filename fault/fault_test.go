// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/batchmintd/fault"
)

var (
	ErrExistsOne   = fault.ExistsError("exists one ")
	ErrInvalidOne  = fault.InvalidError("invalid one")
	ErrLimitOne    = fault.LimitError("limit one")
	ErrNotFoundOne = fault.NotFoundError("not found one")
	ErrProcessOne  = fault.ProcessError("process one")
	ErrStateOne    = fault.StateError("state one")
)

// test that the error classes do not overlap
func TestClasses(t *testing.T) {
	errorList := []struct {
		err      error
		exists   bool
		invalid  bool
		limit    bool
		notFound bool
		process  bool
		state    bool
	}{
		{ErrExistsOne, true, false, false, false, false, false},
		{ErrInvalidOne, false, true, false, false, false, false},
		{ErrLimitOne, false, false, true, false, false, false},
		{ErrNotFoundOne, false, false, false, true, false, false},
		{ErrProcessOne, false, false, false, false, true, false},
		{ErrStateOne, false, false, false, false, false, true},
		{fault.ErrDailyLimitReached, false, false, true, false, false, false},
		{fault.ErrOperationInProgress, false, false, false, false, false, true},
	}

	for i, e := range errorList {
		err := e.err
		assert.Equal(t, e.exists, fault.IsErrExists(err), "%d: exists: %v", i, err)
		assert.Equal(t, e.invalid, fault.IsErrInvalid(err), "%d: invalid: %v", i, err)
		assert.Equal(t, e.limit, fault.IsErrLimit(err), "%d: limit: %v", i, err)
		assert.Equal(t, e.notFound, fault.IsErrNotFound(err), "%d: not found: %v", i, err)
		assert.Equal(t, e.process, fault.IsErrProcess(err), "%d: process: %v", i, err)
		assert.Equal(t, e.state, fault.IsErrState(err), "%d: state: %v", i, err)
	}
}

func TestClassify(t *testing.T) {
	items := []struct {
		message  string
		category fault.Category
	}{
		{"insufficient funds for gas * price + value", fault.InsufficientFunds},
		{"Insufficient Balance", fault.InsufficientFunds},
		{"intrinsic gas too low", fault.GasError},
		{"nonce too low", fault.NonceError},
		{"already known", fault.NonceError},
		{"replacement transaction underpriced", fault.NonceError},
		{"dial tcp: connection refused", fault.Retryable},
		{"context deadline exceeded: timeout", fault.Retryable},
		{"502 Bad Gateway", fault.Retryable},
		{"execution reverted", fault.Unknown},
		{"", fault.Unknown},
	}

	for i, item := range items {
		assert.Equal(t, item.category, fault.Classify(item.message), "%d: %q", i, item.message)
	}
}

func TestExternalCallError(t *testing.T) {
	err := fault.NewExternalCallError("conversion", "nonce too low")
	wrapped := fmt.Errorf("group 2: %w", err)

	assert.True(t, fault.IsErrExternalCall(wrapped))
	assert.Equal(t, fault.NonceError, fault.CategoryOf(wrapped))
	assert.Equal(t, fault.Unknown, fault.CategoryOf(errors.New("other")))
	assert.Contains(t, err.Error(), "conversion call failed (NonceError)")
	assert.NotEmpty(t, fault.Suggestion(fault.CategoryOf(err)))
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("disk full")

	assert.Nil(t, fault.NewPersistenceError("put", "key", nil))

	err := fault.NewPersistenceError("put", "key", cause)
	assert.True(t, fault.IsErrPersistence(err))
	assert.True(t, errors.Is(err, cause))

	again := fault.NewPersistenceError("save", "other", err)
	assert.Equal(t, err, again, "should not double wrap")
}

func TestKind(t *testing.T) {
	items := []struct {
		err  error
		kind string
	}{
		{nil, ""},
		{fault.ErrDailyLimitReached, "DailyLimitReached"},
		{fault.ErrInsufficientUnits, "InsufficientUnits"},
		{fault.ErrOperationInProgress, "OperationInProgress"},
		{fault.ErrPartialMismatch, "PartialMismatch"},
		{fault.NewPersistenceError("put", "k", errors.New("x")), "PersistenceFailure"},
		{fault.NewExternalCallError("production", "out of gas"), "ExternalCallFailed:GasError"},
		{fmt.Errorf("wrapped: %w", fault.ErrDailyLimitReached), "DailyLimitReached"},
		{errors.New("anything"), "Unknown"},
	}

	for i, item := range items {
		assert.Equal(t, item.kind, fault.Kind(item.err), "%d: %v", i, item.err)
	}
}

func TestReport(t *testing.T) {
	assert.Nil(t, fault.NewReport(nil))

	r := fault.NewReport(fault.NewExternalCallError("production", "insufficient funds"))
	assert.Equal(t, "ExternalCallFailed:InsufficientFunds", r.Kind)
	assert.Equal(t, fault.InsufficientFunds, r.Category)
	assert.Equal(t, fault.Suggestion(fault.InsufficientFunds), r.Suggestion)

	r = fault.NewReport(fault.ErrPartialMismatch)
	assert.Equal(t, "PartialMismatch", r.Kind)
	assert.Empty(t, r.Category)
}
