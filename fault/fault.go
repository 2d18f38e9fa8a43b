// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LimitError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type StateError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised    = ExistsError("already initialised")
	ErrConfigurationNotTable = InvalidError("configuration did not return a table")
	ErrDailyLimitReached     = LimitError("daily limit reached")
	ErrIncompatibleVersion   = InvalidError("incompatible record version")
	ErrInsufficientUnits     = LimitError("insufficient units for a conversion group")
	ErrInvalidBackend        = InvalidError("invalid storage backend")
	ErrInvalidCount          = InvalidError("invalid count")
	ErrInvalidOperation      = InvalidError("invalid operation descriptor")
	ErrInvalidStructPointer  = InvalidError("invalid struct pointer")
	ErrMissingOwner          = InvalidError("owner is required")
	ErrNotInitialised        = NotFoundError("not initialised")
	ErrOperationInProgress   = StateError("operation in progress")
	ErrOperationNotOffered   = NotFoundError("operation not offered by signer")
	ErrPartialMismatch       = StateError("external balance partially mismatches local units")
	ErrProductionFailed      = ProcessError("production produced no units")
	ErrQueueFull             = LimitError("queue is full")
	ErrRateLimiting          = LimitError("rate limiting")
	ErrReceiptWithoutUnits   = ProcessError("production receipt carried no unit ids")
	ErrRecordNotFound        = NotFoundError("record not found")
	ErrStopped               = ProcessError("stopped")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LimitError) Error() string    { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e StateError) Error() string    { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLimit(e error) bool    { _, ok := e.(LimitError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrState(e error) bool    { _, ok := e.(StateError); return ok }
