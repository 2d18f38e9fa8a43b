// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
	"fmt"
)

// PersistenceError - a storage operation failed, the in-memory state
// was not changed
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

// NewPersistenceError - wrap a storage error, nil stays nil
func NewPersistenceError(op string, key string, err error) error {
	if nil == err {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{
		Op:  op,
		Key: key,
		Err: err,
	}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %q failed: %s", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsErrPersistence - true if any error in the chain is a storage failure
func IsErrPersistence(e error) bool {
	var pe *PersistenceError
	return errors.As(e, &pe)
}
