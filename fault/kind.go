// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// Kind - operator facing name of a terminating condition
//
// an empty string is returned for nil
func Kind(e error) string {
	switch {
	case nil == e:
		return ""
	case errors.Is(e, ErrDailyLimitReached):
		return "DailyLimitReached"
	case errors.Is(e, ErrInsufficientUnits):
		return "InsufficientUnits"
	case errors.Is(e, ErrOperationInProgress):
		return "OperationInProgress"
	case errors.Is(e, ErrPartialMismatch):
		return "PartialMismatch"
	case IsErrPersistence(e):
		return "PersistenceFailure"
	case IsErrExternalCall(e):
		return "ExternalCallFailed:" + string(CategoryOf(e))
	default:
		return "Unknown"
	}
}
