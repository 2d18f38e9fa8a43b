// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package submitter

import (
	"context"
	"errors"

	"github.com/bitmark-inc/batchmintd/fault"
)

// operation names used in errors and logs
const (
	Production = "production"
	Conversion = "conversion"
	Balance    = "balance"
)

// Check - nil for a successful receipt, otherwise a classified
// *fault.ExternalCallError
func Check(operation string, receipt Receipt, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.NewExternalCallError(operation, "timeout waiting for receipt")
	}
	if nil != err {
		return fault.NewExternalCallError(operation, err.Error())
	}
	if !receipt.Success {
		message := receipt.Message
		if "" == message {
			message = "transaction failed: " + receipt.Reference
		}
		return fault.NewExternalCallError(operation, message)
	}
	return nil
}
