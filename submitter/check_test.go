// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package submitter_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/submitter"
)

func TestCheck(t *testing.T) {
	assert.Nil(t, submitter.Check(submitter.Production, submitter.Receipt{Success: true}, nil))

	err := submitter.Check(submitter.Production, submitter.Receipt{}, errors.New("insufficient funds"))
	assert.Equal(t, fault.InsufficientFunds, fault.CategoryOf(err))

	err = submitter.Check(submitter.Conversion, submitter.Receipt{Success: false, Message: "nonce too low"}, nil)
	assert.Equal(t, fault.NonceError, fault.CategoryOf(err))

	err = submitter.Check(submitter.Conversion, submitter.Receipt{Success: false, Reference: "0x01"}, nil)
	assert.Equal(t, fault.Unknown, fault.CategoryOf(err))
	assert.Contains(t, err.Error(), "0x01")

	err = submitter.Check(submitter.Balance, submitter.Receipt{}, fmt.Errorf("call: %w", context.DeadlineExceeded))
	assert.Equal(t, fault.Retryable, fault.CategoryOf(err))
}
