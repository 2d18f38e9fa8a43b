// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Category - classification of an external call failure
type Category string

// failure categories
const (
	InsufficientFunds Category = "InsufficientFunds"
	GasError          Category = "GasError"
	NonceError        Category = "NonceError"
	Retryable         Category = "Retryable"
	Unknown           Category = "Unknown"
)

// message fragments for each category, checked in this order
var classifiers = []struct {
	category  Category
	fragments []string
}{
	{
		category:  InsufficientFunds,
		fragments: []string{"insufficient funds", "insufficient balance", "insufficient ether"},
	},
	{
		category:  GasError,
		fragments: []string{"gas"},
	},
	{
		category:  NonceError,
		fragments: []string{"nonce", "already known", "replacement transaction underpriced"},
	},
	{
		category: Retryable,
		fragments: []string{
			"network error",
			"timeout",
			"connection refused",
			"temporary failure",
			"rate limit",
			"server error",
			"internal error",
			"bad gateway",
			"service unavailable",
			"gateway timeout",
		},
	},
}

// Classify - determine the category of a collaborator failure message
func Classify(message string) Category {
	m := strings.ToLower(message)
	for _, c := range classifiers {
		for _, f := range c.fragments {
			if strings.Contains(m, f) {
				return c.category
			}
		}
	}
	return Unknown
}

// Suggestion - operator hint for a category
func Suggestion(category Category) string {
	switch category {
	case InsufficientFunds:
		return "top up the account balance before retrying"
	case GasError:
		return "check gas limit and gas price settings"
	case NonceError:
		return "wait for pending transactions to settle, then retry"
	case Retryable:
		return "transient failure, retry later"
	default:
		return "inspect the external service logs"
	}
}

// ExternalCallError - a production, conversion or balance call that
// did not complete successfully
type ExternalCallError struct {
	Operation string
	Category  Category
	Message   string
}

// NewExternalCallError - classify the message and wrap it
func NewExternalCallError(operation string, message string) *ExternalCallError {
	return &ExternalCallError{
		Operation: operation,
		Category:  Classify(message),
		Message:   message,
	}
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s call failed (%s): %s", e.Operation, e.Category, e.Message)
}

// IsErrExternalCall - true if any error in the chain is an external call failure
func IsErrExternalCall(e error) bool {
	var ex *ExternalCallError
	return errors.As(e, &ex)
}

// CategoryOf - category of an external call failure, Unknown for anything else
func CategoryOf(e error) Category {
	var ex *ExternalCallError
	if errors.As(e, &ex) {
		return ex.Category
	}
	return Unknown
}
