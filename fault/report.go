// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// Report - printable form of a terminating error
type Report struct {
	Kind       string   `json:"kind"`
	Category   Category `json:"category,omitempty"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// NewReport - nil for nil
func NewReport(e error) *Report {
	if nil == e {
		return nil
	}
	r := &Report{
		Kind:    Kind(e),
		Message: e.Error(),
	}
	if IsErrExternalCall(e) {
		r.Category = CategoryOf(e)
		r.Suggestion = Suggestion(r.Category)
	}
	return r
}
