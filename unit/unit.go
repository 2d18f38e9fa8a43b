// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package unit - identifiers of produced units
package unit

import (
	"sort"
	"strconv"
	"strings"
)

// ID - opaque identifier of one produced unit
type ID uint64

// String - decimal representation
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Sort - ascending in place
func Sort(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// Merge - union of a sorted unique list and arbitrary ids
//
// returns the new ascending list and the number of ids actually added
func Merge(sorted []ID, ids []ID) ([]ID, int) {
	present := make(map[ID]struct{}, len(sorted)+len(ids))
	for _, id := range sorted {
		present[id] = struct{}{}
	}

	merged := make([]ID, len(sorted), len(sorted)+len(ids))
	copy(merged, sorted)

	added := 0
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		present[id] = struct{}{}
		merged = append(merged, id)
		added += 1
	}
	Sort(merged)
	return merged, added
}

// Subtract - remove ids from a sorted list preserving order
//
// returns the remaining list and the number of ids actually removed
func Subtract(sorted []ID, ids []ID) ([]ID, int) {
	remove := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}

	remaining := make([]ID, 0, len(sorted))
	for _, id := range sorted {
		if _, ok := remove[id]; ok {
			continue
		}
		remaining = append(remaining, id)
	}
	return remaining, len(sorted) - len(remaining)
}

// Summary - short text for logging long id lists
func Summary(ids []ID) string {
	if len(ids) <= 5 {
		return "[" + join(ids) + "]"
	}
	return "[" + join(ids[:3]) + " … " + join(ids[len(ids)-2:]) + "]"
}

func join(ids []ID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = id.String()
	}
	return strings.Join(s, ", ")
}
