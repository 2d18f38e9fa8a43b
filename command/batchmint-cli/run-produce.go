// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"
)

func runProduce(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	quantity := c.Int("quantity")
	if quantity <= 0 {
		return fmt.Errorf("invalid quantity: %d", quantity)
	}

	if m.verbose {
		fmt.Fprintf(m.e, "quantity: %d\n", quantity)
	}

	s, err := openSession(m, true)
	if nil != err {
		return err
	}
	defer s.Close()

	ctx, cancel := interruptible()
	defer cancel()

	result, err := s.service.Produce(ctx, quantity)
	if nil != err {
		return err
	}

	printJson(m.w, result)
	if nil != result.Err {
		return fmt.Errorf("produced: %d of %d  stopped: %s", result.Produced, result.Allowed, result.Err)
	}
	return nil
}

func runCycle(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	quantity := c.Int("quantity")
	if quantity < 0 {
		return fmt.Errorf("invalid quantity: %d", quantity)
	}

	s, err := openSession(m, true)
	if nil != err {
		return err
	}
	defer s.Close()

	ctx, cancel := interruptible()
	defer cancel()

	result, err := s.service.RunFullCycle(ctx, quantity)
	if nil != err {
		if result.Success {
			printJson(m.w, result)
		}
		return err
	}

	printJson(m.w, result)
	if !result.Success {
		return fmt.Errorf("cycle: %s  failed: %s", result.ID, result.Err)
	}
	return nil
}
