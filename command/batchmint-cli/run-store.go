// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/batchmintd/fault"
)

func runStore(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	s, err := openSession(m, false)
	if nil != err {
		return err
	}
	defer s.Close()

	if c.Bool("stats") {
		return printJson(m.w, s.service.Stats())
	}
	return printJson(m.w, s.service.StoreSnapshot())
}

func runReconcile(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	balance := c.Int("balance")
	online := balance < 0

	s, err := openSession(m, online)
	if nil != err {
		return err
	}
	defer s.Close()

	var r interface{}
	if online {
		ctx, cancel := interruptible()
		defer cancel()
		r, err = s.service.ReconcileExternal(ctx)
	} else {
		r, err = s.service.Reconcile(balance)
	}

	if nil != err && fault.ErrPartialMismatch != err {
		return err
	}
	printJson(m.w, r)
	if nil != err {
		return fmt.Errorf("%s: resolve manually, local units were not changed", err)
	}
	return nil
}

func runReset(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	if !c.Bool("yes") {
		return fmt.Errorf("reset needs --yes")
	}

	s, err := openSession(m, false)
	if nil != err {
		return err
	}
	defer s.Close()

	if _, err := s.service.Reset(); nil != err {
		return err
	}
	return printJson(m.w, s.service.Stats())
}
