// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"
)

// a run that is already due is started immediately and waited for
func runScheduleEnable(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	s, err := openSession(m, true)
	if nil != err {
		return err
	}
	defer s.Close()

	if _, err := s.service.EnableSchedule(); nil != err {
		return err
	}

	if n := s.service.RunPending(); n > 0 && m.verbose {
		fmt.Fprintf(m.e, "ran: %d due cycle(s)\n", n)
	}

	return printJson(m.w, s.service.ScheduleStatus())
}

func runScheduleDisable(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	s, err := openSession(m, false)
	if nil != err {
		return err
	}
	defer s.Close()

	status, err := s.service.DisableSchedule()
	if nil != err {
		return err
	}
	return printJson(m.w, status)
}

func runScheduleStatus(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	s, err := openSession(m, false)
	if nil != err {
		return err
	}
	defer s.Close()

	return printJson(m.w, s.service.Status())
}
