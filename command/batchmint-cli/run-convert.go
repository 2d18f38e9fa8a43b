// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"
)

func runConvert(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	dryRun := c.Bool("dry-run")

	if m.verbose {
		fmt.Fprintf(m.e, "dry run: %t\n", dryRun)
	}

	s, err := openSession(m, !dryRun)
	if nil != err {
		return err
	}
	defer s.Close()

	ctx, cancel := interruptible()
	defer cancel()

	result, err := s.service.Convert(ctx, dryRun)
	if nil != err {
		return err
	}

	printJson(m.w, result)
	if nil != result.Err {
		return fmt.Errorf("converted: %d of %d groups  stopped: %s", result.Converted, result.Groups, result.Err)
	}
	return nil
}
