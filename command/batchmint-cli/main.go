// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/batchmintd/configuration"
)

type metadata struct {
	file    string
	config  *configuration.Configuration
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "batchmint-cli"
	app.Usage = "one-shot production and conversion against the local store"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "config-file, c",
			Value:  "",
			Usage:  "*batchmintd configuration `FILE`",
			EnvVar: "BATCHMINT_CONFIG",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "produce",
			Usage:     "produce units up to the daily limit",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "quantity, q",
					Value: 1,
					Usage: "*number of productions `COUNT`",
				},
			},
			Action: runProduce,
		},
		{
			Name:      "convert",
			Usage:     "convert every full group of held units",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "dry-run, n",
					Usage: " show the plan, submit nothing",
				},
			},
			Action: runConvert,
		},
		{
			Name:      "cycle",
			Usage:     "produce, wait to settle, then convert",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "quantity, q",
					Value: 0,
					Usage: " target productions `COUNT` [configured batch target]",
				},
			},
			Action: runCycle,
		},
		{
			Name:  "schedule",
			Usage: "daily automation",
			Subcommands: []cli.Command{
				{
					Name:   "enable",
					Usage:  "turn on, a missed run is started immediately",
					Action: runScheduleEnable,
				},
				{
					Name:   "disable",
					Usage:  "turn off and clear the next run",
					Action: runScheduleDisable,
				},
				{
					Name:   "status",
					Usage:  "display the schedule",
					Action: runScheduleStatus,
				},
			},
		},
		{
			Name:  "store",
			Usage: "display the local record",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "stats, s",
					Usage: " summary only",
				},
			},
			Action: runStore,
		},
		{
			Name:      "reconcile",
			Usage:     "compare local units with the external balance",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "balance, b",
					Value: -1,
					Usage: " external `COUNT`, read from the signer if not given",
				},
			},
			Action: runReconcile,
		},
		{
			Name:      "reset",
			Usage:     "forget all held units, logs are kept",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "yes, y",
					Usage: "*confirm the reset",
				},
			},
			Action: runReset,
		},
		{
			Name:  "version",
			Usage: "display batchmint-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// read the configuration
	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// to suppress reading config file if certain commands
		command := c.Args().Get(0)
		if "version" == command || "help" == command || "" == command {
			return nil
		}

		file := c.GlobalString("config-file")
		if "" == file {
			return fmt.Errorf("config-file is required")
		}

		if verbose {
			fmt.Fprintf(e, "reading config file: %s\n", file)
		}

		options, err := configuration.GetConfiguration(file)
		if nil != err {
			return err
		}

		logging := options.Logging
		logging.File = app.Name + ".log"
		logging.Console = verbose
		if err := logger.Initialise(logging); nil != err {
			return err
		}

		c.App.Metadata["config"] = &metadata{
			file:    file,
			config:  options,
			verbose: verbose,
			e:       e,
			w:       w,
		}

		return nil
	}

	app.After = func(c *cli.Context) error {
		if _, ok := c.App.Metadata["config"].(*metadata); ok {
			logger.Finalise()
		}
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
