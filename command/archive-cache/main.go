// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/archivenode/version"
	"github.com/bitmark-inc/logger"
)

type metadata struct {
	directory string
	verbose   bool
	e         io.Writer
	w         io.Writer
}

func main() {

	app := cli.NewApp()
	app.Name = "archive-cache"
	app.Usage = "inspect and maintain the item cache of a stopped archive node"
	app.Version = version.Version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "cache, c",
			Value: "",
			Usage: "*cache `DIRECTORY` of the node",
		},
		cli.StringFlag{
			Name:  "log-directory, l",
			Value: os.TempDir(),
			Usage: " write the tool's log to `DIRECTORY`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "info",
			Usage:  "display the cache pointers and size",
			Action: runInfo,
		},
		{
			Name:      "get",
			Usage:     "display one cached item",
			ArgsUsage: "HEIGHT",
			Action:    runGet,
		},
		{
			Name:      "dump",
			Usage:     "dump cached items as JSON",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "from, f",
					Value: 0,
					Usage: " first `HEIGHT`",
				},
				cli.IntFlag{
					Name:  "count, n",
					Value: 10,
					Usage: " maximum number of items `COUNT`",
				},
			},
			Action: runDump,
		},
		{
			Name:      "evict",
			Usage:     "delete every item below a height",
			ArgsUsage: "HEIGHT",
			Action:    runEvict,
		},
		{
			Name:      "decode",
			Usage:     "display the items and digest of a downloaded bundle",
			ArgsUsage: "FILE",
			Action:    runDecode,
		},
		{
			Name:   "version",
			Usage:  "display version",
			Action: runVersion,
		},
	}

	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		level := "critical"
		if verbose {
			level = "info"
		}
		err := logger.Initialise(logger.Configuration{
			Directory: c.GlobalString("log-directory"),
			File:      app.Name + ".log",
			Size:      1048576,
			Count:     2,
			Console:   false,
			Levels: map[string]string{
				logger.DefaultTag: level,
			},
		})
		if nil != err {
			return err
		}

		directory := c.GlobalString("cache")
		if verbose {
			fmt.Fprintf(e, "cache: %q\n", directory)
		}

		c.App.Metadata["config"] = &metadata{
			directory: directory,
			verbose:   verbose,
			e:         e,
			w:         w,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		logger.Finalise()
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
