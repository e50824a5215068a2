// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/docker/go-units"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/keypair"
	"github.com/bitmark-inc/archivenode/storage"
	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"
)

const (
	registryKeyFilename = "registry.key"
	archiveKeyFilename  = "archive.key"
)

// setup command handler
//
// commands that run to create key files these commands cannot access
// any internal database or states or the configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "generate-key", "key":
		fileName := registryKeyFilename
		if len(arguments) > 0 && "" != arguments[0] {
			fileName = arguments[0]
		}

		key, err := keypair.New()
		if nil != err {
			exitwithstatus.Message("generate key: %q error: %s", fileName, err)
		}
		if err := key.WriteFile(fileName); nil != err {
			exitwithstatus.Message("generate key: %q error: %s", fileName, err)
		}

		fmt.Printf("generated key: %q\n", fileName)
		fmt.Printf("address: %s\n", key.Address())

	case "start", "run":
		return false // continue processing

	case "name", "config-test", "cfg":
		return false // defer processing until configuration is read

	case "cache-info", "info":
		return false // defer processing until the cache is open

	case "version", "v":
		fmt.Printf("%s\n", version)

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")

		fmt.Printf("  generate-key [FILE]        (key)    - create an ed25519 key in: %q\n", "FILE")
		fmt.Printf("                                        default: %q, use %q for the archive gateway\n", registryKeyFilename, archiveKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  name                                - display the node name and address\n")
		fmt.Printf("\n")

		fmt.Printf("  cache-info                 (info)   - display the cache pointers and size\n")
		fmt.Printf("\n")
	}

	// indicate processing complete and prefor normal exit from main
	return true
}

// configuration command handler
//
// commands that run after the configuration is read but before any
// logging or storage is started
func processConfigCommand(arguments []string, options *Configuration, identity *nodeIdentity) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		fmt.Printf("configuration: OK\n")
		fmt.Printf("  network:  %s\n", options.Network)
		fmt.Printf("  pool:     %s\n", options.Pool)
		fmt.Printf("  registry: %s %s\n", options.Registry.Backend, options.Registry.Endpoint)
		fmt.Printf("  archive:  %s\n", options.Archive.Backend)
		fmt.Printf("  runtime:  %s %s\n", options.Runtime.Name, options.Runtime.Endpoint)
		fmt.Printf("  cache:    %s  limit: %s\n", identity.cacheDirectory, units.BytesSize(float64(options.cacheSpace)))

	case "name":
		fmt.Printf("name: %s\n", identity.name)
		fmt.Printf("address: %s\n", identity.address)

	default:
		return false
	}

	return true
}

// data command handler
//
// commands that need the cache to be open
func processDataCommand(log *logger.L, arguments []string, store *storage.Store) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "cache-info", "info":
		head, err := store.Head()
		if nil != err && !fault.IsErrNotFound(err) {
			exitwithstatus.Message("cache head error: %s", err)
		}
		tail, err := store.Tail()
		if nil != err && !fault.IsErrNotFound(err) {
			exitwithstatus.Message("cache tail error: %s", err)
		}
		size, err := store.SizeOnDisk()
		if nil != err {
			exitwithstatus.Message("cache size error: %s", err)
		}
		log.Infof("cache info: tail: %d  head: %d  size: %d", tail, head, size)

		fmt.Printf("directory: %s\n", filepath.Clean(store.Directory()))
		fmt.Printf("tail:      %d\n", tail)
		fmt.Printf("head:      %d\n", head)
		items := uint64(0)
		if head > tail {
			items = head - tail
		}
		fmt.Printf("items:     %d\n", items)
		fmt.Printf("size:      %s\n", units.BytesSize(float64(size)))

	default:
		return false
	}

	return true
}
