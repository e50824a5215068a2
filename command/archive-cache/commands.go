// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"

	"github.com/docker/go-units"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/archivenode/bundle"
	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/storage"
)

type infoReply struct {
	Directory string `json:"directory"`
	Tail      uint64 `json:"tail"`
	Head      uint64 `json:"head"`
	Items     uint64 `json:"items"`
	Size      uint64 `json:"size"`
	HumanSize string `json:"human_size"`
}

type itemReply struct {
	Key   uint64          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type decodeReply struct {
	Bytes      int         `json:"bytes"`
	Digest     string      `json:"digest"`
	FromHeight uint64      `json:"from_height"`
	ToHeight   uint64      `json:"to_height"`
	Items      []itemReply `json:"items"`
}

func openCache(c *cli.Context, readOnly bool) (*storage.Store, *metadata, error) {
	m := c.App.Metadata["config"].(*metadata)
	if "" == m.directory {
		return nil, nil, fmt.Errorf("cache directory is required")
	}
	store, err := storage.Open(m.directory, readOnly)
	if nil != err {
		return nil, nil, err
	}
	return store, m, nil
}

func heightArgument(c *cli.Context) (uint64, error) {
	if 1 != c.NArg() {
		return 0, fmt.Errorf("expected one HEIGHT argument")
	}
	height, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if nil != err {
		return 0, fmt.Errorf("%w: %q", fault.ErrInvalidHeight, c.Args().First())
	}
	return height, nil
}

// missing pointers read as zero
func pointer(get func() (uint64, error)) (uint64, error) {
	n, err := get()
	if nil != err && !fault.IsErrNotFound(err) {
		return 0, err
	}
	return n, nil
}

func runInfo(c *cli.Context) error {
	store, m, err := openCache(c, true)
	if nil != err {
		return err
	}
	defer store.Close()

	tail, err := pointer(store.Tail)
	if nil != err {
		return err
	}
	head, err := pointer(store.Head)
	if nil != err {
		return err
	}
	size, err := store.SizeOnDisk()
	if nil != err {
		return err
	}

	reply := infoReply{
		Directory: store.Directory(),
		Tail:      tail,
		Head:      head,
		Size:      size,
		HumanSize: units.BytesSize(float64(size)),
	}
	if head > tail {
		reply.Items = head - tail
	}
	return printJson(m.w, reply)
}

func runGet(c *cli.Context) error {
	height, err := heightArgument(c)
	if nil != err {
		return err
	}

	store, m, err := openCache(c, true)
	if nil != err {
		return err
	}
	defer store.Close()

	value, err := store.Get(height)
	if nil != err {
		return err
	}
	return printJson(m.w, itemReply{Key: height, Value: value})
}

func runDump(c *cli.Context) error {
	store, m, err := openCache(c, true)
	if nil != err {
		return err
	}
	defer store.Close()

	items, err := store.Items(c.Uint64("from"), c.Int("count"))
	if nil != err {
		return err
	}

	reply := make([]itemReply, len(items))
	for i, item := range items {
		reply[i] = itemReply{Key: item.Height, Value: item.Value}
	}
	return printJson(m.w, reply)
}

func runEvict(c *cli.Context) error {
	height, err := heightArgument(c)
	if nil != err {
		return err
	}

	store, m, err := openCache(c, false)
	if nil != err {
		return err
	}
	defer store.Close()

	deleted, err := store.Evict(height)
	if nil != err {
		return err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "evicted below: %d\n", height)
	}
	return printJson(m.w, map[string]int{"deleted": deleted})
}

func runDecode(c *cli.Context) error {
	if 1 != c.NArg() {
		return fmt.Errorf("expected one FILE argument")
	}
	m := c.App.Metadata["config"].(*metadata)

	data, err := ioutil.ReadFile(c.Args().First())
	if nil != err {
		return err
	}
	reply, err := decodeBundle(data)
	if nil != err {
		return err
	}
	return printJson(m.w, reply)
}

// decoded bundle with [from, to) taken from the item keys
func decodeBundle(data []byte) (*decodeReply, error) {
	items, err := bundle.Decode(data)
	if nil != err {
		return nil, err
	}

	digest := bundle.Digest(data)
	reply := &decodeReply{
		Bytes:  len(data),
		Digest: hex.EncodeToString(digest[:]),
		Items:  make([]itemReply, len(items)),
	}
	for i, item := range items {
		reply.Items[i] = itemReply{Key: item.Height, Value: item.Value}
	}
	if 0 != len(items) {
		reply.FromHeight = items[0].Height
		reply.ToHeight = items[len(items)-1].Height + 1
	}
	return reply, nil
}

func runVersion(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s\n", c.App.Version)
	return nil
}

func printJson(handle io.Writer, message interface{}) error {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
