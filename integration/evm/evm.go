// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package evm - runtime archiving the blocks of an EVM chain
package evm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/sync/errgroup"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/storage"
	"github.com/bitmark-inc/logger"
)

// runtime identity
const (
	Name    = "evm"
	Version = "1.0.0"
)

const (
	defaultBatchSize   = 20
	defaultConcurrency = 4
)

// Caller - JSON-RPC access to a node
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Runtime - fetches full blocks with their transactions
type Runtime struct {
	log         *logger.L
	caller      Caller
	batchSize   int
	concurrency int
}

// Dial - connect to a node's RPC endpoint
func Dial(ctx context.Context, endpoint string, batchSize int) (*Runtime, error) {
	client, err := rpc.DialContext(ctx, endpoint)
	if nil != err {
		return nil, fmt.Errorf("%w: rpc endpoint: %q: %s", fault.ErrConfigurationInvalid, endpoint, err)
	}
	return New(client, batchSize), nil
}

// New - runtime over an RPC client, batchSize <= 0 selects the default
func New(caller Caller, batchSize int) *Runtime {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	concurrency := defaultConcurrency
	if concurrency > batchSize {
		concurrency = batchSize
	}
	return &Runtime{
		log:         logger.New("evm"),
		caller:      caller,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// Name - runtime name as declared in pool metadata
func (r *Runtime) Name() string {
	return Name
}

// Version - runtime version
func (r *Runtime) Version() string {
	return Version
}

// FetchBatch - fetch up to batchSize blocks from fromHeight
//
// blocks are requested concurrently, the result stops before the first
// block the node does not have yet
func (r *Runtime) FetchBatch(ctx context.Context, fromHeight uint64) ([]storage.Item, error) {
	blocks := make([]json.RawMessage, r.batchSize)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i := range blocks {
		i := i
		g.Go(func() error {
			number := hexutil.EncodeUint64(fromHeight + uint64(i))
			return r.caller.CallContext(ctx, &blocks[i], "eth_getBlockByNumber", number, true)
		})
	}
	if err := g.Wait(); nil != err {
		return nil, err
	}

	items := make([]storage.Item, 0, len(blocks))
	for i, block := range blocks {
		if isNull(block) {
			break
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, block); nil != err {
			return nil, err
		}
		items = append(items, storage.Item{
			Height: fromHeight + uint64(i),
			Value:  compact.Bytes(),
		})
	}

	r.log.Debugf("from: %d  fetched: %d", fromHeight, len(items))
	return items, nil
}

func isNull(block json.RawMessage) bool {
	trimmed := bytes.TrimSpace(block)
	return 0 == len(trimmed) || bytes.Equal(trimmed, []byte("null"))
}
