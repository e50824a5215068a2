// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/bitmark-inc/archivenode/fault"
)

// DecodePoolState - convert the raw on-chain form
//
// an undecodable config or metadata is a fatal error, the node cannot
// operate on a pool it does not understand
func DecodePoolState(raw *RawPoolState) (*PoolState, error) {

	config := []byte(strings.TrimSpace(raw.Config))
	if 0 == len(config) {
		config = []byte("{}")
	}
	if !json.Valid(config) || '{' != config[0] {
		return nil, fault.ErrUnparseableConfig
	}
	compact := &bytes.Buffer{}
	if err := json.Compact(compact, config); nil != err {
		return nil, fault.ErrUnparseableConfig
	}

	metadata := PoolMetadata{}
	if err := json.Unmarshal([]byte(raw.Metadata), &metadata); nil != err {
		return nil, fmt.Errorf("%w: %s", fault.ErrUnparseableMetadata, err)
	}

	minStake := big.NewInt(0)
	if "" != raw.MinStake {
		if _, ok := minStake.SetString(raw.MinStake, 10); !ok {
			return nil, fmt.Errorf("%w: min stake: %q", fault.ErrUnparseableConfig, raw.MinStake)
		}
	}

	state := &PoolState{
		Paused:         raw.Paused,
		HeightArchived: raw.HeightArchived,
		MinStake:       minStake,
		MinBundleSize:  raw.MinBundleSize,
		BundleSize:     raw.BundleSize,
		UploadTimeout:  time.Duration(raw.UploadTimeout) * time.Second,
		BundleDelay:    time.Duration(raw.BundleDelay) * time.Second,
		Config:         PoolConfig(compact.Bytes()),
		Metadata:       metadata,
		Proposal:       raw.Proposal,
		Instructions:   raw.Instructions,
		Stakers:        raw.Stakers,
	}
	return state, nil
}
