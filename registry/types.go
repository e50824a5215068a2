// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"encoding/json"
	"math/big"
	"strings"
	"time"
)

// Address - account identity on the registry chain
type Address string

// the all zero EVM address is used by pool contracts for "nobody"
const zeroAddress = "0x0000000000000000000000000000000000000000"

// IsZero - true for an empty or all zero address
func (a Address) IsZero() bool {
	return "" == a || zeroAddress == strings.ToLower(string(a))
}

// Equal - case insensitive compare, EVM addresses may carry a
// checksum in their letter case
func (a Address) Equal(b Address) bool {
	return strings.EqualFold(string(a), string(b))
}

func (a Address) String() string {
	return string(a)
}

// BundleProposal - the current proposal of the pool
type BundleProposal struct {
	Uploader     Address `json:"uploader"`
	NextUploader Address `json:"next_uploader"`
	BundleID     string  `json:"bundle_id"`
	ByteSize     uint64  `json:"byte_size"`
	FromHeight   uint64  `json:"from_height"`
	ToHeight     uint64  `json:"to_height"`
	CreatedAt    uint64  `json:"created_at"`
}

// Exists - true if some node has uploaded this proposal
func (p BundleProposal) Exists() bool {
	return !p.Uploader.IsZero() && "" != p.BundleID
}

// ItemCount - number of heights covered
func (p BundleProposal) ItemCount() uint64 {
	if p.ToHeight <= p.FromHeight {
		return 0
	}
	return p.ToHeight - p.FromHeight
}

// BundleInstructions - the next upload window
type BundleInstructions struct {
	Uploader   Address `json:"uploader"`
	FromHeight uint64  `json:"from_height"`
}

// Equal - same uploader and start height, all zero addresses match
func (b BundleInstructions) Equal(other BundleInstructions) bool {
	if b.FromHeight != other.FromHeight {
		return false
	}
	if b.Uploader.IsZero() {
		return other.Uploader.IsZero()
	}
	return b.Uploader.Equal(other.Uploader)
}

// PoolMetadata - decoded pool metadata
type PoolMetadata struct {
	Runtime  string `json:"runtime"`
	Versions string `json:"versions"`
	Name     string `json:"name,omitempty"`
	Logo     string `json:"logo,omitempty"`
}

// PoolConfig - decoded runtime specific pool configuration
//
// the registry does not interpret the content, it is kept as the
// original JSON object for the runtime
type PoolConfig json.RawMessage

// RawPoolState - pool state exactly as returned by a backend
type RawPoolState struct {
	Paused         bool               `json:"paused"`
	HeightArchived uint64             `json:"height_archived"`
	MinStake       string             `json:"min_stake"`
	MinBundleSize  uint64             `json:"min_bundle_size"`
	BundleSize     uint64             `json:"bundle_size"`
	UploadTimeout  uint64             `json:"upload_timeout"`
	BundleDelay    uint64             `json:"bundle_delay"`
	Config         string             `json:"config"`
	Metadata       string             `json:"metadata"`
	Proposal       BundleProposal     `json:"bundle_proposal"`
	Instructions   BundleInstructions `json:"bundle_instructions"`
	Stakers        []Address          `json:"stakers"`
}

// PoolState - decoded pool state
type PoolState struct {
	Paused         bool
	HeightArchived uint64
	MinStake       *big.Int
	MinBundleSize  uint64
	BundleSize     uint64 // items in the previous bundle
	UploadTimeout  time.Duration
	BundleDelay    time.Duration
	Config         PoolConfig
	Metadata       PoolMetadata
	Proposal       BundleProposal
	Instructions   BundleInstructions
	Stakers        []Address
}

// IsStaker - true if the address is in the staker list
func (s *PoolState) IsStaker(address Address) bool {
	for _, a := range s.Stakers {
		if a.Equal(address) {
			return true
		}
	}
	return false
}

// Vote - a validator's verdict on a proposal
type Vote struct {
	BundleID string `json:"bundle_id"`
	Valid    bool   `json:"valid"`
}

// Proposal - a new bundle for submission
type Proposal struct {
	BundleID  string `json:"bundle_id"`
	ByteSize  uint64 `json:"byte_size"`
	ItemCount uint64 `json:"item_count"`
}

// Eligibility - answer to a can-vote or can-propose query
type Eligibility struct {
	Possible bool   `json:"possible"`
	Reason   string `json:"reason"`
}

// Receipt - identifies a submitted transaction
type Receipt struct {
	Hash string `json:"hash"`
}
