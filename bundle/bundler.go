// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bundle

import (
	"context"
	"fmt"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/registry"
	"github.com/bitmark-inc/archivenode/storage"
)

// Bundler - assembles bundles from locally cached data
type Bundler interface {
	// new bundle for the upload window given by the instructions
	CreateBundle(ctx context.Context, instructions registry.BundleInstructions, limits Limits) (*Bundle, error)

	// encoded copy of the bundle a proposal claims to have uploaded
	LoadBundle(ctx context.Context, proposal registry.BundleProposal) ([]byte, error)
}

// CacheBundler - Bundler over the sequential cache
type CacheBundler struct {
	source Source
}

// NewCacheBundler - bundler reading from a cache
func NewCacheBundler(source Source) *CacheBundler {
	return &CacheBundler{
		source: source,
	}
}

// CreateBundle - build from the instructed start height
func (c *CacheBundler) CreateBundle(ctx context.Context, instructions registry.BundleInstructions, limits Limits) (*Bundle, error) {
	if err := ctx.Err(); nil != err {
		return nil, err
	}
	return Build(c.source, instructions.FromHeight, limits)
}

// LoadBundle - encode [FromHeight, ToHeight) of the proposal
//
// every height must be cached, otherwise fault.ErrMissingBundleData
func (c *CacheBundler) LoadBundle(ctx context.Context, proposal registry.BundleProposal) ([]byte, error) {
	if proposal.ToHeight <= proposal.FromHeight {
		return nil, fault.ErrEmptyBundle
	}

	items := make([]storage.Item, 0, proposal.ItemCount())
	for height := proposal.FromHeight; height < proposal.ToHeight; height += 1 {
		if err := ctx.Err(); nil != err {
			return nil, err
		}
		value, err := c.source.Get(height)
		if fault.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: height: %d", fault.ErrMissingBundleData, height)
		}
		if nil != err {
			return nil, err
		}
		items = append(items, storage.Item{
			Height: height,
			Value:  value,
		})
	}

	return Encode(items)
}
