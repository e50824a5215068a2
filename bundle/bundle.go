// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bundle - building, encoding and comparing bundles of
// cached items
package bundle

import (
	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/storage"
)

// Bundle - contiguous run of items covering [FromHeight, ToHeight)
type Bundle struct {
	FromHeight uint64
	ToHeight   uint64
	Items      []storage.Item
}

// ItemCount - number of items in the bundle
func (b *Bundle) ItemCount() uint64 {
	return uint64(len(b.Items))
}

// Limits - caps applied when building a bundle, zero means no cap
type Limits struct {
	MaximumBytes uint64
	MaximumItems int
}

// Source - cached payloads by height
type Source interface {
	Get(height uint64) ([]byte, error)
}

// Build - collect consecutive items starting at from
//
// stops at the first height that is not cached, or before the next
// item would take the bundle over either limit; the byte limit applies
// to the sum of the raw payload sizes
func Build(source Source, from uint64, limits Limits) (*Bundle, error) {
	b := &Bundle{
		FromHeight: from,
		ToHeight:   from,
	}

	total := uint64(0)
	for height := from; ; height += 1 {
		if limits.MaximumItems > 0 && len(b.Items) >= limits.MaximumItems {
			break
		}

		value, err := source.Get(height)
		if fault.IsErrNotFound(err) {
			break
		}
		if nil != err {
			return nil, err
		}

		size := uint64(len(value))
		if limits.MaximumBytes > 0 && total+size > limits.MaximumBytes {
			break
		}

		total += size
		b.Items = append(b.Items, storage.Item{
			Height: height,
			Value:  value,
		})
		b.ToHeight = height + 1
	}

	return b, nil
}
