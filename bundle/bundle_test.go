// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bundle_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/archivenode/bundle"
	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/registry"
	"github.com/bitmark-inc/archivenode/storage"
)

// in-memory cache
type memorySource map[uint64][]byte

func (m memorySource) Get(height uint64) ([]byte, error) {
	v, ok := m[height]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return v, nil
}

// ten byte JSON payloads
func makeSource(from uint64, to uint64) memorySource {
	m := memorySource{}
	for h := from; h < to; h += 1 {
		m[h] = []byte(fmt.Sprintf(`{"h":%d}`, 1000+h))
	}
	return m
}

func TestBuildStopsAtMissing(t *testing.T) {
	source := makeSource(10, 15)

	b, err := bundle.Build(source, 10, bundle.Limits{})
	assert.Nil(t, err, "build")
	assert.Equal(t, uint64(10), b.FromHeight, "from")
	assert.Equal(t, uint64(15), b.ToHeight, "to")
	assert.Equal(t, uint64(5), b.ItemCount(), "count")
	for i, item := range b.Items {
		assert.Equal(t, uint64(10+i), item.Height, "height %d", i)
	}

	b, err = bundle.Build(source, 20, bundle.Limits{})
	assert.Nil(t, err, "build")
	assert.Equal(t, uint64(0), b.ItemCount(), "nothing cached")
	assert.Equal(t, b.FromHeight, b.ToHeight, "empty range")
}

func TestBuildLimits(t *testing.T) {
	source := makeSource(0, 100)

	tests := []struct {
		limits bundle.Limits
		count  uint64
	}{
		{bundle.Limits{MaximumItems: 7}, 7},
		{bundle.Limits{MaximumBytes: 35}, 3},
		{bundle.Limits{MaximumBytes: 40}, 4},
		{bundle.Limits{MaximumBytes: 55, MaximumItems: 9}, 5},
		{bundle.Limits{MaximumBytes: 500, MaximumItems: 9}, 9},
		{bundle.Limits{MaximumBytes: 9}, 0},
	}

	for i, test := range tests {
		b, err := bundle.Build(source, 0, test.limits)
		assert.Nil(t, err, "build %d", i)
		assert.Equal(t, test.count, b.ItemCount(), "count %d", i)
		assert.Equal(t, test.count, b.ToHeight, "to %d", i)

		total := uint64(0)
		for _, item := range b.Items {
			total += uint64(len(item.Value))
		}
		if 0 != test.limits.MaximumBytes {
			assert.LessOrEqual(t, total, test.limits.MaximumBytes, "bytes %d", i)
		}
	}
}

type brokenSource struct{}

var errDisk = errors.New("disk error")

func (brokenSource) Get(height uint64) ([]byte, error) {
	return nil, errDisk
}

func TestBuildError(t *testing.T) {
	_, err := bundle.Build(brokenSource{}, 0, bundle.Limits{})
	assert.Equal(t, errDisk, err, "error")
}

func TestEncodeDecode(t *testing.T) {
	items := []storage.Item{
		{Height: 5, Value: []byte(`{"hash":"0x01","n":1}`)},
		{Height: 6, Value: []byte(`[1,2,3]`)},
		{Height: 7, Value: []byte(`"text"`)},
	}

	data, err := bundle.Encode(items)
	assert.Nil(t, err, "encode")

	again, err := bundle.Encode(items)
	assert.Nil(t, err, "encode again")
	assert.Equal(t, data, again, "encoding is not reproducible")

	decoded, err := bundle.Decode(data)
	assert.Nil(t, err, "decode")
	assert.Equal(t, items, decoded, "items")
}

func TestEncodeInvalidItem(t *testing.T) {
	items := []storage.Item{
		{Height: 5, Value: []byte(`{}`)},
		{Height: 6, Value: []byte(`{not json`)},
	}
	_, err := bundle.Encode(items)
	assert.True(t, errors.Is(err, fault.ErrInvalidItem), "error: %v", err)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := bundle.Decode([]byte("plain text"))
	assert.True(t, errors.Is(err, fault.ErrInvalidBundle), "error: %v", err)
}

func TestCompare(t *testing.T) {
	a := []byte("some bundle data")
	b := []byte("some bundle data")
	c := []byte("some bundle dat!")

	la := uint64(len(a))

	assert.True(t, bundle.Compare(a, la, b, la), "equal")
	assert.True(t, bundle.Compare(b, la, a, la), "equal reversed")

	assert.False(t, bundle.Compare(a, la, c, la), "one byte changed")
	assert.False(t, bundle.Compare(c, la, a, la), "one byte changed reversed")

	// identical content, but the recorded sizes disagree
	assert.False(t, bundle.Compare(a, la, b, la+1), "length mismatch")
	assert.False(t, bundle.Compare(a, la+1, b, la), "length mismatch reversed")
}

func TestCacheBundler(t *testing.T) {
	source := makeSource(100, 120)
	bundler := bundle.NewCacheBundler(source)
	ctx := context.Background()

	b, err := bundler.CreateBundle(ctx, registry.BundleInstructions{FromHeight: 105}, bundle.Limits{MaximumItems: 10})
	assert.Nil(t, err, "create")
	assert.Equal(t, uint64(105), b.FromHeight, "from")
	assert.Equal(t, uint64(115), b.ToHeight, "to")

	uploaded, err := bundle.Encode(b.Items)
	assert.Nil(t, err, "encode")

	proposal := registry.BundleProposal{
		Uploader:   "0x01",
		BundleID:   "id",
		FromHeight: b.FromHeight,
		ToHeight:   b.ToHeight,
		ByteSize:   uint64(len(uploaded)),
	}
	loaded, err := bundler.LoadBundle(ctx, proposal)
	assert.Nil(t, err, "load")
	assert.True(t, bundle.Compare(uploaded, proposal.ByteSize, loaded, uint64(len(loaded))), "validators rebuild the same bytes")

	proposal.ToHeight = 125
	_, err = bundler.LoadBundle(ctx, proposal)
	assert.True(t, errors.Is(err, fault.ErrMissingBundleData), "missing: %v", err)
	assert.True(t, fault.IsErrNotFound(err), "missing is not found")

	proposal.ToHeight = proposal.FromHeight
	_, err = bundler.LoadBundle(ctx, proposal)
	assert.Equal(t, fault.ErrEmptyBundle, err, "empty")
}

func TestCacheBundlerCancelled(t *testing.T) {
	bundler := bundle.NewCacheBundler(makeSource(0, 10))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bundler.CreateBundle(ctx, registry.BundleInstructions{}, bundle.Limits{})
	assert.Equal(t, context.Canceled, err, "create")

	_, err = bundler.LoadBundle(ctx, registry.BundleProposal{FromHeight: 0, ToHeight: 5})
	assert.Equal(t, context.Canceled, err, "load")
}
