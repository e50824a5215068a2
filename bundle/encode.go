// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/storage"
)

// maximum size of a decompressed bundle
const maximumDecodedSize = 1 << 30

// wire form of one item
type entry struct {
	Key   uint64          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Encode - serialise items as a gzip compressed JSON array
//
// payloads must be JSON documents; the gzip header carries no name or
// time so any node encoding the same items produces the same bytes
func Encode(items []storage.Item) ([]byte, error) {
	entries := make([]entry, len(items))
	for i, item := range items {
		if !json.Valid(item.Value) {
			return nil, fmt.Errorf("%w: height: %d", fault.ErrInvalidItem, item.Height)
		}
		entries[i] = entry{
			Key:   item.Height,
			Value: item.Value,
		}
	}

	data, err := json.Marshal(entries)
	if nil != err {
		return nil, err
	}

	var buffer bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buffer, gzip.BestCompression)
	if nil != err {
		return nil, err
	}
	if _, err := zw.Write(data); nil != err {
		return nil, err
	}
	if err := zw.Close(); nil != err {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// Decode - inverse of Encode
func Decode(data []byte) ([]storage.Item, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if nil != err {
		return nil, fmt.Errorf("%w: %s", fault.ErrInvalidBundle, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(io.LimitReader(zr, maximumDecodedSize))
	if nil != err {
		return nil, fmt.Errorf("%w: %s", fault.ErrInvalidBundle, err)
	}

	entries := []entry{}
	if err := json.Unmarshal(raw, &entries); nil != err {
		return nil, fmt.Errorf("%w: %s", fault.ErrInvalidBundle, err)
	}

	items := make([]storage.Item, len(entries))
	for i, e := range entries {
		items[i] = storage.Item{
			Height: e.Key,
			Value:  []byte(e.Value),
		}
	}
	return items, nil
}
