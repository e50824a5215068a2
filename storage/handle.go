// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/archivenode/fault"
)

// PoolHandle - a prefix-tagged key space of the database
type PoolHandle struct {
	prefix   byte
	limit    []byte
	database *leveldb.DB
}

// Element - a binary key/value pair
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) error {
	return p.database.Put(p.prefixKey(key), value, nil)
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) error {
	return p.database.Delete(p.prefixKey(key), nil)
}

// Get - read a value for a given key
//
// a missing key is fault.ErrNotFound
func (p *PoolHandle) Get(key []byte) ([]byte, error) {
	value, err := p.database.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrNotFound
	}
	if nil != err {
		return nil, err
	}
	return value, nil
}

// batch versions of put and delete
func (p *PoolHandle) batchPut(batch *leveldb.Batch, key []byte, value []byte) {
	batch.Put(p.prefixKey(key), value)
}

func (p *PoolHandle) batchDelete(batch *leveldb.Batch, key []byte) {
	batch.Delete(p.prefixKey(key))
}

// key range [start, limit) within the pool, nil limit is the end of
// the pool
func (p *PoolHandle) keyRange(start []byte, limit []byte) *ldb_util.Range {
	r := &ldb_util.Range{
		Start: p.prefixKey(start),
		Limit: p.limit,
	}
	if nil != limit {
		r.Limit = p.prefixKey(limit)
	}
	return r
}
