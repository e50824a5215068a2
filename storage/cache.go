// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/util"
)

// Item - one ingested payload and its height
type Item struct {
	Height uint64
	Value  []byte
}

// pointer record keys
var (
	headKey = []byte("head")
	tailKey = []byte("tail")
)

func heightKey(height uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, height)
	return key
}

// Put - store the payload for a height
func (s *Store) Put(height uint64, value []byte) error {
	return s.pool.Items.Put(heightKey(height), value)
}

// Get - fetch the payload for a height
//
// fault.ErrNotFound if the height is not cached
func (s *Store) Get(height uint64) ([]byte, error) {
	return s.pool.Items.Get(heightKey(height))
}

// Delete - remove the payload for a height
func (s *Store) Delete(height uint64) error {
	return s.pool.Items.Delete(heightKey(height))
}

// Head - the next height to ingest
//
// fault.ErrNotFound before the first append
func (s *Store) Head() (uint64, error) {
	return s.getPointer(headKey)
}

// Tail - the lowest retained height
//
// fault.ErrNotFound before the first eviction
func (s *Store) Tail() (uint64, error) {
	return s.getPointer(tailKey)
}

// SetHead - overwrite the head pointer
func (s *Store) SetHead(height uint64) error {
	s.Lock()
	defer s.Unlock()
	return s.pool.Pointers.Put(headKey, heightKey(height))
}

// SetTail - overwrite the tail pointer
func (s *Store) SetTail(height uint64) error {
	s.Lock()
	defer s.Unlock()
	return s.pool.Pointers.Put(tailKey, heightKey(height))
}

func (s *Store) getPointer(key []byte) (uint64, error) {
	buffer, err := s.pool.Pointers.Get(key)
	if nil != err {
		return 0, err
	}
	if 8 != len(buffer) {
		return 0, fault.ErrPointerRecordTruncated
	}
	return binary.BigEndian.Uint64(buffer), nil
}

// like getPointer but a missing pointer is reported as not found
// instead of an error
func (s *Store) optionalPointer(key []byte) (uint64, bool, error) {
	n, err := s.getPointer(key)
	if fault.IsErrNotFound(err) {
		return 0, false, nil
	}
	if nil != err {
		return 0, false, err
	}
	return n, true, nil
}

// Append - write a batch of items and advance head in one atomic
// write
//
// items below tail are already archived and are dropped, items at or
// above newHead are ignored and head never moves backwards
func (s *Store) Append(items []Item, newHead uint64) error {
	s.Lock()
	defer s.Unlock()

	tail, hasTail, err := s.optionalPointer(tailKey)
	if nil != err {
		return err
	}
	head, hasHead, err := s.optionalPointer(headKey)
	if nil != err {
		return err
	}

	batch := new(leveldb.Batch)
	for _, item := range items {
		if hasTail && item.Height < tail {
			continue
		}
		if item.Height >= newHead {
			continue
		}
		s.pool.Items.batchPut(batch, heightKey(item.Height), item.Value)
	}

	if !hasHead || newHead > head {
		s.pool.Pointers.batchPut(batch, headKey, heightKey(newHead))
	}

	return s.db.Write(batch, nil)
}

// Evict - delete every item below archived and set tail to archived
//
// a call with archived at or below tail does nothing; returns the
// number of items deleted
func (s *Store) Evict(archived uint64) (int, error) {
	s.Lock()
	defer s.Unlock()

	tail, hasTail, err := s.optionalPointer(tailKey)
	if nil != err {
		return 0, err
	}

	if !hasTail {
		// first eviction: tail is seeded from archived and anything
		// older that was ingested before it is removed
		s.log.Infof("initial tail: %d", archived)
		tail = 0
	} else if archived <= tail {
		return 0, nil
	}

	batch := new(leveldb.Batch)
	deleted := 0

	iter := s.db.NewIterator(s.pool.Items.keyRange(heightKey(tail), heightKey(archived)), nil)
	for iter.Next() {
		// strip the pool prefix, the batch copies the key
		s.pool.Items.batchDelete(batch, iter.Key()[1:])
		deleted += 1
	}
	iter.Release()
	if err := iter.Error(); nil != err {
		return 0, err
	}

	s.pool.Pointers.batchPut(batch, tailKey, heightKey(archived))

	if err := s.db.Write(batch, nil); nil != err {
		return 0, err
	}

	s.log.Debugf("evicted: %d items  tail: %d -> %d", deleted, tail, archived)
	return deleted, nil
}

// SizeOnDisk - bytes used by the database files
func (s *Store) SizeOnDisk() (uint64, error) {
	return util.DirectorySize(s.directory)
}
