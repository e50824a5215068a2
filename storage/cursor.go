// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/bitmark-inc/archivenode/fault"
)

// Items - return up to count cached items in height order starting
// at the first cached height >= from
//
// gaps are skipped, use Get to test a specific height
func (s *Store) Items(from uint64, count int) ([]Item, error) {
	if count <= 0 {
		return nil, fault.ErrInvalidCount
	}

	iter := s.db.NewIterator(s.pool.Items.keyRange(heightKey(from), nil), nil)
	defer iter.Release()

	results := make([]Item, 0, count)
	for len(results) < count && iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		if 9 != len(key) {
			return nil, fault.ErrInvalidKeyLength
		}

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		results = append(results, Item{
			Height: binary.BigEndian.Uint64(key[1:]),
			Value:  dataValue,
		})
	}
	if err := iter.Error(); nil != err {
		return nil, err
	}
	return results, nil
}
