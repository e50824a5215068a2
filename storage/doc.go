// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - the sequential item cache
//
// items are kept in a LevelDB database keyed by big endian height so
// that iteration order is height order.  Two pointer records mark
// the cached range:
//
//   head - next height to be ingested
//   tail - lowest height still retained
//
// every retained item satisfies: tail <= height < head
//
// the ingest worker only appends at head and the coordinator only
// evicts below the archived height, Append and Evict are serialised
// so their read-modify-write of the pointers never interleave.
package storage
