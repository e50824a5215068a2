// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry - the on-chain pool registry as seen by a node
//
// the Client interface is the only way the node reads pool state or
// sends transactions.  Concrete backends live in the sub-packages:
//
//   registry/rest     - JSON REST gateway, ed25519 signed transactions
//   registry/contract - EVM pool contract
//
// pool config and metadata are stored on chain as encoded strings, a
// RawPoolState must be passed through DecodePoolState before use.
package registry
