// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chain - names of the supported registry networks and their
// default endpoints
package chain

// names of all chains
const (
	Mainnet = "mainnet"
	Testnet = "testnet"
	Local   = "local"
)

// default REST endpoints of each chain
var defaultEndpoints = map[string]string{
	Mainnet: "https://api.archive-pool.network",
	Testnet: "https://api.testnet.archive-pool.network",
	Local:   "http://127.0.0.1:1317",
}

// Valid - validate a chain name
func Valid(name string) bool {
	switch name {
	case Mainnet, Testnet, Local:
		return true
	default:
		return false
	}
}

// DefaultEndpoint - registry endpoint used when the configuration
// gives none
func DefaultEndpoint(name string) (string, bool) {
	endpoint, ok := defaultEndpoints[name]
	return endpoint, ok
}
