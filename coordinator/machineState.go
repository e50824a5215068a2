// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

// a state type for the round machine
type state int

// states of one round
const (
	// fetch pool state and start a new session
	cStateRefresh state = iota

	// wait while the pool is paused
	cStateCheckPaused state = iota

	// confirm this node is an active validator
	cStateCheckRole state = iota

	// drop archived items from the cache
	cStateEvict state = iota

	// check and vote on another node's proposal
	cStateValidate state = iota

	// build and propose the next bundle if selected
	cStateDecideUpload state = iota

	// wait for the next proposal
	cStateAwaitNext state = iota
)

func (state state) String() string {
	switch state {
	case cStateRefresh:
		return "Refresh"
	case cStateCheckPaused:
		return "CheckPaused"
	case cStateCheckRole:
		return "CheckRole"
	case cStateEvict:
		return "Evict"
	case cStateValidate:
		return "Validate"
	case cStateDecideUpload:
		return "DecideUpload"
	case cStateAwaitNext:
		return "AwaitNext"
	default:
		return "*Unknown*"
	}
}
