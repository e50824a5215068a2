// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

// the subset of the pool contract used by a node
const poolABI = `[
{"type":"function","name":"paused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"heightArchived","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"minStake","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"minBundleSize","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"bundleSize","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"uploadTimeout","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"bundleDelay","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"config","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"metadata","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"token","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"getStakers","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
{"type":"function","name":"bundleProposal","stateMutability":"view","inputs":[],"outputs":[
  {"name":"uploader","type":"address"},
  {"name":"nextUploader","type":"address"},
  {"name":"bundleId","type":"string"},
  {"name":"byteSize","type":"uint256"},
  {"name":"fromHeight","type":"uint256"},
  {"name":"toHeight","type":"uint256"},
  {"name":"createdAt","type":"uint256"}]},
{"type":"function","name":"bundleInstructions","stateMutability":"view","inputs":[],"outputs":[
  {"name":"uploader","type":"address"},
  {"name":"fromHeight","type":"uint256"}]},
{"type":"function","name":"isValidator","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"canVote","stateMutability":"view","inputs":[{"name":"voter","type":"address"},{"name":"bundleId","type":"string"}],"outputs":[{"name":"possible","type":"bool"},{"name":"reason","type":"string"}]},
{"type":"function","name":"canPropose","stateMutability":"view","inputs":[{"name":"proposer","type":"address"},{"name":"fromHeight","type":"uint256"}],"outputs":[{"name":"possible","type":"bool"},{"name":"reason","type":"string"}]},
{"type":"function","name":"stakeOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"commissionOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"vote","stateMutability":"nonpayable","inputs":[{"name":"bundleId","type":"string"},{"name":"valid","type":"bool"}],"outputs":[]},
{"type":"function","name":"claimUploaderRole","stateMutability":"nonpayable","inputs":[],"outputs":[]},
{"type":"function","name":"submitBundleProposal","stateMutability":"nonpayable","inputs":[{"name":"bundleId","type":"string"},{"name":"byteSize","type":"uint256"},{"name":"bundleSize","type":"uint256"}],"outputs":[]},
{"type":"function","name":"stake","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"unstake","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"updateCommission","stateMutability":"nonpayable","inputs":[{"name":"commission","type":"uint256"}],"outputs":[]}
]`

// ERC20 calls needed before staking
const tokenABI = `[
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`
