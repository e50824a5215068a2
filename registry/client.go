// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"context"
	"math/big"
)

// Client - access to one pool of the registry
//
// read calls return transient errors on connectivity problems, the
// transaction calls return the receipt once the transaction was
// accepted by the backend
type Client interface {
	// identity of this node
	Address() Address

	FetchPoolState(ctx context.Context) (*RawPoolState, error)
	IsValidator(ctx context.Context, address Address) (bool, error)
	CanVote(ctx context.Context, bundleID string) (Eligibility, error)
	CanPropose(ctx context.Context, fromHeight uint64) (Eligibility, error)

	Vote(ctx context.Context, vote Vote) (Receipt, error)
	ClaimUploaderRole(ctx context.Context) (Receipt, error)
	SubmitBundleProposal(ctx context.Context, proposal Proposal) (Receipt, error)

	// stake and commission are in the smallest token unit
	StakeOf(ctx context.Context, address Address) (*big.Int, error)
	Stake(ctx context.Context, amount *big.Int) (Receipt, error)
	Unstake(ctx context.Context, amount *big.Int) (Receipt, error)
	CommissionOf(ctx context.Context, address Address) (*big.Int, error)
	UpdateCommission(ctx context.Context, commission *big.Int) (Receipt, error)
}
