// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package stake - bring the node's stake and commission to the
// configured values at start up
package stake

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/registry"
	"github.com/bitmark-inc/logger"
)

// Decimals - token decimals used by ParseAmount
const Decimals = 18

// Client - registry operations used for staking
type Client interface {
	Address() registry.Address
	StakeOf(ctx context.Context, address registry.Address) (*big.Int, error)
	Stake(ctx context.Context, amount *big.Int) (registry.Receipt, error)
	Unstake(ctx context.Context, amount *big.Int) (registry.Receipt, error)
	CommissionOf(ctx context.Context, address registry.Address) (*big.Int, error)
	UpdateCommission(ctx context.Context, commission *big.Int) (registry.Receipt, error)
}

// Reconcile - stake or unstake the difference to the desired amount
// and update the commission if it differs
//
// a nil desired amount or commission leaves that value unchanged
func Reconcile(ctx context.Context, client Client, pool *registry.PoolState, desired *big.Int, commission *big.Int) error {
	log := logger.New("stake")
	address := client.Address()

	if nil != desired {
		if 0 == desired.Sign() {
			return fmt.Errorf("%w: zero", fault.ErrInvalidStake)
		}
		if nil != pool.MinStake && desired.Cmp(pool.MinStake) < 0 {
			return fmt.Errorf("%w: desired: %s  minimum: %s", fault.ErrStakeBelowMinimum, desired, pool.MinStake)
		}

		current, err := client.StakeOf(ctx, address)
		if nil != err {
			return err
		}

		difference := new(big.Int).Sub(desired, current)
		switch difference.Sign() {
		case 1:
			log.Infof("staking: %s  current: %s", difference, current)
			receipt, err := client.Stake(ctx, difference)
			if nil != err {
				return fmt.Errorf("%w: %s", fault.ErrStakeFailed, err)
			}
			log.Infof("staked: %s  tx: %s", difference, receipt.Hash)
		case -1:
			difference.Neg(difference)
			log.Infof("unstaking: %s  current: %s", difference, current)
			receipt, err := client.Unstake(ctx, difference)
			if nil != err {
				return fmt.Errorf("%w: %s", fault.ErrStakeFailed, err)
			}
			log.Infof("unstaked: %s  tx: %s", difference, receipt.Hash)
		default:
			log.Infof("already staked: %s", current)
		}
	}

	if nil != commission {
		current, err := client.CommissionOf(ctx, address)
		if nil != err {
			return err
		}
		if 0 == current.Cmp(commission) {
			log.Infof("commission: %s unchanged", commission)
			return nil
		}
		receipt, err := client.UpdateCommission(ctx, commission)
		if nil != err {
			return fmt.Errorf("%w: commission: %s", fault.ErrStakeFailed, err)
		}
		log.Infof("commission: %s -> %s  tx: %s", current, commission, receipt.Hash)
	}

	return nil
}

// ParseAmount - decimal token amount to base units
//
// e.g. "1.5" is 1500000000000000000
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	whole, fraction := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, fraction = s[:i], s[i+1:]
	}
	if "" == whole {
		whole = "0"
	}
	if "" == s || len(fraction) > Decimals || strings.HasPrefix(whole, "-") || strings.HasPrefix(whole, "+") {
		return nil, fmt.Errorf("%w: amount: %q", fault.ErrInvalidStake, s)
	}

	digits := whole + fraction + strings.Repeat("0", Decimals-len(fraction))
	for _, c := range digits {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: amount: %q", fault.ErrInvalidStake, s)
		}
	}

	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: amount: %q", fault.ErrInvalidStake, s)
	}
	return n, nil
}
