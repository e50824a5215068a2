// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package contract - registry client for an EVM pool contract
package contract

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"io/ioutil"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/registry"
	"github.com/bitmark-inc/logger"
)

const (
	dialTimeout = 30 * time.Second
)

// Backend - the chain connection, satisfied by *ethclient.Client
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Client - contract backend of registry.Client
type Client struct {
	log           *logger.L
	backend       Backend
	poolAddress   common.Address
	pool          *bind.BoundContract
	tokenABI      abi.ABI
	key           *ecdsa.PrivateKey
	address       common.Address
	chainID       *big.Int
	gasMultiplier *big.Float
}

// Dial - connect to an RPC endpoint and bind the pool contract
func Dial(ctx context.Context, endpoint string, pool string, key *ecdsa.PrivateKey, gasMultiplier float64) (*Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	backend, err := ethclient.DialContext(dialCtx, endpoint)
	if nil != err {
		return nil, err
	}
	c, err := New(dialCtx, backend, pool, key, gasMultiplier)
	if nil != err {
		backend.Close()
		return nil, err
	}
	return c, nil
}

// New - bind the pool contract on an existing backend
func New(ctx context.Context, backend Backend, pool string, key *ecdsa.PrivateKey, gasMultiplier float64) (*Client, error) {
	if !common.IsHexAddress(pool) {
		return nil, fmt.Errorf("%w: pool: %q", fault.ErrInvalidAddress, pool)
	}
	if gasMultiplier <= 0 {
		gasMultiplier = 1
	}

	parsedPool, err := abi.JSON(strings.NewReader(poolABI))
	if nil != err {
		return nil, err
	}
	parsedToken, err := abi.JSON(strings.NewReader(tokenABI))
	if nil != err {
		return nil, err
	}

	chainID, err := backend.ChainID(ctx)
	if nil != err {
		return nil, err
	}

	poolAddress := common.HexToAddress(pool)

	return &Client{
		log:           logger.New("registry"),
		backend:       backend,
		poolAddress:   poolAddress,
		pool:          bind.NewBoundContract(poolAddress, parsedPool, backend, backend, backend),
		tokenABI:      parsedToken,
		key:           key,
		address:       crypto.PubkeyToAddress(key.PublicKey),
		chainID:       chainID,
		gasMultiplier: big.NewFloat(gasMultiplier),
	}, nil
}

// ReadKeyFile - read a hex encoded secp256k1 private key
func ReadKeyFile(fileName string) (*ecdsa.PrivateKey, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(string(data)), "0x"))
	if nil != err {
		return nil, fmt.Errorf("%w: %s", fault.ErrInvalidKeyFile, err)
	}
	return key, nil
}

// Address - the node's account
func (c *Client) Address() registry.Address {
	return registry.Address(c.address.Hex())
}

// call a view function and return all of its outputs
func (c *Client) call(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: c.address}
	if err := c.pool.Call(opts, &out, method, params...); nil != err {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return out, nil
}

func (c *Client) callBool(ctx context.Context, method string, params ...interface{}) (bool, error) {
	out, err := c.call(ctx, method, params...)
	if nil != err {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (c *Client) callBig(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	out, err := c.call(ctx, method, params...)
	if nil != err {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (c *Client) callUint64(ctx context.Context, method string) (uint64, error) {
	n, err := c.callBig(ctx, method)
	if nil != err {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: %s: %s", fault.ErrInvalidHeight, method, n)
	}
	return n.Uint64(), nil
}

func (c *Client) callString(ctx context.Context, method string) (string, error) {
	out, err := c.call(ctx, method)
	if nil != err {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// FetchPoolState - read every pool field with separate view calls
func (c *Client) FetchPoolState(ctx context.Context) (*registry.RawPoolState, error) {
	raw := &registry.RawPoolState{}

	var err error
	if raw.Paused, err = c.callBool(ctx, "paused"); nil != err {
		return nil, err
	}

	numbers := []struct {
		method string
		value  *uint64
	}{
		{"heightArchived", &raw.HeightArchived},
		{"minBundleSize", &raw.MinBundleSize},
		{"bundleSize", &raw.BundleSize},
		{"uploadTimeout", &raw.UploadTimeout},
		{"bundleDelay", &raw.BundleDelay},
	}
	for _, n := range numbers {
		if *n.value, err = c.callUint64(ctx, n.method); nil != err {
			return nil, err
		}
	}

	minStake, err := c.callBig(ctx, "minStake")
	if nil != err {
		return nil, err
	}
	raw.MinStake = minStake.String()

	if raw.Config, err = c.callString(ctx, "config"); nil != err {
		return nil, err
	}
	if raw.Metadata, err = c.callString(ctx, "metadata"); nil != err {
		return nil, err
	}

	if raw.Proposal, err = c.bundleProposal(ctx); nil != err {
		return nil, err
	}
	if raw.Instructions, err = c.bundleInstructions(ctx); nil != err {
		return nil, err
	}

	out, err := c.call(ctx, "getStakers")
	if nil != err {
		return nil, err
	}
	for _, a := range *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address) {
		raw.Stakers = append(raw.Stakers, registry.Address(a.Hex()))
	}

	return raw, nil
}

func toAddress(v interface{}) registry.Address {
	a := *abi.ConvertType(v, new(common.Address)).(*common.Address)
	return registry.Address(a.Hex())
}

func toUint64(v interface{}) uint64 {
	n := *abi.ConvertType(v, new(*big.Int)).(**big.Int)
	return n.Uint64()
}

func (c *Client) bundleProposal(ctx context.Context) (registry.BundleProposal, error) {
	out, err := c.call(ctx, "bundleProposal")
	if nil != err {
		return registry.BundleProposal{}, err
	}
	return registry.BundleProposal{
		Uploader:     toAddress(out[0]),
		NextUploader: toAddress(out[1]),
		BundleID:     *abi.ConvertType(out[2], new(string)).(*string),
		ByteSize:     toUint64(out[3]),
		FromHeight:   toUint64(out[4]),
		ToHeight:     toUint64(out[5]),
		CreatedAt:    toUint64(out[6]),
	}, nil
}

func (c *Client) bundleInstructions(ctx context.Context) (registry.BundleInstructions, error) {
	out, err := c.call(ctx, "bundleInstructions")
	if nil != err {
		return registry.BundleInstructions{}, err
	}
	return registry.BundleInstructions{
		Uploader:   toAddress(out[0]),
		FromHeight: toUint64(out[1]),
	}, nil
}

// IsValidator - check the active validator set
func (c *Client) IsValidator(ctx context.Context, address registry.Address) (bool, error) {
	if !common.IsHexAddress(address.String()) {
		return false, fault.ErrInvalidAddress
	}
	return c.callBool(ctx, "isValidator", common.HexToAddress(address.String()))
}

func (c *Client) eligibility(ctx context.Context, method string, params ...interface{}) (registry.Eligibility, error) {
	out, err := c.call(ctx, method, params...)
	if nil != err {
		return registry.Eligibility{}, err
	}
	return registry.Eligibility{
		Possible: *abi.ConvertType(out[0], new(bool)).(*bool),
		Reason:   *abi.ConvertType(out[1], new(string)).(*string),
	}, nil
}

// CanVote - ask the contract if a vote would be accepted
func (c *Client) CanVote(ctx context.Context, bundleID string) (registry.Eligibility, error) {
	return c.eligibility(ctx, "canVote", c.address, bundleID)
}

// CanPropose - ask the contract if a proposal would be accepted
func (c *Client) CanPropose(ctx context.Context, fromHeight uint64) (registry.Eligibility, error) {
	return c.eligibility(ctx, "canPropose", c.address, new(big.Int).SetUint64(fromHeight))
}

// StakeOf - current stake of an address
func (c *Client) StakeOf(ctx context.Context, address registry.Address) (*big.Int, error) {
	if !common.IsHexAddress(address.String()) {
		return nil, fault.ErrInvalidAddress
	}
	return c.callBig(ctx, "stakeOf", common.HexToAddress(address.String()))
}

// CommissionOf - current commission of an address
func (c *Client) CommissionOf(ctx context.Context, address registry.Address) (*big.Int, error) {
	if !common.IsHexAddress(address.String()) {
		return nil, fault.ErrInvalidAddress
	}
	return c.callBig(ctx, "commissionOf", common.HexToAddress(address.String()))
}

// transaction options with the multiplied gas price
func (c *Client) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if nil != err {
		return nil, err
	}
	price, err := c.backend.SuggestGasPrice(ctx)
	if nil != err {
		return nil, err
	}
	multiplied, _ := new(big.Float).Mul(new(big.Float).SetInt(price), c.gasMultiplier).Int(nil)

	opts.Context = ctx
	opts.GasPrice = multiplied
	return opts, nil
}

// send a pool transaction, optionally waiting until it is mined
func (c *Client) transact(ctx context.Context, wait bool, method string, params ...interface{}) (registry.Receipt, error) {
	opts, err := c.transactOpts(ctx)
	if nil != err {
		return registry.Receipt{}, fmt.Errorf("%w: %s: %s", fault.ErrTransactionFailed, method, err)
	}

	tx, err := c.pool.Transact(opts, method, params...)
	if nil != err {
		return registry.Receipt{}, fmt.Errorf("%w: %s: %s", fault.ErrTransactionFailed, method, err)
	}
	c.log.Debugf("%s transaction: %s", method, tx.Hash().Hex())

	if wait {
		if err := c.waitMined(ctx, method, tx); nil != err {
			return registry.Receipt{}, err
		}
	}
	return registry.Receipt{Hash: tx.Hash().Hex()}, nil
}

func (c *Client) waitMined(ctx context.Context, method string, tx *types.Transaction) error {
	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if nil != err {
		return fmt.Errorf("%w: %s: %s", fault.ErrTransactionFailed, method, err)
	}
	if types.ReceiptStatusSuccessful != receipt.Status {
		return fmt.Errorf("%w: %s: reverted in: %s", fault.ErrTransactionFailed, method, tx.Hash().Hex())
	}
	return nil
}

// Vote - cast a vote on a proposal
func (c *Client) Vote(ctx context.Context, vote registry.Vote) (registry.Receipt, error) {
	return c.transact(ctx, false, "vote", vote.BundleID, vote.Valid)
}

// ClaimUploaderRole - take over the uploader slot
func (c *Client) ClaimUploaderRole(ctx context.Context) (registry.Receipt, error) {
	return c.transact(ctx, false, "claimUploaderRole")
}

// SubmitBundleProposal - announce a new bundle
func (c *Client) SubmitBundleProposal(ctx context.Context, proposal registry.Proposal) (registry.Receipt, error) {
	return c.transact(ctx, false, "submitBundleProposal",
		proposal.BundleID,
		new(big.Int).SetUint64(proposal.ByteSize),
		new(big.Int).SetUint64(proposal.ItemCount),
	)
}

// Stake - approve the pool to take the tokens then stake them
//
// both transactions are waited for
func (c *Client) Stake(ctx context.Context, amount *big.Int) (registry.Receipt, error) {
	out, err := c.call(ctx, "token")
	if nil != err {
		return registry.Receipt{}, err
	}
	tokenAddress := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	token := bind.NewBoundContract(tokenAddress, c.tokenABI, c.backend, c.backend, c.backend)

	var balanceOut []interface{}
	err = token.Call(&bind.CallOpts{Context: ctx, From: c.address}, &balanceOut, "balanceOf", c.address)
	if nil != err {
		return registry.Receipt{}, fmt.Errorf("balanceOf: %w", err)
	}
	balance := *abi.ConvertType(balanceOut[0], new(*big.Int)).(**big.Int)
	if balance.Cmp(amount) < 0 {
		return registry.Receipt{}, fmt.Errorf("%w: token balance: %s < stake: %s", fault.ErrStakeFailed, balance, amount)
	}

	opts, err := c.transactOpts(ctx)
	if nil != err {
		return registry.Receipt{}, fmt.Errorf("%w: approve: %s", fault.ErrTransactionFailed, err)
	}
	tx, err := token.Transact(opts, "approve", c.poolAddress, amount)
	if nil != err {
		return registry.Receipt{}, fmt.Errorf("%w: approve: %s", fault.ErrTransactionFailed, err)
	}
	if err := c.waitMined(ctx, "approve", tx); nil != err {
		return registry.Receipt{}, err
	}
	c.log.Infof("approved: %s", amount)

	return c.transact(ctx, true, "stake", amount)
}

// Unstake - withdraw part of the node's stake
func (c *Client) Unstake(ctx context.Context, amount *big.Int) (registry.Receipt, error) {
	return c.transact(ctx, true, "unstake", amount)
}

// UpdateCommission - set the node's commission
func (c *Client) UpdateCommission(ctx context.Context, commission *big.Int) (registry.Receipt, error) {
	return c.transact(ctx, true, "updateCommission", commission)
}
