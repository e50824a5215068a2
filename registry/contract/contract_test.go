// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/registry"
	"github.com/bitmark-inc/logger"
)

const (
	testingDirName = "testing"
	testKeyHex     = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
	poolHex        = "0x00000000000000000000000000000000000000aa"
	tokenHex       = "0x00000000000000000000000000000000000000bb"
	uploaderHex    = "0x00000000000000000000000000000000000000cc"
)

var suggestedGasPrice = big.NewInt(10000000000)

func TestMain(m *testing.M) {
	os.RemoveAll(testingDirName)
	_ = os.Mkdir(testingDirName, 0700)

	_ = logger.Initialise(logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	})

	result := m.Run()

	logger.Finalise()
	os.RemoveAll(testingDirName)
	os.Exit(result)
}

// answers view calls from a table and records sent transactions
//
// any backend method not overridden here panics through the nil
// embedded interface
type fakeBackend struct {
	Backend

	sync.Mutex
	abis  []abi.ABI
	views map[string][]interface{}
	sent  []*types.Transaction
}

func newFakeBackend(t *testing.T) *fakeBackend {
	pool, err := abi.JSON(strings.NewReader(poolABI))
	assert.Nil(t, err, "pool abi")
	token, err := abi.JSON(strings.NewReader(tokenABI))
	assert.Nil(t, err, "token abi")

	return &fakeBackend{
		abis: []abi.ABI{pool, token},
		views: map[string][]interface{}{
			"paused":         {false},
			"heightArchived": {big.NewInt(5000)},
			"minStake":       {big.NewInt(100)},
			"minBundleSize":  {big.NewInt(10)},
			"bundleSize":     {big.NewInt(250)},
			"uploadTimeout":  {big.NewInt(600)},
			"bundleDelay":    {big.NewInt(60)},
			"config":         {`{"rpc":"http://localhost:8545"}`},
			"metadata":       {`{"runtime":"evm","versions":">=1.0.0"}`},
			"token":          {common.HexToAddress(tokenHex)},
			"getStakers":     {[]common.Address{common.HexToAddress(uploaderHex)}},
			"bundleProposal": {
				common.HexToAddress(uploaderHex),
				common.Address{},
				"bundle-xyz",
				big.NewInt(4096),
				big.NewInt(4750),
				big.NewInt(5000),
				big.NewInt(1234567),
			},
			"bundleInstructions": {common.Address{}, big.NewInt(5000)},
			"isValidator":        {true},
			"canVote":            {false, "already voted"},
			"canPropose":         {true, ""},
			"stakeOf":            {big.NewInt(300)},
			"commissionOf":       {big.NewInt(7)},
			"balanceOf":          {big.NewInt(1000)},
		},
	}
}

func (f *fakeBackend) method(data []byte) (*abi.Method, error) {
	for _, a := range f.abis {
		if m, err := a.MethodById(data[:4]); nil == err {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown selector: %x", data[:4])
}

func (f *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1337), nil
}

func (f *fakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	m, err := f.method(call.Data)
	if nil != err {
		return nil, err
	}
	values, ok := f.views[m.Name]
	if !ok {
		return nil, fmt.Errorf("no view: %s", m.Name)
	}
	return m.Outputs.Pack(values...)
}

func (f *fakeBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 100000, nil
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	f.Lock()
	defer f.Unlock()
	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return suggestedGasPrice, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.Lock()
	defer f.Unlock()
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash}, nil
}

func setupClient(t *testing.T, multiplier float64) (*Client, *fakeBackend) {
	key, err := crypto.HexToECDSA(testKeyHex)
	assert.Nil(t, err, "key")

	f := newFakeBackend(t)
	c, err := New(context.Background(), f, poolHex, key, multiplier)
	assert.Nil(t, err, "new")
	return c, f
}

func TestNewInvalidPool(t *testing.T) {
	key, _ := crypto.HexToECDSA(testKeyHex)
	_, err := New(context.Background(), newFakeBackend(t), "pool-7", key, 1)
	assert.True(t, fault.IsErrInvalid(err), "non hex pool accepted: %v", err)
}

func TestReadKeyFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "contract")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	good := filepath.Join(dir, "good.key")
	_ = ioutil.WriteFile(good, []byte("0x"+testKeyHex+"\n"), 0600)
	key, err := ReadKeyFile(good)
	assert.Nil(t, err, "read")
	assert.Equal(t, testKeyHex, fmt.Sprintf("%064x", key.D), "wrong key")

	bad := filepath.Join(dir, "bad.key")
	_ = ioutil.WriteFile(bad, []byte("xyz"), 0600)
	_, err = ReadKeyFile(bad)
	assert.True(t, fault.IsErrInvalid(err), "bad key accepted")
}

func TestFetchPoolState(t *testing.T) {
	c, _ := setupClient(t, 1)

	raw, err := c.FetchPoolState(context.Background())
	assert.Nil(t, err, "fetch")

	assert.False(t, raw.Paused, "paused")
	assert.Equal(t, uint64(5000), raw.HeightArchived, "height archived")
	assert.Equal(t, "100", raw.MinStake, "min stake")
	assert.Equal(t, uint64(10), raw.MinBundleSize, "min bundle size")
	assert.Equal(t, uint64(250), raw.BundleSize, "bundle size")
	assert.Equal(t, uint64(600), raw.UploadTimeout, "upload timeout")
	assert.Equal(t, uint64(60), raw.BundleDelay, "bundle delay")
	assert.Equal(t, `{"rpc":"http://localhost:8545"}`, raw.Config, "config")

	assert.True(t, raw.Proposal.Uploader.Equal(uploaderHex), "uploader")
	assert.True(t, raw.Proposal.NextUploader.IsZero(), "next uploader")
	assert.Equal(t, "bundle-xyz", raw.Proposal.BundleID, "bundle id")
	assert.Equal(t, uint64(4096), raw.Proposal.ByteSize, "byte size")
	assert.Equal(t, uint64(4750), raw.Proposal.FromHeight, "from")
	assert.Equal(t, uint64(5000), raw.Proposal.ToHeight, "to")
	assert.Equal(t, uint64(1234567), raw.Proposal.CreatedAt, "created at")

	assert.True(t, raw.Instructions.Uploader.IsZero(), "instructions uploader")
	assert.Equal(t, uint64(5000), raw.Instructions.FromHeight, "instructions from")

	assert.Equal(t, 1, len(raw.Stakers), "stakers")

	state, err := registry.DecodePoolState(raw)
	assert.Nil(t, err, "decode")
	assert.Equal(t, "evm", state.Metadata.Runtime, "runtime")
}

func TestViews(t *testing.T) {
	c, _ := setupClient(t, 1)
	ctx := context.Background()

	ok, err := c.IsValidator(ctx, c.Address())
	assert.Nil(t, err, "is validator")
	assert.True(t, ok, "validator")

	_, err = c.IsValidator(ctx, "not-an-address")
	assert.Equal(t, fault.ErrInvalidAddress, err, "bad address accepted")

	e, err := c.CanVote(ctx, "bundle-xyz")
	assert.Nil(t, err, "can vote")
	assert.False(t, e.Possible, "possible")
	assert.Equal(t, "already voted", e.Reason, "reason")

	e, err = c.CanPropose(ctx, 5000)
	assert.Nil(t, err, "can propose")
	assert.True(t, e.Possible, "possible")

	stake, err := c.StakeOf(ctx, c.Address())
	assert.Nil(t, err, "stake")
	assert.Equal(t, int64(300), stake.Int64(), "stake")

	commission, err := c.CommissionOf(ctx, c.Address())
	assert.Nil(t, err, "commission")
	assert.Equal(t, int64(7), commission.Int64(), "commission")
}

func TestVoteTransaction(t *testing.T) {
	c, f := setupClient(t, 1.5)

	receipt, err := c.Vote(context.Background(), registry.Vote{BundleID: "bundle-xyz", Valid: true})
	assert.Nil(t, err, "vote")
	assert.Equal(t, 1, len(f.sent), "sent count")

	tx := f.sent[0]
	assert.Equal(t, tx.Hash().Hex(), receipt.Hash, "receipt hash")
	assert.Equal(t, common.HexToAddress(poolHex), *tx.To(), "destination")
	assert.Equal(t, int64(15000000000), tx.GasPrice().Int64(), "gas price not multiplied")

	m, err := f.method(tx.Data())
	assert.Nil(t, err, "method")
	assert.Equal(t, "vote", m.Name, "method name")

	args, err := m.Inputs.Unpack(tx.Data()[4:])
	assert.Nil(t, err, "unpack")
	assert.Equal(t, "bundle-xyz", args[0], "bundle id")
	assert.Equal(t, true, args[1], "valid")
}

func TestSubmitProposal(t *testing.T) {
	c, f := setupClient(t, 1)

	_, err := c.SubmitBundleProposal(context.Background(), registry.Proposal{BundleID: "b", ByteSize: 77, ItemCount: 5})
	assert.Nil(t, err, "submit")

	m, err := f.method(f.sent[0].Data())
	assert.Nil(t, err, "method")
	assert.Equal(t, "submitBundleProposal", m.Name, "method name")

	args, err := m.Inputs.Unpack(f.sent[0].Data()[4:])
	assert.Nil(t, err, "unpack")
	assert.Equal(t, int64(77), args[1].(*big.Int).Int64(), "byte size")
	assert.Equal(t, int64(5), args[2].(*big.Int).Int64(), "item count")
}

func TestStake(t *testing.T) {
	c, f := setupClient(t, 1)

	_, err := c.Stake(context.Background(), big.NewInt(500))
	assert.Nil(t, err, "stake")
	assert.Equal(t, 2, len(f.sent), "approve and stake expected")

	approve, err := f.method(f.sent[0].Data())
	assert.Nil(t, err, "approve method")
	assert.Equal(t, "approve", approve.Name, "first transaction")
	assert.Equal(t, common.HexToAddress(tokenHex), *f.sent[0].To(), "approve destination")

	stake, err := f.method(f.sent[1].Data())
	assert.Nil(t, err, "stake method")
	assert.Equal(t, "stake", stake.Name, "second transaction")
	assert.True(t, bytes.Equal(common.HexToAddress(poolHex).Bytes(), f.sent[1].To().Bytes()), "stake destination")
}

func TestStakeInsufficientBalance(t *testing.T) {
	c, f := setupClient(t, 1)

	_, err := c.Stake(context.Background(), big.NewInt(5000))
	assert.True(t, fault.IsFatal(err), "insufficient balance not fatal: %v", err)
	assert.Equal(t, 0, len(f.sent), "transactions sent")
}
