// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rest_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/keypair"
	"github.com/bitmark-inc/archivenode/registry"
	"github.com/bitmark-inc/archivenode/registry/rest"
	"github.com/bitmark-inc/logger"
)

const (
	testingDirName = "testing"
	seedHex        = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
	publicKeyHex   = "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"
)

func TestMain(m *testing.M) {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)

	result := m.Run()

	logger.Finalise()
	removeFiles()
	os.Exit(result)
}

func removeFiles() {
	os.RemoveAll(testingDirName)
}

// a minimal gateway recording submitted transactions
type gateway struct {
	sync.Mutex
	transactions []rest.Transaction
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case "/pools/7" == r.URL.Path:
		w.Write([]byte(`{
  "paused": false,
  "height_archived": 120,
  "min_stake": "1000",
  "upload_timeout": 600,
  "config": "{}",
  "metadata": "{\"runtime\":\"evm\",\"versions\":\"^1.0.0\"}",
  "bundle_proposal": {"uploader": "abc", "bundle_id": "b-1", "byte_size": 99, "from_height": 100, "to_height": 120, "created_at": 5},
  "bundle_instructions": {"uploader": "", "from_height": 120}
}`))

	case "/pools/7/validators/"+publicKeyHex == r.URL.Path:
		w.Write([]byte(`{"validator": true}`))

	case "/pools/7/validators/other" == r.URL.Path:
		w.Write([]byte(`{"validator": false}`))

	case "/pools/7/can_vote" == r.URL.Path:
		if publicKeyHex != r.URL.Query().Get("voter") || "b-1" != r.URL.Query().Get("bundle_id") {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"possible": false, "reason": "no delegation"}`))

	case "/pools/7/can_propose" == r.URL.Path:
		if "120" != r.URL.Query().Get("from_height") {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"possible": true}`))

	case "/pools/7/stakers/"+publicKeyHex == r.URL.Path:
		w.Write([]byte(`{"amount": "123456789012345678901", "commission": "10"}`))

	case strings.HasPrefix(r.URL.Path, "/pools/7/stakers/"):
		http.Error(w, "unknown staker", http.StatusNotFound)

	case "/transactions" == r.URL.Path && http.MethodPost == r.Method:
		body, _ := ioutil.ReadAll(r.Body)
		tx := rest.Transaction{}
		if err := json.Unmarshal(body, &tx); nil != err {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if "reject" == tx.Type {
			http.Error(w, "rejected", http.StatusBadRequest)
			return
		}
		g.Lock()
		g.transactions = append(g.transactions, tx)
		g.Unlock()
		w.Write([]byte(`{"hash": "tx-` + tx.Type + `"}`))

	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func setupClient(t *testing.T) (*rest.Client, *gateway, func()) {
	g := &gateway{}
	server := httptest.NewServer(g)

	key, err := keypair.Parse(seedHex)
	assert.Nil(t, err, "parse key")

	c, err := rest.New(server.URL, "7", key, 0)
	assert.Nil(t, err, "new client")

	return c, g, server.Close
}

func TestNewInvalid(t *testing.T) {
	key, _ := keypair.Parse(seedHex)

	_, err := rest.New("not a url", "7", key, 1)
	assert.True(t, fault.IsErrInvalid(err), "bad endpoint accepted")

	_, err = rest.New("http://localhost", "", key, 1)
	assert.True(t, fault.IsErrInvalid(err), "empty pool accepted")

	_, err = rest.New("http://localhost", "7", nil, 1)
	assert.Equal(t, fault.ErrInvalidKeyFile, err, "missing key accepted")
}

func TestReads(t *testing.T) {
	c, _, done := setupClient(t)
	defer done()

	ctx := context.Background()
	assert.Equal(t, registry.Address(publicKeyHex), c.Address(), "address")

	raw, err := c.FetchPoolState(ctx)
	assert.Nil(t, err, "pool state")
	assert.Equal(t, uint64(120), raw.HeightArchived, "height archived")
	assert.Equal(t, "b-1", raw.Proposal.BundleID, "bundle id")
	assert.Equal(t, uint64(5), raw.Proposal.CreatedAt, "created at")

	state, err := registry.DecodePoolState(raw)
	assert.Nil(t, err, "decode")
	assert.Equal(t, "evm", state.Metadata.Runtime, "runtime")

	ok, err := c.IsValidator(ctx, c.Address())
	assert.Nil(t, err, "is validator")
	assert.True(t, ok, "should be validator")

	ok, err = c.IsValidator(ctx, "other")
	assert.Nil(t, err, "is validator")
	assert.False(t, ok, "should not be validator")

	e, err := c.CanVote(ctx, "b-1")
	assert.Nil(t, err, "can vote")
	assert.False(t, e.Possible, "vote possible")
	assert.Equal(t, "no delegation", e.Reason, "reason")

	e, err = c.CanPropose(ctx, 120)
	assert.Nil(t, err, "can propose")
	assert.True(t, e.Possible, "propose not possible")

	stake, err := c.StakeOf(ctx, c.Address())
	assert.Nil(t, err, "stake")
	expected, _ := new(big.Int).SetString("123456789012345678901", 10)
	assert.Equal(t, 0, expected.Cmp(stake), "stake amount")

	commission, err := c.CommissionOf(ctx, c.Address())
	assert.Nil(t, err, "commission")
	assert.Equal(t, int64(10), commission.Int64(), "commission")

	stake, err = c.StakeOf(ctx, "never-staked")
	assert.Nil(t, err, "missing staker is not an error")
	assert.Equal(t, 0, stake.Sign(), "missing staker stake")
}

func TestTransactions(t *testing.T) {
	c, g, done := setupClient(t)
	defer done()

	ctx := context.Background()

	receipt, err := c.Vote(ctx, registry.Vote{BundleID: "b-1", Valid: true})
	assert.Nil(t, err, "vote")
	assert.Equal(t, "tx-vote", receipt.Hash, "vote receipt")

	_, err = c.ClaimUploaderRole(ctx)
	assert.Nil(t, err, "claim")

	_, err = c.SubmitBundleProposal(ctx, registry.Proposal{BundleID: "b-2", ByteSize: 10, ItemCount: 3})
	assert.Nil(t, err, "submit")

	_, err = c.Stake(ctx, big.NewInt(500))
	assert.Nil(t, err, "stake")

	assert.Equal(t, 4, len(g.transactions), "transaction count")

	public := c.Address()
	publicKey, _ := hex.DecodeString(string(public))
	for _, tx := range g.transactions {
		assert.Equal(t, "7", tx.Pool, "pool")
		assert.Equal(t, public, tx.Sender, "sender")

		signature, err := hex.DecodeString(tx.Signature)
		assert.Nil(t, err, "signature hex")
		message, err := tx.SigningBytes()
		assert.Nil(t, err, "signing bytes")
		assert.True(t, ed25519.Verify(ed25519.PublicKey(publicKey), message, signature), "bad signature on: %s", tx.Type)
	}

	vote := registry.Vote{}
	err = json.Unmarshal(g.transactions[0].Payload, &vote)
	assert.Nil(t, err, "vote payload")
	assert.Equal(t, registry.Vote{BundleID: "b-1", Valid: true}, vote, "vote payload")

	assert.Equal(t, `{"amount":"500"}`, string(g.transactions[3].Payload), "stake payload")
}

func TestTransactionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	key, _ := keypair.Parse(seedHex)
	c, err := rest.New(server.URL, "7", key, 100)
	assert.Nil(t, err, "new")

	_, err = c.ClaimUploaderRole(context.Background())
	assert.True(t, fault.IsErrProcess(err), "wrong error class: %v", err)
	assert.False(t, fault.IsFatal(err), "transaction failure must not be fatal")

	_, err = c.FetchPoolState(context.Background())
	assert.NotNil(t, err, "fetch should fail")
	assert.False(t, fault.IsFatal(err), "fetch failure must not be fatal")
}
