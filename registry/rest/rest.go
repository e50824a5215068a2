// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rest - registry client for the pool REST gateway
//
// reads are plain GET requests, transactions are JSON envelopes
// signed with the node's ed25519 key and POSTed to /transactions
package rest

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/keypair"
	"github.com/bitmark-inc/archivenode/registry"
	"github.com/bitmark-inc/archivenode/util"
	"github.com/bitmark-inc/logger"
)

const (
	requestTimeout = 30 * time.Second
	rateBurst      = 10
)

// transaction types
const (
	txVote             = "vote"
	txClaimUploader    = "claim_uploader_role"
	txSubmitProposal   = "submit_bundle_proposal"
	txStake            = "stake"
	txUnstake          = "unstake"
	txUpdateCommission = "update_commission"
)

// Client - REST backend of registry.Client
type Client struct {
	log        *logger.L
	httpClient *http.Client
	endpoint   string
	pool       string
	key        *keypair.KeyPair
	address    registry.Address
	limiter    *rate.Limiter
	now        func() time.Time
}

// New - create a client for one pool
//
// requestsPerSecond limits all requests to the gateway, zero or less
// disables the limit
func New(endpoint string, pool string, key *keypair.KeyPair, requestsPerSecond float64) (*Client, error) {
	u, err := url.Parse(endpoint)
	if nil != err || "" == u.Scheme || "" == u.Host {
		return nil, fmt.Errorf("%w: endpoint: %q", fault.ErrConfigurationInvalid, endpoint)
	}
	if "" == pool {
		return nil, fmt.Errorf("%w: empty pool", fault.ErrConfigurationInvalid)
	}
	if nil == key {
		return nil, fault.ErrInvalidKeyFile
	}

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &Client{
		log:        logger.New("registry"),
		httpClient: &http.Client{Timeout: requestTimeout},
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		pool:       pool,
		key:        key,
		address:    registry.Address(key.Address()),
		limiter:    rate.NewLimiter(limit, rateBurst),
		now:        time.Now,
	}, nil
}

// Address - the node's account
func (c *Client) Address() registry.Address {
	return c.address
}

// FetchPoolState - read the pool record
func (c *Client) FetchPoolState(ctx context.Context) (*registry.RawPoolState, error) {
	reply := &registry.RawPoolState{}
	if err := c.get(ctx, c.poolPath(), nil, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// IsValidator - check the active validator set
func (c *Client) IsValidator(ctx context.Context, address registry.Address) (bool, error) {
	var reply struct {
		Validator bool `json:"validator"`
	}
	if err := c.get(ctx, c.poolPath("validators", address.String()), nil, &reply); nil != err {
		return false, err
	}
	return reply.Validator, nil
}

// CanVote - ask the gateway if a vote would be accepted
func (c *Client) CanVote(ctx context.Context, bundleID string) (registry.Eligibility, error) {
	query := url.Values{
		"voter":     {c.address.String()},
		"bundle_id": {bundleID},
	}
	reply := registry.Eligibility{}
	err := c.get(ctx, c.poolPath("can_vote"), query, &reply)
	return reply, err
}

// CanPropose - ask the gateway if a proposal would be accepted
func (c *Client) CanPropose(ctx context.Context, fromHeight uint64) (registry.Eligibility, error) {
	query := url.Values{
		"proposer":    {c.address.String()},
		"from_height": {strconv.FormatUint(fromHeight, 10)},
	}
	reply := registry.Eligibility{}
	err := c.get(ctx, c.poolPath("can_propose"), query, &reply)
	return reply, err
}

// staker record
type stakerReply struct {
	Amount     string `json:"amount"`
	Commission string `json:"commission"`
}

func (c *Client) staker(ctx context.Context, address registry.Address) (*big.Int, *big.Int, error) {
	reply := stakerReply{}
	if err := c.get(ctx, c.poolPath("stakers", address.String()), nil, &reply); nil != err {
		// an address that never staked has no record
		var se *util.StatusError
		if errors.As(err, &se) && http.StatusNotFound == se.Status {
			return big.NewInt(0), big.NewInt(0), nil
		}
		return nil, nil, err
	}
	amount, ok := parseAmount(reply.Amount)
	if !ok {
		return nil, nil, fmt.Errorf("%w: stake amount: %q", fault.ErrRequestFailed, reply.Amount)
	}
	commission, ok := parseAmount(reply.Commission)
	if !ok {
		return nil, nil, fmt.Errorf("%w: commission: %q", fault.ErrRequestFailed, reply.Commission)
	}
	return amount, commission, nil
}

// StakeOf - current stake of an address
func (c *Client) StakeOf(ctx context.Context, address registry.Address) (*big.Int, error) {
	amount, _, err := c.staker(ctx, address)
	return amount, err
}

// CommissionOf - current commission of an address
func (c *Client) CommissionOf(ctx context.Context, address registry.Address) (*big.Int, error) {
	_, commission, err := c.staker(ctx, address)
	return commission, err
}

// Vote - cast a vote on a proposal
func (c *Client) Vote(ctx context.Context, vote registry.Vote) (registry.Receipt, error) {
	return c.submit(ctx, txVote, vote)
}

// ClaimUploaderRole - take over the uploader slot
func (c *Client) ClaimUploaderRole(ctx context.Context) (registry.Receipt, error) {
	return c.submit(ctx, txClaimUploader, struct{}{})
}

// SubmitBundleProposal - announce a new bundle
func (c *Client) SubmitBundleProposal(ctx context.Context, proposal registry.Proposal) (registry.Receipt, error) {
	return c.submit(ctx, txSubmitProposal, proposal)
}

type amountPayload struct {
	Amount string `json:"amount"`
}

// Stake - add to the node's stake
func (c *Client) Stake(ctx context.Context, amount *big.Int) (registry.Receipt, error) {
	return c.submit(ctx, txStake, amountPayload{Amount: amount.String()})
}

// Unstake - withdraw part of the node's stake
func (c *Client) Unstake(ctx context.Context, amount *big.Int) (registry.Receipt, error) {
	return c.submit(ctx, txUnstake, amountPayload{Amount: amount.String()})
}

// UpdateCommission - set the node's commission
func (c *Client) UpdateCommission(ctx context.Context, commission *big.Int) (registry.Receipt, error) {
	return c.submit(ctx, txUpdateCommission, amountPayload{Amount: commission.String()})
}

// Transaction - the signed envelope sent to the gateway
type Transaction struct {
	Type      string           `json:"type"`
	Pool      string           `json:"pool"`
	Sender    registry.Address `json:"sender"`
	Timestamp int64            `json:"timestamp"`
	Payload   json.RawMessage  `json:"payload"`
	Signature string           `json:"signature,omitempty"`
}

// SigningBytes - the canonical bytes covered by the signature
func (tx Transaction) SigningBytes() ([]byte, error) {
	tx.Signature = ""
	return json.Marshal(tx)
}

func (c *Client) submit(ctx context.Context, txType string, payload interface{}) (registry.Receipt, error) {
	p, err := json.Marshal(payload)
	if nil != err {
		return registry.Receipt{}, err
	}

	tx := Transaction{
		Type:      txType,
		Pool:      c.pool,
		Sender:    c.address,
		Timestamp: c.now().Unix(),
		Payload:   p,
	}
	message, err := tx.SigningBytes()
	if nil != err {
		return registry.Receipt{}, err
	}
	tx.Signature = hex.EncodeToString(c.key.Sign(message))

	if err := c.limiter.Wait(ctx); nil != err {
		return registry.Receipt{}, err
	}

	receipt := registry.Receipt{}
	err = util.PostJSON(ctx, c.httpClient, c.endpoint+"/transactions", tx, &receipt)
	if nil != err {
		return registry.Receipt{}, fmt.Errorf("%w: %s: %s", fault.ErrTransactionFailed, txType, err)
	}

	c.log.Debugf("%s transaction: %s", txType, receipt.Hash)
	return receipt, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, reply interface{}) error {
	if err := c.limiter.Wait(ctx); nil != err {
		return err
	}
	u := c.endpoint + path
	if 0 != len(query) {
		u += "?" + query.Encode()
	}
	return util.FetchJSON(ctx, c.httpClient, u, reply)
}

func (c *Client) poolPath(elements ...string) string {
	path := "/pools/" + url.PathEscape(c.pool)
	for _, e := range elements {
		path += "/" + url.PathEscape(e)
	}
	return path
}

// integer amount in the smallest unit, blank is zero
func parseAmount(s string) (*big.Int, bool) {
	if "" == s {
		return big.NewInt(0), true
	}
	return new(big.Int).SetString(s, 10)
}
