// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package gateway - archive client for a funded HTTP storage gateway
//
// every upload is paid for from the node's wallet: the price is
// checked against the wallet balance before the signed transaction
// is posted
package gateway

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/archivenode/archive"
	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/keypair"
	"github.com/bitmark-inc/archivenode/util"
	"github.com/bitmark-inc/logger"
)

const (
	requestTimeout  = 2 * time.Minute
	maximumDownload = 1 << 30
)

// Client - gateway backend of archive.Client
type Client struct {
	log        *logger.L
	httpClient *http.Client
	endpoint   string
	key        *keypair.KeyPair
}

// New - create a client paying from the wallet of key
func New(endpoint string, key *keypair.KeyPair) (*Client, error) {
	u, err := url.Parse(endpoint)
	if nil != err || "" == u.Scheme || "" == u.Host {
		return nil, fmt.Errorf("%w: %q", fault.ErrInvalidURL, endpoint)
	}
	if nil == key {
		return nil, fault.ErrInvalidKeyFile
	}

	return &Client{
		log:        logger.New("archive"),
		httpClient: &http.Client{Timeout: requestTimeout},
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		key:        key,
	}, nil
}

// Transaction - signed upload
type Transaction struct {
	ID        string       `json:"id,omitempty"`
	Owner     string       `json:"owner"`
	Tags      archive.Tags `json:"tags"`
	Data      []byte       `json:"data"`
	Reward    string       `json:"reward"`
	Signature string       `json:"signature,omitempty"`
}

// SigningBytes - the canonical bytes covered by the signature
func (tx Transaction) SigningBytes() ([]byte, error) {
	tx.ID = ""
	tx.Signature = ""
	return json.Marshal(tx)
}

// TransactionID - id derived from a hex signature
func TransactionID(signature string) string {
	digest := sha3.Sum256([]byte(signature))
	return hex.EncodeToString(digest[:])
}

type priceReply struct {
	Price string `json:"price"`
}

type balanceReply struct {
	Balance string `json:"balance"`
}

type uploadReply struct {
	ID string `json:"id"`
}

// Upload - pay for and post data
func (c *Client) Upload(ctx context.Context, data []byte, tags archive.Tags) (string, error) {
	price, err := c.price(ctx, len(data))
	if nil != err {
		return "", err
	}

	balance, err := c.balance(ctx)
	if nil != err {
		return "", err
	}

	if balance.Cmp(price) < 0 {
		c.log.Criticalf("wallet: %s  balance: %s  upload price: %s", c.key.Address(), balance, price)
		return "", fmt.Errorf("%w: balance: %s  price: %s", fault.ErrInsufficientFunds, balance, price)
	}

	tx := Transaction{
		Owner:  c.key.Address(),
		Tags:   tags,
		Data:   data,
		Reward: price.String(),
	}
	message, err := tx.SigningBytes()
	if nil != err {
		return "", err
	}
	tx.Signature = hex.EncodeToString(c.key.Sign(message))
	tx.ID = TransactionID(tx.Signature)

	reply := uploadReply{}
	if err := util.PostJSON(ctx, c.httpClient, c.endpoint+"/tx", tx, &reply); nil != err {
		return "", err
	}
	if "" != reply.ID && reply.ID != tx.ID {
		return "", fmt.Errorf("%w: gateway returned id: %q  expected: %q", fault.ErrRequestFailed, reply.ID, tx.ID)
	}

	c.log.Infof("uploaded: %s  bytes: %d  price: %s", tx.ID, len(data), price)
	return tx.ID, nil
}

// GetStatus - 200 (mined) and 202 (pending) are both retrievable
func (c *Client) GetStatus(ctx context.Context, id string) (archive.Status, error) {
	response, err := c.request(ctx, c.endpoint+"/tx/"+url.PathEscape(id)+"/status")
	if nil != err {
		return archive.Status{}, err
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 4096))

	switch response.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return archive.Status{Confirmed: true}, nil
	case http.StatusNotFound:
		return archive.Status{Confirmed: false}, nil
	default:
		return archive.Status{}, &util.StatusError{
			URL:    response.Request.URL.String(),
			Status: response.StatusCode,
		}
	}
}

// Download - raw data of a transaction
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	response, err := c.request(ctx, c.endpoint+"/"+url.PathEscape(id))
	if nil != err {
		return nil, err
	}
	defer response.Body.Close()

	if http.StatusOK != response.StatusCode {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return nil, &util.StatusError{
			URL:    response.Request.URL.String(),
			Status: response.StatusCode,
			Body:   string(body),
		}
	}
	return io.ReadAll(io.LimitReader(response.Body, maximumDownload))
}

func (c *Client) request(ctx context.Context, u string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if nil != err {
		return nil, err
	}
	return c.httpClient.Do(request)
}

func (c *Client) price(ctx context.Context, size int) (*big.Int, error) {
	reply := priceReply{}
	err := util.FetchJSON(ctx, c.httpClient, c.endpoint+"/price/"+strconv.Itoa(size), &reply)
	if nil != err {
		return nil, err
	}
	return parseAmount("price", reply.Price)
}

func (c *Client) balance(ctx context.Context) (*big.Int, error) {
	reply := balanceReply{}
	err := util.FetchJSON(ctx, c.httpClient, c.endpoint+"/wallet/"+c.key.Address()+"/balance", &reply)
	if nil != err {
		return nil, err
	}
	return parseAmount("balance", reply.Balance)
}

func parseAmount(name string, s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s: %q", fault.ErrRequestFailed, name, s)
	}
	return n, nil
}
