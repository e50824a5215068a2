// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keypair - ed25519 signing keys kept as hex text files
package keypair

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/archivenode/fault"
)

// KeyPair - structure to hold public and private keys
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// New - create a key pair from secure random data
func New() (*KeyPair, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return nil, err
	}
	return &KeyPair{
		PublicKey:  publicKey,
		PrivateKey: privateKey,
	}, nil
}

// Parse - decode a hex seed (32 bytes) or a full private key (64
// bytes), an optional 0x prefix is ignored
func Parse(s string) (*KeyPair, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if nil != err {
		return nil, fault.ErrInvalidKeyFile
	}

	var privateKey ed25519.PrivateKey
	switch len(b) {
	case ed25519.SeedSize:
		privateKey = ed25519.NewKeyFromSeed(b)
	case ed25519.PrivateKeySize:
		privateKey = ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
		// the embedded public key must match the seed
		if !bytes.Equal(privateKey, b) {
			return nil, fault.ErrInvalidKeyFile
		}
	default:
		return nil, fault.ErrInvalidKeyLength
	}

	return &KeyPair{
		PublicKey:  privateKey.Public().(ed25519.PublicKey),
		PrivateKey: privateKey,
	}, nil
}

// ReadFile - read a key file
func ReadFile(fileName string) (*KeyPair, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	return Parse(string(data))
}

// WriteFile - save the seed as hex, an existing file is never
// overwritten
func (k *KeyPair) WriteFile(fileName string) error {
	f, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if nil != err {
		return err
	}
	_, err = fmt.Fprintf(f, "%s\n", hex.EncodeToString(k.PrivateKey.Seed()))
	if closeErr := f.Close(); nil == err {
		err = closeErr
	}
	return err
}

// Address - hex encoded public key
func (k *KeyPair) Address() string {
	return hex.EncodeToString(k.PublicKey)
}

// Sign - sign a message
func (k *KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(k.PrivateKey, message)
}
