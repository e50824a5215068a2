// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keypair_test

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/keypair"
)

// RFC 8032 test 1
const (
	seedHex      = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
	publicKeyHex = "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"
)

func TestParse(t *testing.T) {
	k, err := keypair.Parse(seedHex)
	assert.Nil(t, err, "seed")
	assert.Equal(t, publicKeyHex, k.Address(), "wrong public key")

	full, err := keypair.Parse("0x" + hex.EncodeToString(k.PrivateKey) + "\n")
	assert.Nil(t, err, "full key")
	assert.Equal(t, k.PrivateKey, full.PrivateKey, "full key differs")

	corrupt := make([]byte, len(k.PrivateKey))
	copy(corrupt, k.PrivateKey)
	corrupt[63] ^= 0x01
	_, err = keypair.Parse(hex.EncodeToString(corrupt))
	assert.Equal(t, fault.ErrInvalidKeyFile, err, "mismatched public key accepted")

	_, err = keypair.Parse("0102")
	assert.Equal(t, fault.ErrInvalidKeyLength, err, "short key accepted")

	_, err = keypair.Parse("zz")
	assert.Equal(t, fault.ErrInvalidKeyFile, err, "non hex accepted")
}

func TestFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "keypair")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	k, err := keypair.New()
	assert.Nil(t, err, "new")

	fileName := filepath.Join(dir, "node.key")
	err = k.WriteFile(fileName)
	assert.Nil(t, err, "write")

	err = k.WriteFile(fileName)
	assert.True(t, os.IsExist(err), "existing key overwritten: %v", err)

	r, err := keypair.ReadFile(fileName)
	assert.Nil(t, err, "read")
	assert.Equal(t, k.PrivateKey, r.PrivateKey, "round trip")

	message := []byte("bundle")
	assert.True(t, ed25519.Verify(r.PublicKey, message, k.Sign(message)), "signature")
}
