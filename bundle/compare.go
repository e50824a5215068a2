// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bundle

import (
	"golang.org/x/crypto/sha3"
)

// Compare - true if both bundles have the same length and digest
//
// the lengths are the sizes recorded with the bundles and are checked
// before anything is hashed
func Compare(upload []byte, uploadLength uint64, download []byte, downloadLength uint64) bool {
	if uploadLength != downloadLength {
		return false
	}
	return Digest(upload) == Digest(download)
}

// Digest - SHA3-256 of an encoded bundle
func Digest(data []byte) [32]byte {
	return sha3.Sum256(data)
}
