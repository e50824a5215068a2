// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"encoding/binary"
	"strings"

	"golang.org/x/crypto/sha3"
)

var adjectives = []string{
	"able", "brave", "calm", "eager", "fair", "gentle", "happy", "jolly",
	"kind", "lively", "merry", "nimble", "proud", "quick", "quiet", "rapid",
	"sharp", "shy", "silent", "smart", "steady", "swift", "tidy", "vivid",
	"warm", "wise", "witty", "young", "zany", "bold", "clever", "daring",
}

var colours = []string{
	"amber", "azure", "beige", "black", "blue", "bronze", "brown", "coral",
	"crimson", "cyan", "gold", "gray", "green", "indigo", "ivory", "jade",
	"lavender", "lime", "magenta", "maroon", "navy", "olive", "orange", "pink",
	"plum", "purple", "red", "ruby", "salmon", "silver", "teal", "white",
}

var animals = []string{
	"badger", "bat", "bear", "beaver", "bison", "camel", "cat", "crane",
	"crow", "deer", "dolphin", "eagle", "falcon", "ferret", "fox", "gecko",
	"goat", "hawk", "heron", "koala", "lemur", "lion", "lynx", "moose",
	"otter", "owl", "panda", "quail", "raven", "seal", "tiger", "wolf",
}

// NodeName - deterministic human readable name derived from the
// parts, of the form: adjective-colour-animal
func NodeName(parts ...string) string {
	digest := sha3.Sum256([]byte(strings.Join(parts, "\x00")))

	pick := func(offset int, words []string) string {
		n := binary.BigEndian.Uint64(digest[offset : offset+8])
		return words[n%uint64(len(words))]
	}

	return pick(0, adjectives) + "-" + pick(8, colours) + "-" + pick(16, animals)
}
