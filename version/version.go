// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package version

// ensure that git has a tag: "vX.Y.Z" corresponding to this version
const (
	Major   = "1"
	Minor   = "0"
	Patch   = "0"
	Version = Major + "." + Minor + "." + Patch
)
