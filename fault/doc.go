// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches.
//
// Errors are grouped into classes by type so a caller can decide how
// to react without knowing every individual error.  The FatalError
// class marks conditions where the node must stop: the top level of
// the program checks IsFatal and performs the only exit.
package fault
