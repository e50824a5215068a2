// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package integration - the source of the data a node archives
package integration

import (
	"context"

	"github.com/bitmark-inc/archivenode/storage"
)

// Runtime - fetches upstream items
//
// FetchBatch must return consecutive items starting at fromHeight and
// may return fewer than requested, or none, when the source has not
// produced them yet; fetching the same height twice must give the same
// payload
type Runtime interface {
	Name() string
	Version() string
	FetchBatch(ctx context.Context, fromHeight uint64) ([]storage.Item, error)
}
