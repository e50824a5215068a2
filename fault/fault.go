// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type FatalError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised      = ExistsError("already initialised")
	ErrBundleTooSmall          = LengthError("bundle is below minimum size")
	ErrCacheNotOpen            = ProcessError("cache is not open")
	ErrConfigurationInvalid    = InvalidError("configuration is invalid")
	ErrEmptyBundle             = LengthError("bundle is empty")
	ErrInsufficientFunds       = FatalError("archive wallet does not have enough funds")
	ErrInvalidAddress          = InvalidError("invalid address")
	ErrInvalidBackend          = InvalidError("invalid backend")
	ErrInvalidCount            = InvalidError("invalid count")
	ErrInvalidBundle           = InvalidError("bundle data is invalid")
	ErrInvalidHeight           = InvalidError("invalid height")
	ErrInvalidItem             = InvalidError("item payload is not a JSON document")
	ErrInvalidKeyFile          = InvalidError("invalid key file")
	ErrInvalidKeyLength        = LengthError("invalid key length")
	ErrInvalidNetwork          = InvalidError("invalid network")
	ErrInvalidStake            = FatalError("desired stake is invalid")
	ErrInvalidStructPointer    = InvalidError("invalid struct pointer")
	ErrInvalidURL              = InvalidError("invalid URL")
	ErrMissingBundleData       = NotFoundError("bundle data is not cached")
	ErrNoPoolState             = NotFoundError("pool state has not been fetched")
	ErrNotFound                = NotFoundError("not found")
	ErrNotInitialised          = NotFoundError("not initialised")
	ErrNotValidator            = FatalError("node is not an active validator for the pool")
	ErrPointerRecordTruncated  = RecordError("pointer record is truncated")
	ErrRequestFailed           = ProcessError("request failed")
	ErrRuntimeMismatch         = FatalError("pool does not match the integration runtime")
	ErrStakeBelowMinimum       = FatalError("desired stake is lower than the minimum stake")
	ErrStakeFailed             = FatalError("stake transaction failed")
	ErrTransactionFailed       = ProcessError("transaction failed")
	ErrUnparseableConfig       = FatalError("pool config cannot be parsed")
	ErrUnparseableMetadata     = FatalError("pool metadata cannot be parsed")
	ErrUnparseableVersionRange = FatalError("pool version requirement cannot be parsed")
	ErrVersionMismatch         = FatalError("running version does not satisfy pool version requirements")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e FatalError) Error() string    { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e RecordError) Error() string   { return string(e) }

// determine the class of an error
//
// wrapped errors (fmt.Errorf with %w) are unwrapped so context can be
// added at each layer without losing the class
func IsErrExists(e error) bool   { var t ExistsError; return errors.As(e, &t) }
func IsErrInvalid(e error) bool  { var t InvalidError; return errors.As(e, &t) }
func IsErrLength(e error) bool   { var t LengthError; return errors.As(e, &t) }
func IsErrNotFound(e error) bool { var t NotFoundError; return errors.As(e, &t) }
func IsErrProcess(e error) bool  { var t ProcessError; return errors.As(e, &t) }
func IsErrRecord(e error) bool   { var t RecordError; return errors.As(e, &t) }

// IsFatal - true if the node must stop
func IsFatal(e error) bool { var t FatalError; return errors.As(e, &t) }
