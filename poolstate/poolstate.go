// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package poolstate - the node's local copy of the remote pool state
//
// the copy is replaced as a whole on each refresh, readers get a
// pointer to an immutable state
package poolstate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/registry"
	"github.com/bitmark-inc/logger"
)

// Fetcher - source of the raw pool state
type Fetcher interface {
	FetchPoolState(ctx context.Context) (*registry.RawPoolState, error)
}

// Snapshot - latest decoded pool state
type Snapshot struct {
	sync.RWMutex
	log         *logger.L
	fetcher     Fetcher
	runtime     string
	coreVersion *semver.Version
	state       *registry.PoolState
}

// New - create an empty snapshot for a runtime and core version
func New(fetcher Fetcher, runtime string, coreVersion string) (*Snapshot, error) {
	v, err := semver.NewVersion(coreVersion)
	if nil != err {
		return nil, fmt.Errorf("%w: core version: %q", fault.ErrConfigurationInvalid, coreVersion)
	}
	return &Snapshot{
		log:         logger.New("poolstate"),
		fetcher:     fetcher,
		runtime:     runtime,
		coreVersion: v,
	}, nil
}

// Refresh - fetch, decode and check the pool state
//
// fetch errors are returned unchanged and the previous state is kept;
// decode and compatibility failures are fatal
func (s *Snapshot) Refresh(ctx context.Context) (*registry.PoolState, error) {
	raw, err := s.fetcher.FetchPoolState(ctx)
	if nil != err {
		s.log.Warnf("fetch pool state error: %s", err)
		return nil, err
	}

	state, err := registry.DecodePoolState(raw)
	if nil != err {
		s.log.Criticalf("decode pool state error: %s", err)
		return nil, err
	}

	if err := CheckCompatibility(state.Metadata, s.runtime, s.coreVersion); nil != err {
		s.log.Criticalf("pool runtime: %q  versions: %q  node runtime: %q  version: %s  error: %s",
			state.Metadata.Runtime, state.Metadata.Versions, s.runtime, s.coreVersion, err)
		return nil, err
	}

	s.Lock()
	s.state = state
	s.Unlock()

	s.log.Debugf("archived: %d  proposal: %q  created: %d",
		state.HeightArchived, state.Proposal.BundleID, state.Proposal.CreatedAt)

	return state, nil
}

// Get - the last good state, nil before the first refresh
func (s *Snapshot) Get() *registry.PoolState {
	s.RLock()
	defer s.RUnlock()
	return s.state
}

// CheckCompatibility - the pool must name this runtime and accept
// this core version, a blank version range accepts any version
func CheckCompatibility(metadata registry.PoolMetadata, runtime string, coreVersion *semver.Version) error {
	if metadata.Runtime != runtime {
		return fmt.Errorf("%w: pool runtime: %q", fault.ErrRuntimeMismatch, metadata.Runtime)
	}

	versions := strings.TrimSpace(metadata.Versions)
	if "" == versions {
		return nil
	}

	constraint, err := semver.NewConstraint(versions)
	if nil != err {
		return fmt.Errorf("%w: %q", fault.ErrUnparseableVersionRange, versions)
	}
	if !constraint.Check(coreVersion) {
		return fmt.Errorf("%w: requires: %q", fault.ErrVersionMismatch, versions)
	}
	return nil
}
