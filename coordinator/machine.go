// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package coordinator - the bundle proposal round state machine
//
// each round refreshes the pool state, validates the current proposal
// when another node uploaded it, uploads the next bundle when this node
// is selected and then waits for the round to advance
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sethvargo/go-retry"

	"github.com/bitmark-inc/archivenode/archive"
	"github.com/bitmark-inc/archivenode/background"
	"github.com/bitmark-inc/archivenode/bundle"
	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/metrics"
	"github.com/bitmark-inc/archivenode/registry"
	"github.com/bitmark-inc/logger"
)

// defaults
const (
	DefaultPauseInterval        = 60 * time.Second
	DefaultPollInterval         = 2 * time.Second
	DefaultRetryInterval        = time.Second
	DefaultMaximumRetryInterval = 60 * time.Second
	DefaultMinimumUploadDelay   = 30 * time.Second
	DefaultMaximumBundleBytes   = 20 * 1000 * 1000
	DefaultMaximumBundleItems   = 10000

	// how long a vote is remembered
	votedExpiry  = 24 * time.Hour
	votedCleanup = time.Hour

	// retry jitter
	retryJitterPercent = 10
)

// Snapshot - refreshable pool state
type Snapshot interface {
	Refresh(ctx context.Context) (*registry.PoolState, error)
}

// Cache - eviction of archived items
type Cache interface {
	Evict(archived uint64) (int, error)
}

// Configuration - round parameters, zero values select the defaults
type Configuration struct {
	Pool           string
	CoreVersion    string
	Runtime        string
	RuntimeVersion string

	PauseInterval        time.Duration
	PollInterval         time.Duration
	RetryInterval        time.Duration
	MaximumRetryInterval time.Duration
	MinimumUploadDelay   time.Duration

	Limits bundle.Limits

	// ask the registry before voting or proposing
	CheckEligibility bool
}

// session - everything captured at the start of a round
type session struct {
	pool         *registry.PoolState
	address      registry.Address
	createdAt    uint64
	instructions registry.BundleInstructions
}

// Machine - round state machine
type Machine struct {
	log      *logger.L
	registry registry.Client
	archive  archive.Client
	bundler  bundle.Bundler
	cache    Cache
	snapshot Snapshot
	metrics  *metrics.Metrics
	conf     Configuration
	voted    *cache.Cache
	fatal    func(error)
	now      func() time.Time
	session  *session
	state
}

// New - create a machine
//
// fatal is called once from Run with the error that stopped the machine
func New(
	registryClient registry.Client,
	archiveClient archive.Client,
	bundler bundle.Bundler,
	c Cache,
	snapshot Snapshot,
	m *metrics.Metrics,
	conf Configuration,
	fatal func(error),
) *Machine {
	if 0 == conf.PauseInterval {
		conf.PauseInterval = DefaultPauseInterval
	}
	if 0 == conf.PollInterval {
		conf.PollInterval = DefaultPollInterval
	}
	if 0 == conf.RetryInterval {
		conf.RetryInterval = DefaultRetryInterval
	}
	if 0 == conf.MaximumRetryInterval {
		conf.MaximumRetryInterval = DefaultMaximumRetryInterval
	}
	if 0 == conf.MinimumUploadDelay {
		conf.MinimumUploadDelay = DefaultMinimumUploadDelay
	}
	if 0 == conf.Limits.MaximumBytes {
		conf.Limits.MaximumBytes = DefaultMaximumBundleBytes
	}
	if 0 == conf.Limits.MaximumItems {
		conf.Limits.MaximumItems = DefaultMaximumBundleItems
	}

	machine := &Machine{
		log:      logger.New("coordinator"),
		registry: registryClient,
		archive:  archiveClient,
		bundler:  bundler,
		cache:    c,
		snapshot: snapshot,
		metrics:  m,
		conf:     conf,
		voted:    cache.New(votedExpiry, votedCleanup),
		fatal:    fatal,
		now:      time.Now,
	}
	machine.nextState(cStateRefresh)
	return machine
}

// Run - background process loop
func (m *Machine) Run(_ interface{}, shutdown <-chan struct{}) {
	log := m.log

	ctx, cancel := background.Context(shutdown)
	defer cancel()

	log.Info("starting…")
	for {
		err := m.Step(ctx)
		if nil != ctx.Err() {
			break
		}
		if nil != err {
			log.Criticalf("state: %s  fatal error: %s", m.state, err)
			if nil != m.fatal {
				m.fatal(err)
			}
			break
		}
	}
	log.Info("stopped")
}

// State - name of the next state to run
func (m *Machine) State() string {
	return m.state.String()
}

// Step - run the current state and select the next
//
// the only errors returned are fatal ones and context cancellation,
// everything else is logged and retried by a later state
func (m *Machine) Step(ctx context.Context) error {
	log := m.log
	log.Debugf("current state: %s", m.state)

	switch m.state {
	case cStateRefresh:
		pool, err := m.refresh(ctx)
		if nil != err {
			return err
		}
		m.session = &session{
			pool:         pool,
			address:      m.registry.Address(),
			createdAt:    pool.Proposal.CreatedAt,
			instructions: pool.Instructions,
		}
		m.nextState(cStateCheckPaused)

	case cStateCheckPaused:
		if m.session.pool.Paused {
			log.Warnf("pool: %s is paused, waiting: %s", m.conf.Pool, m.conf.PauseInterval)
			if !background.Sleep(ctx, m.conf.PauseInterval) {
				return ctx.Err()
			}
			m.nextState(cStateRefresh)
			break
		}
		m.nextState(cStateCheckRole)

	case cStateCheckRole:
		address := m.session.address
		if m.session.pool.IsStaker(address) {
			log.Debugf("address: %s is in the staker list", address)
			m.logRole()
			m.nextState(cStateEvict)
			break
		}
		ok, err := m.registry.IsValidator(ctx, address)
		if nil != err {
			if fault.IsFatal(err) {
				return err
			}
			log.Errorf("validator check error: %s", err)
			if !background.Sleep(ctx, m.conf.RetryInterval) {
				return ctx.Err()
			}
			m.nextState(cStateRefresh)
			break
		}
		if !ok {
			return fmt.Errorf("%w: address: %s  pool: %s", fault.ErrNotValidator, address, m.conf.Pool)
		}

		m.logRole()
		m.nextState(cStateEvict)

	case cStateEvict:
		archived := m.session.pool.HeightArchived
		deleted, err := m.cache.Evict(archived)
		if nil != err {
			log.Errorf("evict below: %d  error: %s", archived, err)
		} else if deleted > 0 {
			log.Debugf("evicted: %d items below: %d", deleted, archived)
		}
		m.nextState(cStateValidate)

	case cStateValidate:
		if err := m.validate(ctx); nil != err {
			return err
		}
		m.nextState(cStateDecideUpload)

	case cStateDecideUpload:
		instructions := m.session.pool.Instructions
		if instructions.Uploader.IsZero() || instructions.Uploader.Equal(m.session.address) {
			if err := m.upload(ctx); nil != err {
				return err
			}
		}
		m.nextState(cStateAwaitNext)

	case cStateAwaitNext:
		advanced, err := m.awaitNext(ctx)
		if nil != err {
			return err
		}
		if advanced {
			m.metrics.Round()
		}
		m.nextState(cStateRefresh)
	}

	if err := ctx.Err(); nil != err {
		return err
	}
	return nil
}

func (m *Machine) logRole() {
	instructions := m.session.pool.Instructions
	if instructions.Uploader.Equal(m.session.address) {
		m.log.Infof("selected as uploader from height: %d", instructions.FromHeight)
	} else {
		m.log.Infof("selected as validator")
	}
}

func (m *Machine) nextState(newState state) {
	m.state = newState
}

// refresh the snapshot, retrying transient errors with a capped
// exponential backoff until the context ends
func (m *Machine) refresh(ctx context.Context) (*registry.PoolState, error) {
	backoff := retry.NewExponential(m.conf.RetryInterval)
	backoff = retry.WithCappedDuration(m.conf.MaximumRetryInterval, backoff)
	backoff = retry.WithJitterPercent(retryJitterPercent, backoff)

	var pool *registry.PoolState
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := m.snapshot.Refresh(ctx)
		if nil == err {
			pool = p
			return nil
		}
		if fault.IsFatal(err) {
			return err
		}
		m.log.Warnf("refresh pool state error: %s", err)
		return retry.RetryableError(err)
	})
	return pool, err
}
