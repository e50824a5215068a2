// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ingest - background worker filling the cache from the
// runtime
package ingest

import (
	"context"
	"time"

	units "github.com/docker/go-units"

	"github.com/bitmark-inc/archivenode/background"
	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/integration"
	"github.com/bitmark-inc/archivenode/metrics"
	"github.com/bitmark-inc/archivenode/registry"
	"github.com/bitmark-inc/archivenode/storage"
	"github.com/bitmark-inc/logger"
)

// default intervals
const (
	DefaultDiskBackoff    = 60 * time.Second
	DefaultErrorBackoff   = 10 * time.Second
	DefaultIdleBackoff    = 2 * time.Second
	DefaultReportInterval = 60 * time.Second
)

// Cache - the parts of the store used by the worker
type Cache interface {
	Head() (uint64, error)
	Append(items []storage.Item, newHead uint64) error
	SizeOnDisk() (uint64, error)
}

// PoolState - latest known pool state, nil if not yet fetched
type PoolState interface {
	Get() *registry.PoolState
}

// Configuration - worker limits and intervals, zero values select
// the defaults
type Configuration struct {
	DiskBudget     uint64 // bytes, zero for no limit
	DiskBackoff    time.Duration
	ErrorBackoff   time.Duration
	IdleBackoff    time.Duration
	ReportInterval time.Duration
}

// Worker - ingestion loop
type Worker struct {
	log     *logger.L
	cache   Cache
	state   PoolState
	runtime integration.Runtime
	metrics *metrics.Metrics
	conf    Configuration

	now        func() time.Time
	lastReport time.Time
}

// New - create a worker
func New(cache Cache, state PoolState, runtime integration.Runtime, m *metrics.Metrics, conf Configuration) *Worker {
	if 0 == conf.DiskBackoff {
		conf.DiskBackoff = DefaultDiskBackoff
	}
	if 0 == conf.ErrorBackoff {
		conf.ErrorBackoff = DefaultErrorBackoff
	}
	if 0 == conf.IdleBackoff {
		conf.IdleBackoff = DefaultIdleBackoff
	}
	if 0 == conf.ReportInterval {
		conf.ReportInterval = DefaultReportInterval
	}
	return &Worker{
		log:     logger.New("ingest"),
		cache:   cache,
		state:   state,
		runtime: runtime,
		metrics: m,
		conf:    conf,
		now:     time.Now,
	}
}

// Run - background process loop
func (w *Worker) Run(args interface{}, shutdown <-chan struct{}) {
	log := w.log

	ctx, cancel := background.Context(shutdown)
	defer cancel()

	log.Info("starting…")
loop:
	for {
		wait, err := w.Step(ctx)
		if nil != ctx.Err() {
			break loop
		}
		if nil != err {
			log.Errorf("ingest error: %s  retry in: %s", err, wait)
		}
		if wait > 0 && !background.Sleep(ctx, wait) {
			break loop
		}
	}
	log.Info("stopped")
}

// Step - one iteration of the loop
//
// returns the time to wait before the next step; the head pointer is
// only moved by a successful append
func (w *Worker) Step(ctx context.Context) (time.Duration, error) {
	log := w.log

	stored, err := w.cache.Head()
	seeded := false
	if fault.IsErrNotFound(err) {
		seeded = true
	} else if nil != err {
		return w.conf.ErrorBackoff, err
	}

	head := stored
	state := w.state.Get()
	if seeded {
		if nil == state {
			return w.conf.ErrorBackoff, fault.ErrNoPoolState
		}
		head = state.HeightArchived
		log.Infof("empty cache, starting at archived height: %d", head)
	} else if nil != state && state.HeightArchived > head {
		log.Warnf("head: %d is behind archived height: %d, skipping ahead", head, state.HeightArchived)
		head = state.HeightArchived
	}

	size, err := w.cache.SizeOnDisk()
	if nil != err {
		return w.conf.ErrorBackoff, err
	}
	w.metrics.SetDatabaseSize(size, w.conf.DiskBudget)
	if 0 != w.conf.DiskBudget && size > w.conf.DiskBudget {
		log.Warnf("cache size: %s exceeds budget: %s, pausing ingestion",
			units.BytesSize(float64(size)), units.BytesSize(float64(w.conf.DiskBudget)))
		return w.conf.DiskBackoff, nil
	}

	items, err := w.runtime.FetchBatch(ctx, head)
	if nil != err {
		return w.conf.ErrorBackoff, err
	}

	n := 0
	for n < len(items) && head+uint64(n) == items[n].Height {
		n += 1
	}
	if n < len(items) {
		log.Warnf("runtime returned height: %d  expected: %d, dropping %d items",
			items[n].Height, head+uint64(n), len(items)-n)
	}

	newHead := head + uint64(n)
	if 0 == n && !seeded && head == stored {
		w.report(newHead)
		return w.conf.IdleBackoff, nil
	}

	if err := w.cache.Append(items[:n], newHead); nil != err {
		return w.conf.ErrorBackoff, err
	}

	log.Debugf("cached: [%d, %d)", head, newHead)
	w.metrics.SetCacheHeight(newHead)
	w.report(newHead)

	if 0 == n {
		return w.conf.IdleBackoff, nil
	}
	return 0, nil
}

func (w *Worker) report(head uint64) {
	now := w.now()
	if now.Sub(w.lastReport) < w.conf.ReportInterval {
		return
	}
	w.lastReport = now
	w.log.Infof("cached to height: %d", head)
}
