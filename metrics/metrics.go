// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package metrics - prometheus gauges and counters for the node loops
//
// the loops only write values, the HTTP endpoint only reads them
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - all node metrics on a private registry
//
// all methods accept a nil receiver and then do nothing
type Metrics struct {
	registry *prometheus.Registry

	cacheHeight    prometheus.Gauge
	databaseSize   prometheus.Gauge
	databaseUsed   prometheus.Gauge
	rounds         prometheus.Counter
	votes          *prometheus.CounterVec
	proposals      prometheus.Counter
	uploadFailures prometheus.Counter
}

// New - create and register the metrics
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "current_cache_height",
			Help: "The current height the cache has indexed to",
		}),
		databaseSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "current_db_size",
			Help: "The size of the local database in bytes",
		}),
		databaseUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "current_db_used",
			Help: "The database usage in percent of the disk budget",
		}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rounds_total",
			Help: "Proposal rounds completed",
		}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "votes_total",
			Help: "Votes cast",
		}, []string{"valid"}),
		proposals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "proposals_total",
			Help: "Bundle proposals submitted",
		}),
		uploadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upload_failures_total",
			Help: "Bundle uploads or submissions that failed",
		}),
	}

	m.registry.MustRegister(
		m.cacheHeight,
		m.databaseSize,
		m.databaseUsed,
		m.rounds,
		m.votes,
		m.proposals,
		m.uploadFailures,
	)
	return m
}

// Handler - HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer - the registry for collection
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// SetCacheHeight - record the ingestion head
func (m *Metrics) SetCacheHeight(height uint64) {
	if nil == m {
		return
	}
	m.cacheHeight.Set(float64(height))
}

// SetDatabaseSize - record disk use and the percentage of budget
func (m *Metrics) SetDatabaseSize(size uint64, budget uint64) {
	if nil == m {
		return
	}
	m.databaseSize.Set(float64(size))
	if 0 != budget {
		m.databaseUsed.Set(100 * float64(size) / float64(budget))
	}
}

// Round - count a completed round
func (m *Metrics) Round() {
	if nil == m {
		return
	}
	m.rounds.Inc()
}

// Vote - count a vote by verdict
func (m *Metrics) Vote(valid bool) {
	if nil == m {
		return
	}
	m.votes.WithLabelValues(strconv.FormatBool(valid)).Inc()
}

// Proposal - count a submitted proposal
func (m *Metrics) Proposal() {
	if nil == m {
		return
	}
	m.proposals.Inc()
}

// UploadFailure - count a failed upload or submission
func (m *Metrics) UploadFailure() {
	if nil == m {
		return
	}
	m.uploadFailures.Inc()
}
