// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"runtime"
	"time"

	"github.com/docker/go-units"

	"github.com/bitmark-inc/archivenode/background"
	"github.com/bitmark-inc/logger"
)

const statsDelay = 60 * time.Second

type memoryStats struct {
	log *logger.L
}

// Run - log memory usage until shutdown
func (s *memoryStats) Run(args interface{}, shutdown <-chan struct{}) {
	ctx, cancel := background.Context(shutdown)
	defer cancel()

	for {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		s.log.Infof("allocated: %s  cumulative: %s  OS virtual: %s  goroutines: %d",
			units.BytesSize(float64(m.Alloc)),
			units.BytesSize(float64(m.TotalAlloc)),
			units.BytesSize(float64(m.Sys)),
			runtime.NumGoroutine(),
		)

		if !background.Sleep(ctx, statsDelay) {
			return
		}
	}
}
