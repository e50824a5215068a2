// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metrics_test

import (
	"io/ioutil"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/archivenode/background"
	"github.com/bitmark-inc/archivenode/metrics"
	"github.com/bitmark-inc/logger"
)

const testingDirName = "testing"

func TestMain(m *testing.M) {
	os.RemoveAll(testingDirName)
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)

	result := m.Run()

	logger.Finalise()
	os.RemoveAll(testingDirName)
	os.Exit(result)
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics

	m.SetCacheHeight(1)
	m.SetDatabaseSize(1, 2)
	m.Round()
	m.Vote(true)
	m.Proposal()
	m.UploadFailure()
}

func TestServer(t *testing.T) {
	m := metrics.New()
	m.SetCacheHeight(1234)
	m.SetDatabaseSize(250, 1000)
	m.Vote(true)
	m.Vote(true)
	m.Vote(false)
	m.Proposal()

	s, err := metrics.NewServer("127.0.0.1:0", m)
	assert.Nil(t, err, "new server")

	processes := background.Start(background.Processes{s}, nil)
	defer processes.Stop()

	response, err := http.Get("http://" + s.Address() + "/metrics")
	assert.Nil(t, err, "get")
	defer response.Body.Close()

	body, err := ioutil.ReadAll(response.Body)
	assert.Nil(t, err, "read")
	text := string(body)

	expected := []string{
		"current_cache_height 1234",
		"current_db_size 250",
		"current_db_used 25",
		`votes_total{valid="true"} 2`,
		`votes_total{valid="false"} 1`,
		"proposals_total 1",
		"upload_failures_total 0",
	}
	for _, e := range expected {
		assert.True(t, strings.Contains(text, e), "missing: %q", e)
	}
}

func TestCollect(t *testing.T) {
	m := metrics.New()
	m.Round()
	m.Round()
	m.UploadFailure()

	expected := `
# HELP rounds_total Proposal rounds completed
# TYPE rounds_total counter
rounds_total 2
`
	err := testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(expected), "rounds_total")
	assert.Nil(t, err, "rounds")
}

func TestExposition(t *testing.T) {
	m := metrics.New()
	m.SetCacheHeight(77)
	m.Vote(false)

	s, err := metrics.NewServer("127.0.0.1:0", m)
	assert.Nil(t, err, "new server")

	processes := background.Start(background.Processes{s}, nil)
	defer processes.Stop()

	response, err := http.Get("http://" + s.Address() + "/metrics")
	assert.Nil(t, err, "get")
	defer response.Body.Close()

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(response.Body)
	assert.Nil(t, err, "parse exposition")

	height, ok := families["current_cache_height"]
	assert.True(t, ok, "missing cache height")
	assert.Equal(t, 77.0, height.GetMetric()[0].GetGauge().GetValue(), "cache height")

	votes, ok := families["votes_total"]
	assert.True(t, ok, "missing votes")
	assert.Equal(t, 1, len(votes.GetMetric()), "vote series")
	assert.Equal(t, "valid", votes.GetMetric()[0].GetLabel()[0].GetName(), "vote label")
	assert.Equal(t, "false", votes.GetMetric()[0].GetLabel()[0].GetValue(), "vote label value")
}
