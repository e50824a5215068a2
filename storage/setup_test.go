// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/archivenode/storage"
	"github.com/bitmark-inc/logger"
)

const (
	testingDirName = "testing"
)

func TestMain(m *testing.M) {
	setupTestLogger()
	result := m.Run()
	teardownTestLogger()
	os.Exit(result)
}

func setupTestLogger() {
	removeFiles()
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

	// start logging
	_ = logger.Initialise(logging)
}

func teardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	os.RemoveAll(testingDirName)
}

// open a fresh store in its own directory
func setupStore(t *testing.T) (*storage.Store, func()) {
	dir, err := ioutil.TempDir("", "cache")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}

	s, err := storage.Open(dir, storage.ReadWrite)
	if nil != err {
		os.RemoveAll(dir)
		t.Fatalf("open error: %s", err)
	}

	return s, func() {
		s.Close()
		os.RemoveAll(dir)
	}
}

func TestReopen(t *testing.T) {
	dir, err := ioutil.TempDir("", "cache")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	s, err := storage.Open(dir, storage.ReadWrite)
	assert.Nil(t, err, "open")
	err = s.Append([]storage.Item{{Height: 5, Value: []byte("five")}}, 6)
	assert.Nil(t, err, "append")
	_, err = s.Evict(5)
	assert.Nil(t, err, "evict")
	s.Close()

	// pointers survive a restart
	s, err = storage.Open(dir, storage.ReadOnly)
	assert.Nil(t, err, "reopen")
	defer s.Close()

	head, err := s.Head()
	assert.Nil(t, err, "head")
	assert.Equal(t, uint64(6), head, "wrong head")

	tail, err := s.Tail()
	assert.Nil(t, err, "tail")
	assert.Equal(t, uint64(5), tail, "wrong tail")

	value, err := s.Get(5)
	assert.Nil(t, err, "get")
	assert.Equal(t, []byte("five"), value, "wrong value")
}

func TestOpenReadOnlyMissing(t *testing.T) {
	dir, err := ioutil.TempDir("", "cache")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	_, err = storage.Open(dir+"/absent", storage.ReadOnly)
	assert.NotNil(t, err, "missing read only database opened")
}
