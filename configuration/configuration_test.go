// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/archivenode/configuration"
	"github.com/bitmark-inc/archivenode/fault"
)

type cacheBlock struct {
	Directory string `gluamapper:"directory" hcl:"directory"`
	Space     string `gluamapper:"space" hcl:"space"`
}

type testConfiguration struct {
	Network string     `gluamapper:"network" hcl:"network"`
	Pool    string     `gluamapper:"pool" hcl:"pool"`
	Cache   cacheBlock `gluamapper:"cache" hcl:"cache"`
}

const luaConfiguration = `
local M = {}
M.network = "testnet"
M.pool = "pool-" .. tostring(1 + 1)
M.cache = {
    directory = "cache",
    space = "1GB",
}
return M
`

const hclConfiguration = `
network = "local"
pool = "pool-7"
cache {
  directory = "blocks"
  space = "512MB"
}
`

func writeFile(t *testing.T, dir string, name string, content string) string {
	fileName := filepath.Join(dir, name)
	err := ioutil.WriteFile(fileName, []byte(content), 0600)
	assert.Nil(t, err, "write %q", fileName)
	return fileName
}

func TestParseLua(t *testing.T) {
	dir, err := ioutil.TempDir("", "configuration")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	c := &testConfiguration{}
	err = configuration.ParseConfigurationFile(writeFile(t, dir, "node.conf", luaConfiguration), c)
	assert.Nil(t, err, "parse error")
	assert.Equal(t, "testnet", c.Network, "network")
	assert.Equal(t, "pool-2", c.Pool, "pool")
	assert.Equal(t, "cache", c.Cache.Directory, "cache directory")
	assert.Equal(t, "1GB", c.Cache.Space, "cache space")
}

func TestParseHCL(t *testing.T) {
	dir, err := ioutil.TempDir("", "configuration")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	c := &testConfiguration{}
	err = configuration.ParseConfigurationFile(writeFile(t, dir, "node.hcl", hclConfiguration), c)
	assert.Nil(t, err, "parse error")
	assert.Equal(t, "local", c.Network, "network")
	assert.Equal(t, "pool-7", c.Pool, "pool")
	assert.Equal(t, "blocks", c.Cache.Directory, "cache directory")
	assert.Equal(t, "512MB", c.Cache.Space, "cache space")
}

func TestParseErrors(t *testing.T) {
	dir, err := ioutil.TempDir("", "configuration")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	fileName := writeFile(t, dir, "node.conf", luaConfiguration)

	var notStruct int
	err = configuration.ParseConfigurationFile(fileName, &notStruct)
	assert.Equal(t, fault.ErrInvalidStructPointer, err, "non struct accepted")

	err = configuration.ParseConfigurationFile(fileName, testConfiguration{})
	assert.Equal(t, fault.ErrInvalidStructPointer, err, "non pointer accepted")

	c := &testConfiguration{}
	err = configuration.ParseConfigurationFile(writeFile(t, dir, "bad.conf", "return 1 +"), c)
	assert.NotNil(t, err, "syntax error not detected")

	err = configuration.ParseConfigurationFile(writeFile(t, dir, "number.conf", "return 42"), c)
	assert.Equal(t, fault.ErrConfigurationInvalid, err, "non table accepted")

	err = configuration.ParseConfigurationFile(filepath.Join(dir, "missing.conf"), c)
	assert.NotNil(t, err, "missing file not detected")
}
