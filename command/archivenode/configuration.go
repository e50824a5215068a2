// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/hashicorp/go-multierror"

	"github.com/bitmark-inc/archivenode/chain"
	"github.com/bitmark-inc/archivenode/configuration"
	"github.com/bitmark-inc/archivenode/coordinator"
	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/ingest"
	"github.com/bitmark-inc/archivenode/integration/evm"
	"github.com/bitmark-inc/archivenode/stake"
	"github.com/bitmark-inc/archivenode/util"
	"github.com/bitmark-inc/logger"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultRegistryBackend = "rest"
	defaultArchiveBackend  = "gateway"
	defaultRuntime         = evm.Name

	defaultRegistryKeyFile = "registry.key"
	defaultArchiveKeyFile  = "archive.key"

	defaultCacheDirectory = "cache"
	defaultCacheSpace     = "1GB"

	defaultLogDirectory = "log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// registry backends
const (
	registryREST     = "rest"
	registryContract = "contract"
)

// archive backends
const (
	archiveGateway = "gateway"
	archiveS3      = "s3"
	archiveGCS     = "gcs"
)

// path expanded or calculated defaults
var (
	defaultLogLevels = map[string]string{
		logger.DefaultTag: "critical",
	}
)

// RegistryType - pool registry access
type RegistryType struct {
	Backend           string  `gluamapper:"backend" hcl:"backend" json:"backend"`
	Endpoint          string  `gluamapper:"endpoint" hcl:"endpoint" json:"endpoint"`
	KeyFile           string  `gluamapper:"key_file" hcl:"key_file" json:"key_file"`
	GasMultiplier     float64 `gluamapper:"gas_multiplier" hcl:"gas_multiplier" json:"gas_multiplier"`
	RequestsPerSecond float64 `gluamapper:"requests_per_second" hcl:"requests_per_second" json:"requests_per_second"`
}

// ArchiveType - blob store access
type ArchiveType struct {
	Backend         string `gluamapper:"backend" hcl:"backend" json:"backend"`
	Endpoint        string `gluamapper:"endpoint" hcl:"endpoint" json:"endpoint"`
	KeyFile         string `gluamapper:"key_file" hcl:"key_file" json:"key_file"`
	Bucket          string `gluamapper:"bucket" hcl:"bucket" json:"bucket"`
	Prefix          string `gluamapper:"prefix" hcl:"prefix" json:"prefix"`
	Region          string `gluamapper:"region" hcl:"region" json:"region"`
	CredentialsFile string `gluamapper:"credentials_file" hcl:"credentials_file" json:"credentials_file"`
}

// RuntimeType - source chain access
type RuntimeType struct {
	Name      string `gluamapper:"name" hcl:"name" json:"name"`
	Endpoint  string `gluamapper:"endpoint" hcl:"endpoint" json:"endpoint"`
	BatchSize int    `gluamapper:"batch_size" hcl:"batch_size" json:"batch_size"`
}

// CacheType - local item cache
type CacheType struct {
	Directory    string `gluamapper:"directory" hcl:"directory" json:"directory"`
	Space        string `gluamapper:"space" hcl:"space" json:"space"`
	DiskBackoff  string `gluamapper:"disk_backoff" hcl:"disk_backoff" json:"disk_backoff"`
	ErrorBackoff string `gluamapper:"error_backoff" hcl:"error_backoff" json:"error_backoff"`
}

// CoordinatorType - round timing and bundle limits
type CoordinatorType struct {
	PauseInterval      string `gluamapper:"pause_interval" hcl:"pause_interval" json:"pause_interval"`
	PollInterval       string `gluamapper:"poll_interval" hcl:"poll_interval" json:"poll_interval"`
	RetryInterval      string `gluamapper:"retry_interval" hcl:"retry_interval" json:"retry_interval"`
	MinimumUploadDelay string `gluamapper:"minimum_upload_delay" hcl:"minimum_upload_delay" json:"minimum_upload_delay"`
	MaximumBundleBytes string `gluamapper:"max_bundle_bytes" hcl:"max_bundle_bytes" json:"max_bundle_bytes"`
	MaximumBundleItems int    `gluamapper:"max_bundle_items" hcl:"max_bundle_items" json:"max_bundle_items"`
	CheckEligibility   bool   `gluamapper:"check_eligibility" hcl:"check_eligibility" json:"check_eligibility"`
}

// MetricsType - prometheus listener
type MetricsType struct {
	Listen string `gluamapper:"listen" hcl:"listen" json:"listen"`
}

// Configuration - the whole configuration file
type Configuration struct {
	DataDirectory string `gluamapper:"data_directory" hcl:"data_directory" json:"data_directory"`
	PidFile       string `gluamapper:"pidfile" hcl:"pidfile" json:"pidfile"`
	Network       string `gluamapper:"network" hcl:"network" json:"network"`
	Pool          string `gluamapper:"pool" hcl:"pool" json:"pool"`
	Name          string `gluamapper:"name" hcl:"name" json:"name"`
	Stake         string `gluamapper:"stake" hcl:"stake" json:"stake"`
	Commission    string `gluamapper:"commission" hcl:"commission" json:"commission"`

	Registry    RegistryType         `gluamapper:"registry" hcl:"registry" json:"registry"`
	Archive     ArchiveType          `gluamapper:"archive" hcl:"archive" json:"archive"`
	Runtime     RuntimeType          `gluamapper:"runtime" hcl:"runtime" json:"runtime"`
	Cache       CacheType            `gluamapper:"cache" hcl:"cache" json:"cache"`
	Coordinator CoordinatorType      `gluamapper:"coordinator" hcl:"coordinator" json:"coordinator"`
	Metrics     MetricsType          `gluamapper:"metrics" hcl:"metrics" json:"metrics"`
	Logging     logger.Configuration `gluamapper:"logging" hcl:"logging" json:"logging"`

	// decoded values, filled in by getConfiguration
	cacheSpace  uint64
	stake       *big.Int
	commission  *big.Int
	ingest      ingest.Configuration
	coordinator coordinator.Configuration
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{
		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		Network:       chain.Mainnet,

		Registry: RegistryType{
			Backend: defaultRegistryBackend,
			KeyFile: defaultRegistryKeyFile,
		},
		Archive: ArchiveType{
			Backend: defaultArchiveBackend,
			KeyFile: defaultArchiveKeyFile,
		},
		Runtime: RuntimeType{
			Name: defaultRuntime,
		},
		Cache: CacheType{
			Directory: defaultCacheDirectory,
			Space:     defaultCacheSpace,
		},
		Coordinator: CoordinatorType{
			MaximumBundleItems: coordinator.DefaultMaximumBundleItems,
		},
		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      "", // node name is used when blank
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	if err := options.validate(); nil != err {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("%w: path: %q is not a valid directory", fault.ErrConfigurationInvalid, options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("%w: path: %q is not a directory", fault.ErrConfigurationInvalid, options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Registry.KeyFile,
		&options.Cache.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
		&options.Archive.KeyFile,
		&options.Archive.CredentialsFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// the log file must be a plain name
	switch filepath.Dir(options.Logging.File) {
	case "", ".":
	default:
		return nil, fmt.Errorf("%w: files: %q is not plain name", fault.ErrConfigurationInvalid, options.Logging.File)
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Cache.Directory,
		&options.Logging.Directory,
	} {
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}

// check every field, collecting all problems before returning
func (options *Configuration) validate() error {
	var result *multierror.Error

	invalid := func(format string, args ...interface{}) {
		result = multierror.Append(result, fmt.Errorf("%w: "+format, append([]interface{}{fault.ErrConfigurationInvalid}, args...)...))
	}

	options.Network = strings.ToLower(options.Network)
	if !chain.Valid(options.Network) {
		invalid("network: %q is not supported", options.Network)
	}

	if "" == options.Pool {
		invalid("pool: must not be blank")
	}

	options.Registry.Backend = strings.ToLower(options.Registry.Backend)
	switch options.Registry.Backend {
	case registryREST:
		if "" == options.Registry.Endpoint {
			if endpoint, ok := chain.DefaultEndpoint(options.Network); ok {
				options.Registry.Endpoint = endpoint
			}
		}
	case registryContract:
		if "" == options.Registry.Endpoint {
			invalid("registry: endpoint is required for backend: %q", registryContract)
		}
	default:
		invalid("registry: backend: %q is not one of: %s, %s", options.Registry.Backend, registryREST, registryContract)
	}
	if options.Registry.GasMultiplier < 0 {
		invalid("registry: gas_multiplier: %v is negative", options.Registry.GasMultiplier)
	}

	options.Archive.Backend = strings.ToLower(options.Archive.Backend)
	switch options.Archive.Backend {
	case archiveGateway:
		if "" == options.Archive.Endpoint {
			invalid("archive: endpoint is required for backend: %q", archiveGateway)
		}
		if "" == options.Archive.KeyFile {
			invalid("archive: key_file is required for backend: %q", archiveGateway)
		}
	case archiveS3, archiveGCS:
		if "" == options.Archive.Bucket {
			invalid("archive: bucket is required for backend: %q", options.Archive.Backend)
		}
	default:
		invalid("archive: backend: %q is not one of: %s, %s, %s", options.Archive.Backend, archiveGateway, archiveS3, archiveGCS)
	}

	if evm.Name != options.Runtime.Name {
		invalid("runtime: name: %q is not supported", options.Runtime.Name)
	}
	if "" == options.Runtime.Endpoint {
		invalid("runtime: endpoint must not be blank")
	}
	if options.Runtime.BatchSize < 0 {
		invalid("runtime: batch_size: %d is negative", options.Runtime.BatchSize)
	}

	var err error
	if options.cacheSpace, err = parseSize("cache: space", options.Cache.Space); nil != err {
		result = multierror.Append(result, err)
	}
	options.ingest.DiskBudget = options.cacheSpace

	durations := []struct {
		name  string
		value string
		d     *time.Duration
	}{
		{"cache: disk_backoff", options.Cache.DiskBackoff, &options.ingest.DiskBackoff},
		{"cache: error_backoff", options.Cache.ErrorBackoff, &options.ingest.ErrorBackoff},
		{"coordinator: pause_interval", options.Coordinator.PauseInterval, &options.coordinator.PauseInterval},
		{"coordinator: poll_interval", options.Coordinator.PollInterval, &options.coordinator.PollInterval},
		{"coordinator: retry_interval", options.Coordinator.RetryInterval, &options.coordinator.RetryInterval},
		{"coordinator: minimum_upload_delay", options.Coordinator.MinimumUploadDelay, &options.coordinator.MinimumUploadDelay},
	}
	for _, item := range durations {
		if "" == item.value {
			continue // zero selects the default
		}
		d, err := time.ParseDuration(item.value)
		if nil != err || d <= 0 {
			invalid("%s: %q is not a positive duration", item.name, item.value)
			continue
		}
		*item.d = d
	}

	if "" != options.Coordinator.MaximumBundleBytes {
		n, err := parseSize("coordinator: max_bundle_bytes", options.Coordinator.MaximumBundleBytes)
		if nil != err {
			result = multierror.Append(result, err)
		}
		options.coordinator.Limits.MaximumBytes = n
	}
	if options.Coordinator.MaximumBundleItems < 0 {
		invalid("coordinator: max_bundle_items: %d is negative", options.Coordinator.MaximumBundleItems)
	}
	options.coordinator.Limits.MaximumItems = options.Coordinator.MaximumBundleItems
	options.coordinator.CheckEligibility = options.Coordinator.CheckEligibility

	if "" != options.Stake {
		if options.stake, err = stake.ParseAmount(options.Stake); nil != err {
			result = multierror.Append(result, err)
		}
	}
	if "" != options.Commission {
		if options.commission, err = stake.ParseAmount(options.Commission); nil != err {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// sizes are written as "500MB", "2GiB" or a plain byte count
func parseSize(name string, s string) (uint64, error) {
	n, err := units.RAMInBytes(s)
	if nil != err {
		n, err = units.FromHumanSize(s)
	}
	if nil != err || n < 0 {
		return 0, fmt.Errorf("%w: %s: %q is not a size", fault.ErrConfigurationInvalid, name, s)
	}
	return uint64(n), nil
}
