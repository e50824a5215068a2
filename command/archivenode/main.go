// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bitmark-inc/archivenode/archive"
	"github.com/bitmark-inc/archivenode/archive/gateway"
	"github.com/bitmark-inc/archivenode/archive/gcs"
	"github.com/bitmark-inc/archivenode/archive/s3"
	"github.com/bitmark-inc/archivenode/background"
	"github.com/bitmark-inc/archivenode/bundle"
	"github.com/bitmark-inc/archivenode/coordinator"
	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/ingest"
	"github.com/bitmark-inc/archivenode/integration/evm"
	"github.com/bitmark-inc/archivenode/keypair"
	"github.com/bitmark-inc/archivenode/metrics"
	"github.com/bitmark-inc/archivenode/poolstate"
	"github.com/bitmark-inc/archivenode/registry"
	"github.com/bitmark-inc/archivenode/registry/contract"
	"github.com/bitmark-inc/archivenode/registry/rest"
	"github.com/bitmark-inc/archivenode/stake"
	"github.com/bitmark-inc/archivenode/storage"
	"github.com/bitmark-inc/archivenode/util"
	coreversion "github.com/bitmark-inc/archivenode/version"
	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = coreversion.Version

// keys, name and cache location of this node
type nodeIdentity struct {
	name           string
	address        string
	cacheDirectory string
	restKey        *keypair.KeyPair
	contractKey    *ecdsa.PrivateKey
}

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "memory-stats", HasArg: getoptions.NO_ARGUMENT, Short: 'm'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	identity, err := getIdentity(theConfiguration)
	if nil != err {
		exitwithstatus.Message("%s: failed to read registry key: %q  error: %s", program, theConfiguration.Registry.KeyFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration, identity) {
		return
	}

	if len(options["verbose"]) > 0 {
		theConfiguration.Logging.Console = true
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// start the item cache
	log.Info("initialise storage")
	store, err := storage.Open(identity.cacheDirectory, false)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer store.Close()

	// these commands are allowed to access the internal database
	if len(arguments) > 0 && processDataCommand(log, arguments, store) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// source chain
	runtime, err := evm.Dial(ctx, theConfiguration.Runtime.Endpoint, theConfiguration.Runtime.BatchSize)
	if nil != err {
		log.Criticalf("runtime: %s initialise error: %s", theConfiguration.Runtime.Name, err)
		exitwithstatus.Message("runtime: %s initialise error: %s", theConfiguration.Runtime.Name, err)
	}

	registryClient, err := newRegistry(ctx, theConfiguration, identity)
	if nil != err {
		log.Criticalf("registry initialise error: %s", err)
		exitwithstatus.Message("registry initialise error: %s", err)
	}

	archiveClient, err := newArchive(ctx, theConfiguration)
	if nil != err {
		log.Criticalf("archive initialise error: %s", err)
		exitwithstatus.Message("archive initialise error: %s", err)
	}

	snapshot, err := poolstate.New(registryClient, runtime.Name(), version)
	if nil != err {
		log.Criticalf("pool state initialise error: %s", err)
		exitwithstatus.Message("pool state initialise error: %s", err)
	}

	// the pool must be readable and compatible before anything starts
	pool, err := snapshot.Refresh(ctx)
	if nil != err {
		log.Criticalf("pool: %s  state error: %s", theConfiguration.Pool, err)
		exitwithstatus.Message("pool: %s  state error: %s", theConfiguration.Pool, err)
	}

	err = stake.Reconcile(ctx, registryClient, pool, theConfiguration.stake, theConfiguration.commission)
	if nil != err {
		log.Criticalf("stake error: %s", err)
		exitwithstatus.Message("stake error: %s", err)
	}

	banner(log, theConfiguration, identity, store, runtime)

	m := metrics.New()

	fatal := make(chan error, 1)
	reportFatal := func(err error) {
		select {
		case fatal <- err:
		default:
		}
	}

	coordinatorConfiguration := theConfiguration.coordinator
	coordinatorConfiguration.Pool = theConfiguration.Pool
	coordinatorConfiguration.CoreVersion = version
	coordinatorConfiguration.Runtime = runtime.Name()
	coordinatorConfiguration.RuntimeVersion = runtime.Version()

	processes := background.Processes{
		ingest.New(store, snapshot, runtime, m, theConfiguration.ingest),
		coordinator.New(registryClient, archiveClient, bundle.NewCacheBundler(store), store, snapshot, m, coordinatorConfiguration, reportFatal),
	}

	if "" != theConfiguration.Metrics.Listen {
		server, err := metrics.NewServer(theConfiguration.Metrics.Listen, m)
		if nil != err {
			log.Criticalf("metrics listen: %q error: %s", theConfiguration.Metrics.Listen, err)
			exitwithstatus.Message("metrics listen: %q error: %s", theConfiguration.Metrics.Listen, err)
		}
		processes = append(processes, server)
	}

	// if memory logging enabled
	if len(options["memory-stats"]) > 0 {
		processes = append(processes, &memoryStats{log: logger.New("memory")})
	}

	started := background.Start(processes, nil)

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	var fatalError error
	select {
	case sig := <-ch:
		log.Infof("received signal: %v", sig)
		if 0 == len(options["quiet"]) {
			fmt.Printf("\nreceived signal: %v\n", sig)
			fmt.Printf("\nshutting down…\n")
		}
	case fatalError = <-fatal:
		log.Criticalf("fatal error: %s", fatalError)
	}

	log.Info("shutting down…")
	started.Stop()

	if nil != fatalError {
		exitwithstatus.Message("%s: fatal error: %s", program, fatalError)
	}
}

// load the registry key and derive the name, log file and cache
// directory from the address
func getIdentity(options *Configuration) (*nodeIdentity, error) {
	identity := &nodeIdentity{}

	switch options.Registry.Backend {
	case registryContract:
		key, err := contract.ReadKeyFile(options.Registry.KeyFile)
		if nil != err {
			return nil, err
		}
		identity.contractKey = key
		identity.address = crypto.PubkeyToAddress(key.PublicKey).Hex()

	default:
		key, err := keypair.ReadFile(options.Registry.KeyFile)
		if nil != err {
			return nil, err
		}
		identity.restKey = key
		identity.address = key.Address()
	}

	identity.name = options.Name
	if "" == identity.name {
		identity.name = util.NodeName(identity.address, options.Pool)
	}
	if "" == options.Logging.File {
		options.Logging.File = identity.name + ".log"
	}
	identity.cacheDirectory = filepath.Join(options.Cache.Directory, identity.name)

	return identity, nil
}

func newRegistry(ctx context.Context, options *Configuration, identity *nodeIdentity) (registry.Client, error) {
	r := options.Registry
	switch r.Backend {
	case registryREST:
		return rest.New(r.Endpoint, options.Pool, identity.restKey, r.RequestsPerSecond)
	case registryContract:
		return contract.Dial(ctx, r.Endpoint, options.Pool, identity.contractKey, r.GasMultiplier)
	default:
		return nil, fmt.Errorf("%w: registry: %q", fault.ErrInvalidBackend, r.Backend)
	}
}

func newArchive(ctx context.Context, options *Configuration) (archive.Client, error) {
	a := options.Archive
	switch a.Backend {
	case archiveGateway:
		key, err := keypair.ReadFile(a.KeyFile)
		if nil != err {
			return nil, err
		}
		return gateway.New(a.Endpoint, key)
	case archiveS3:
		return s3.Dial(ctx, s3.Configuration{
			Region:   a.Region,
			Bucket:   a.Bucket,
			Prefix:   a.Prefix,
			Endpoint: a.Endpoint,
		})
	case archiveGCS:
		return gcs.Dial(ctx, gcs.Configuration{
			Bucket:          a.Bucket,
			Prefix:          a.Prefix,
			CredentialsFile: a.CredentialsFile,
			Endpoint:        a.Endpoint,
		})
	default:
		return nil, fmt.Errorf("%w: archive: %q", fault.ErrInvalidBackend, a.Backend)
	}
}

// log the node's identity and starting point
func banner(log *logger.L, options *Configuration, identity *nodeIdentity, store *storage.Store, runtime *evm.Runtime) {
	head, err := store.Head()
	if nil != err {
		head = 0
	}
	log.Infof("name: %s", identity.name)
	log.Infof("address: %s", identity.address)
	log.Infof("network: %s  pool: %s", options.Network, options.Pool)
	log.Infof("cache: %q  height: %d", identity.cacheDirectory, head)
	log.Infof("core version: %s  runtime: %s %s", version, runtime.Name(), runtime.Version())
}
