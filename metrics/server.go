// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bitmark-inc/logger"
)

const shutdownTimeout = 5 * time.Second

// Server - background process serving /metrics
type Server struct {
	log      *logger.L
	listener net.Listener
	server   *http.Server
}

// NewServer - bind the listen address
func NewServer(listen string, m *Metrics) (*Server, error) {
	listener, err := net.Listen("tcp", listen)
	if nil != err {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		log:      logger.New("metrics"),
		listener: listener,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Address - the bound address
func (s *Server) Address() string {
	return s.listener.Addr().String()
}

// Run - serve until shutdown
func (s *Server) Run(args interface{}, shutdown <-chan struct{}) {
	s.log.Infof("listening on: %s", s.Address())

	done := make(chan struct{})
	go func() {
		err := s.server.Serve(s.listener)
		if nil != err && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("serve error: %s", err)
		}
		close(done)
	}()

	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); nil != err {
		s.log.Warnf("shutdown error: %s", err)
	}
	<-done
	s.log.Info("stopped")
}
