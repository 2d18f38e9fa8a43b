// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/batchmintd/service"
	"github.com/bitmark-inc/batchmintd/signer"
	"github.com/bitmark-inc/batchmintd/storage"
	"github.com/bitmark-inc/batchmintd/submitter"
)

// session - storage, optional signer and the service built on them
type session struct {
	backend storage.Backend
	client  *signer.Client
	service *service.Service
}

// open the store; online sessions also connect to the signer, offline
// ones must not call anything that submits
func openSession(m *metadata, online bool) (*session, error) {

	options := m.config

	if m.verbose {
		fmt.Fprintf(m.e, "database: %s  path: %q\n", options.Database.Backend, options.DatabasePath())
	}

	backend, err := storage.Open(options.Database.Backend, options.DatabasePath())
	if nil != err {
		return nil, err
	}

	s := &session{
		backend: backend,
	}

	var sub submitter.Submitter
	if online {
		if m.verbose {
			fmt.Fprintf(m.e, "signer: %s\n", options.Signer.Connect)
		}
		s.client, err = signer.Dial(options.SignerConfiguration(), options.Owner)
		if nil != err {
			backend.Close()
			return nil, err
		}
		sub = s.client
	}

	s.service, err = service.New(backend, sub, options.ServiceConfiguration(), nil)
	if nil != err {
		s.Close()
		return nil, err
	}

	status, err := s.service.Load()
	if nil != err {
		s.Close()
		return nil, err
	}
	if status.Overdue && m.verbose {
		fmt.Fprintf(m.e, "scheduled run at: %s was missed\n", status.NextRunAt)
	}

	return s, nil
}

// Close - release everything in reverse order
func (s *session) Close() {
	if nil != s.service {
		s.service.Stop()
	}
	if nil != s.client {
		s.client.Close()
	}
	s.backend.Close()
}

// context that ends on CTRL-C so batches stop between units
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
