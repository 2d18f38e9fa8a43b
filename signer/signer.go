// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signer - JSON RPC client for the external signing agent
//
// the agent holds the keys and talks to the ledger; this client only
// names the operation to run and waits for the final receipt
package signer

import (
	"context"
	"crypto/tls"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/logger"
)

// defaults
const (
	DefaultService = "Signer"
	DefaultTimeout = 2 * time.Minute
	DefaultRate    = 1.0
	DefaultBurst   = 1

	describeMethod = "Describe"
	dialTimeout    = 10 * time.Second
)

// Configuration - where the agent is and which operations to call
type Configuration struct {
	Connect    string
	UseTLS     bool
	Insecure   bool
	Service    string
	Production string
	Conversion string
	Balance    string
	Timeout    time.Duration
	Rate       float64
	Burst      int
}

// Client - implements submitter.Submitter over JSON RPC
type Client struct {
	log        *logger.L
	conn       net.Conn
	client     *rpc.Client
	owner      string
	production string
	conversion string
	balance    string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// Dial - connect and resolve the configured operations once
//
// an operation the agent does not offer fails here, not on first use
func Dial(conf Configuration, owner string) (*Client, error) {
	if "" == conf.Production || "" == conf.Conversion || "" == conf.Balance {
		return nil, fault.ErrInvalidOperation
	}
	if "" == conf.Service {
		conf.Service = DefaultService
	}
	if conf.Timeout <= 0 {
		conf.Timeout = DefaultTimeout
	}
	if conf.Rate <= 0 {
		conf.Rate = DefaultRate
	}
	if conf.Burst <= 0 {
		conf.Burst = DefaultBurst
	}

	log := logger.New("signer")

	var (
		conn net.Conn
		err  error
	)
	dialer := &net.Dialer{Timeout: dialTimeout}
	if conf.UseTLS {
		tlsConfig := &tls.Config{
			InsecureSkipVerify: conf.Insecure,
		}
		conn, err = tls.DialWithDialer(dialer, "tcp", conf.Connect, tlsConfig)
	} else {
		conn, err = dialer.Dial("tcp", conf.Connect)
	}
	if nil != err {
		return nil, err
	}

	c := &Client{
		log:        log,
		conn:       conn,
		client:     jsonrpc.NewClient(conn),
		owner:      owner,
		production: conf.Service + "." + conf.Production,
		conversion: conf.Service + "." + conf.Conversion,
		balance:    conf.Service + "." + conf.Balance,
		timeout:    conf.Timeout,
		limiter:    rate.NewLimiter(rate.Limit(conf.Rate), conf.Burst),
	}

	if err := c.describe(conf); nil != err {
		c.Close()
		return nil, err
	}

	log.Infof("connected: %s  production: %s  conversion: %s  balance: %s", conf.Connect, c.production, c.conversion, c.balance)
	return c, nil
}

func (c *Client) describe(conf Configuration) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var reply DescribeReply
	if err := c.call(ctx, conf.Service+"."+describeMethod, &DescribeArguments{Owner: c.owner}, &reply); nil != err {
		return err
	}

	offered := make(map[string]struct{}, len(reply.Operations))
	for _, op := range reply.Operations {
		offered[op] = struct{}{}
	}
	for _, op := range []string{conf.Production, conf.Conversion, conf.Balance} {
		if _, ok := offered[op]; !ok {
			c.log.Errorf("operation: %q not offered, agent has: %v", op, reply.Operations)
			return fault.ErrOperationNotOffered
		}
	}
	return nil
}

// Close - shutdown the agent connection
func (c *Client) Close() {
	c.client.Close()
	c.conn.Close()
}

// call - one rate limited request bounded by the client timeout and ctx
func (c *Client) call(ctx context.Context, method string, args interface{}, reply interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); nil != err {
		c.log.Warnf("%s: %s", method, err)
		return fault.ErrRateLimiting
	}

	call := c.client.Go(method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
		return call.Error
	case <-ctx.Done():
		c.log.Warnf("%s: abandoned: %s", method, ctx.Err())
		return ctx.Err()
	}
}
