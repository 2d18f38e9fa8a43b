// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer_test

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/fixtures"
	"github.com/bitmark-inc/batchmintd/signer"
	"github.com/bitmark-inc/batchmintd/unit"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

// Agent - stand in for the signing agent
type Agent struct {
	mu       sync.Mutex
	next     unit.ID
	held     int
	describe int
	delay    time.Duration
}

func (a *Agent) Describe(args *signer.DescribeArguments, reply *signer.DescribeReply) error {
	a.mu.Lock()
	a.describe += 1
	a.mu.Unlock()
	reply.Operations = []string{"Mint", "Swap", "Balance"}
	return nil
}

func (a *Agent) Mint(args *signer.ProductionArguments, reply *signer.ReceiptReply) error {
	time.Sleep(a.delay)
	a.mu.Lock()
	defer a.mu.Unlock()
	if fixtures.Owner != args.Owner {
		return errors.New("unknown owner")
	}
	a.next += 1
	a.held += 1
	reply.Success = true
	reply.UnitIDs = []unit.ID{a.next}
	reply.Reference = "0xmint"
	return nil
}

func (a *Agent) Swap(args *signer.ConversionArguments, reply *signer.ReceiptReply) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if 10 != len(args.UnitIDs) {
		reply.Success = false
		reply.Message = "execution reverted: need 10"
		return nil
	}
	a.held -= 10
	reply.Success = true
	reply.Reference = "0xswap"
	return nil
}

func (a *Agent) Balance(args *signer.BalanceArguments, reply *signer.BalanceReply) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	reply.Balance = a.held
	return nil
}

func serve(t *testing.T, agent *Agent) string {
	server := rpc.NewServer()
	require.Nil(t, server.RegisterName("Signer", agent))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if nil != err {
				return
			}
			go server.ServeCodec(jsonrpc.NewServerCodec(conn))
		}
	}()
	return listener.Addr().String()
}

func configuration(connect string) signer.Configuration {
	return signer.Configuration{
		Connect:    connect,
		Service:    "Signer",
		Production: "Mint",
		Conversion: "Swap",
		Balance:    "Balance",
		Timeout:    time.Second,
		Rate:       1000,
		Burst:      10,
	}
}

func TestCalls(t *testing.T) {
	agent := &Agent{next: 100}
	c, err := signer.Dial(configuration(serve(t, agent)), fixtures.Owner)
	require.Nil(t, err)
	defer c.Close()

	ctx := context.Background()
	for i := 0; i < 10; i += 1 {
		r, err := c.SubmitProduction(ctx)
		require.Nil(t, err)
		assert.True(t, r.Success)
		assert.Equal(t, []unit.ID{unit.ID(101 + i)}, r.UnitIDs)
	}

	balance, err := c.ExternalBalance(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 10, balance)

	r, err := c.SubmitConversion(ctx, []unit.ID{1, 2, 3})
	assert.Nil(t, err)
	assert.False(t, r.Success)
	assert.Equal(t, "execution reverted: need 10", r.Message)

	r, err = c.SubmitConversion(ctx, []unit.ID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	assert.Nil(t, err)
	assert.True(t, r.Success)

	balance, err = c.ExternalBalance(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 0, balance)

	assert.Equal(t, 1, agent.describe, "operations are resolved once")
}

func TestOperationNotOffered(t *testing.T) {
	conf := configuration(serve(t, &Agent{}))
	conf.Production = "MintMulti"

	_, err := signer.Dial(conf, fixtures.Owner)
	assert.Equal(t, fault.ErrOperationNotOffered, err)
}

func TestMissingOperation(t *testing.T) {
	conf := configuration("127.0.0.1:1")
	conf.Balance = ""

	_, err := signer.Dial(conf, fixtures.Owner)
	assert.Equal(t, fault.ErrInvalidOperation, err)
}

func TestTimeout(t *testing.T) {
	conf := configuration(serve(t, &Agent{delay: 300 * time.Millisecond}))
	conf.Timeout = 50 * time.Millisecond

	c, err := signer.Dial(conf, fixtures.Owner)
	require.Nil(t, err)
	defer c.Close()

	_, err = c.SubmitProduction(context.Background())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
