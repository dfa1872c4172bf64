// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package rpcbus is a minimal topic-addressed request/response bus. A
// single component (the "driver") registers a channel per topic it is
// willing to serve and reads requests off it at its own pace; any number of
// callers can then Call that topic and block on the per-call response
// channel. This is the same shape the mempool's service facade uses to
// cross from an external-facing call into the single goroutine that owns
// mempool storage.
package rpcbus

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Topic names a registered request channel.
type Topic string

// Request is a single call posted to a topic.
type Request struct {
	Params   interface{}
	RespChan chan Response
}

// Response is the result of a Request.
type Response struct {
	Resp interface{}
	Err  error
}

// ErrTopicNotRegistered is returned by Call when no component has
// registered a handler for the requested topic.
var ErrTopicNotRegistered = errors.New("rpcbus: topic not registered")

// RPCBus routes Requests to the channel registered for their Topic.
type RPCBus struct {
	mu     sync.RWMutex
	topics map[Topic]chan<- Request
}

// New returns an empty RPCBus.
func New() *RPCBus {
	return &RPCBus{topics: make(map[Topic]chan<- Request)}
}

// Register associates topic with the channel a driver goroutine reads
// requests from. Registering the same topic twice is a programmer error.
func (b *RPCBus) Register(topic Topic, ch chan<- Request) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.topics[topic]; exists {
		return errors.Errorf("rpcbus: topic %q already registered", topic)
	}

	b.topics[topic] = ch
	return nil
}

// Deregister removes topic's registration, if any.
func (b *RPCBus) Deregister(topic Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.topics, topic)
}

// Call posts params to topic and blocks until the driver responds or ctx is
// done. The response channel is buffered so the driver never blocks on a
// caller that gave up waiting.
func (b *RPCBus) Call(ctx context.Context, topic Topic, params interface{}) (interface{}, error) {
	b.mu.RLock()
	ch, ok := b.topics[topic]
	b.mu.RUnlock()

	if !ok {
		return nil, ErrTopicNotRegistered
	}

	req := Request{Params: params, RespChan: make(chan Response, 1)}

	select {
	case ch <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case resp := <-req.RespChan:
		return resp.Resp, resp.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
