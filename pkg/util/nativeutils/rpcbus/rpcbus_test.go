// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package rpcbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCallRoundTrip(t *testing.T) {
	bus := New()
	ch := make(chan Request, 1)
	require.NoError(t, bus.Register("echo", ch))

	go func() {
		req := <-ch
		req.RespChan <- Response{Resp: req.Params}
	}()

	resp, err := bus.Call(context.Background(), "echo", "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", resp)
}

func TestCallUnregisteredTopic(t *testing.T) {
	bus := New()
	_, err := bus.Call(context.Background(), "missing", nil)
	require.ErrorIs(t, err, ErrTopicNotRegistered)
}

func TestCallRespectsContextDeadline(t *testing.T) {
	bus := New()
	ch := make(chan Request) // unbuffered, nobody reads it
	require.NoError(t, bus.Register("slow", ch))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := bus.Call(ctx, "slow", nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegisterTwiceFails(t *testing.T) {
	bus := New()
	ch := make(chan Request, 1)
	require.NoError(t, bus.Register("dup", ch))
	require.Error(t, bus.Register("dup", ch))
}
