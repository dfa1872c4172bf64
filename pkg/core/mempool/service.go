// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"context"

	"github.com/dusk-network/zebra-mempool/pkg/core/data/transaction"
	"github.com/dusk-network/zebra-mempool/pkg/util/nativeutils/rpcbus"
)

// The rpcbus topics the Service facade calls into. The Mempool driver
// goroutine registers handlers for all four before Run starts serving.
const (
	TopicTransactionIds         rpcbus.Topic = "mempool.transaction_ids"
	TopicTransactionsByID       rpcbus.Topic = "mempool.transactions_by_id"
	TopicRejectedTransactionIds rpcbus.Topic = "mempool.rejected_transaction_ids"
	TopicQueue                  rpcbus.Topic = "mempool.queue"
)

// transactionsByIDParams and queueParams are the Params payloads carried
// by a rpcbus.Request for their respective topics. TransactionIds and
// RejectedTransactionIds take no parameters, so their requests carry nil.
type transactionsByIDParams struct {
	IDs []UnminedTxId
}

type queueParams struct {
	Txs []*transaction.Transaction
}

// QueueResult is the per-item outcome of a Queue call. Err is nil only
// when the transaction was handed off for download/verification; a
// non-nil Err means the id was resolved immediately — typically because
// it is already on the rejection ledger (in which case Err's Kind
// mirrors the recorded reason, e.g. Excess) or already held.
type QueueResult struct {
	ID  UnminedTxId
	Err error
}

// Service is the external-facing read/write surface of a running Mempool,
// the same shape a gRPC or JSON-RPC handler would sit behind. Every
// method crosses into the Mempool driver goroutine via rpcbus.Call and
// blocks until it answers or ctx is done.
type Service struct {
	bus *rpcbus.RPCBus
}

// NewService wraps bus. The Mempool that owns bus is expected to have
// already registered handlers for every topic this package declares.
func NewService(bus *rpcbus.RPCBus) *Service {
	return &Service{bus: bus}
}

// TransactionIds returns the ids of every transaction currently held.
func (s *Service) TransactionIds(ctx context.Context) ([]UnminedTxId, error) {
	resp, err := s.bus.Call(ctx, TopicTransactionIds, nil)
	if err != nil {
		return nil, err
	}
	return resp.([]UnminedTxId), nil
}

// TransactionsById returns the held transactions matching ids, silently
// omitting any id that is not held.
func (s *Service) TransactionsById(ctx context.Context, ids []UnminedTxId) ([]*UnminedTransaction, error) {
	resp, err := s.bus.Call(ctx, TopicTransactionsByID, transactionsByIDParams{IDs: ids})
	if err != nil {
		return nil, err
	}
	return resp.([]*UnminedTransaction), nil
}

// RejectedTransactionIds returns every id currently on the rejection
// ledger.
func (s *Service) RejectedTransactionIds(ctx context.Context) ([]UnminedTxId, error) {
	resp, err := s.bus.Call(ctx, TopicRejectedTransactionIds, nil)
	if err != nil {
		return nil, err
	}
	return resp.([]UnminedTxId), nil
}

// Queue offers each of txs for admission the same way a peer-discovered
// transaction is: it will be verified, and on success admitted to
// Storage. Queue returns one QueueResult per transaction, in order. An id
// already sitting on the rejection ledger (or already held) is resolved
// immediately, with Err set accordingly, instead of being silently
// handed off for download/verification.
func (s *Service) Queue(ctx context.Context, txs []*transaction.Transaction) ([]QueueResult, error) {
	resp, err := s.bus.Call(ctx, TopicQueue, queueParams{Txs: txs})
	if err != nil {
		return nil, err
	}
	return resp.([]QueueResult), nil
}
