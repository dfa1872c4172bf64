// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"context"
	"sync"
	"time"

	"github.com/dusk-network/zebra-mempool/pkg/config"
	"github.com/dusk-network/zebra-mempool/pkg/core/data/transaction"
	"github.com/dusk-network/zebra-mempool/pkg/log"
	"github.com/dusk-network/zebra-mempool/pkg/util/nativeutils/rpcbus"
	"golang.org/x/sync/errgroup"
)

var mempoolLog = log.WithPrefix("mempool")

type lookupRequest struct {
	id   UnminedTxId
	resp chan lookupResponse
}

type lookupResponse struct {
	held, rejected bool
}

// Mempool is the single owner of mempool Storage. Every read or write —
// whether it originates from the Service facade, a Crawler-discovered
// peer advertisement, or a Downloader verification result — crosses into
// Mempool.Run's select loop as a message rather than a direct call, so
// Storage itself never needs a lock.
type Mempool struct {
	storage  *Storage
	crawler  *Crawler
	downloader *Downloader
	tipGate  *TipGate
	metrics  *Metrics
	upgrade  transaction.NetworkUpgrade

	bus *rpcbus.RPCBus

	reqTransactionIds         chan rpcbus.Request
	reqTransactionsByID       chan rpcbus.Request
	reqRejectedTransactionIds chan rpcbus.Request
	reqQueue                  chan rpcbus.Request

	lookupCh   chan lookupRequest
	verified   chan Verified
	discovered chan Discovered

	idleLogInterval time.Duration

	quitOnce sync.Once
	quit     chan struct{}
}

// New wires a Mempool from cfg and its collaborators. bus must not already
// have handlers registered for any of this package's topics; New
// registers them itself.
func New(cfg config.Mempool, upgrade transaction.NetworkUpgrade, peers PeerSet, verifier TransactionVerifier, status SyncStatus, bus *rpcbus.RPCBus, metrics *Metrics) (*Mempool, error) {
	storage, err := NewStorage(cfg.Capacity, cfg.RejectedCapacity)
	if err != nil {
		return nil, err
	}

	m := &Mempool{
		storage: storage,
		tipGate: NewTipGate(status, cfg.GateQueueDuringSync),
		metrics: metrics,
		upgrade: upgrade,

		bus: bus,

		reqTransactionIds:         make(chan rpcbus.Request, 1),
		reqTransactionsByID:       make(chan rpcbus.Request, 1),
		reqRejectedTransactionIds: make(chan rpcbus.Request, 1),
		reqQueue:                  make(chan rpcbus.Request, 1),

		lookupCh:   make(chan lookupRequest),
		verified:   make(chan Verified, 64),
		discovered: make(chan Discovered, 64),

		idleLogInterval: cfg.IdleLogInterval,

		quit: make(chan struct{}),
	}

	m.crawler = NewCrawler(peers, m.tipGate, cfg.FanOut, cfg.RateLimitDelay, cfg.PeerResponseTimeout, m.onDiscovered)
	m.downloader = NewDownloader(m.lookup, verifier, cfg.DownloaderConcurrency, cfg.DownloadTimeout, m.onVerified)

	if err := bus.Register(TopicTransactionIds, m.reqTransactionIds); err != nil {
		return nil, err
	}
	if err := bus.Register(TopicTransactionsByID, m.reqTransactionsByID); err != nil {
		return nil, err
	}
	if err := bus.Register(TopicRejectedTransactionIds, m.reqRejectedTransactionIds); err != nil {
		return nil, err
	}
	if err := bus.Register(TopicQueue, m.reqQueue); err != nil {
		return nil, err
	}

	return m, nil
}

// Service returns the request/response facade bound to m's rpcbus.
func (m *Mempool) Service() *Service {
	return NewService(m.bus)
}

// Run drives the crawler and the storage-owning select loop until ctx is
// done or Quit is called. It deregisters every topic before returning.
func (m *Mempool) Run(ctx context.Context) error {
	defer m.deregister()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return m.crawler.Run(gctx) })
	g.Go(func() error {
		// drive returns nil on Quit; cancelling here stops the crawler too.
		defer cancel()
		return m.drive(gctx)
	})

	err := g.Wait()
	if err == context.Canceled && runCtx.Err() == context.Canceled {
		return nil
	}
	return err
}

// Quit signals Run to stop. It is safe to call more than once and from
// any goroutine.
func (m *Mempool) Quit() {
	m.quitOnce.Do(func() { close(m.quit) })
}

func (m *Mempool) drive(ctx context.Context) error {
	var idleTicker *time.Ticker
	if m.idleLogInterval > 0 {
		idleTicker = time.NewTicker(m.idleLogInterval)
		defer idleTicker.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-m.quit:
			return nil

		case req := <-m.reqTransactionIds:
			req.RespChan <- Response(m.storage.TxIds())

		case req := <-m.reqTransactionsByID:
			params := req.Params.(transactionsByIDParams)
			out := make([]*UnminedTransaction, 0, len(params.IDs))
			for _, id := range params.IDs {
				if tx, ok := m.storage.TransactionByID(id); ok {
					out = append(out, tx)
				}
			}
			req.RespChan <- Response(out)

		case req := <-m.reqRejectedTransactionIds:
			req.RespChan <- Response(m.storage.RejectedTransactionIds())

		case req := <-m.reqQueue:
			m.handleQueue(ctx, req)

		case req := <-m.lookupCh:
			held := m.storage.Contains(req.id)
			_, rejected := m.storage.ContainsRejected(req.id)
			req.resp <- lookupResponse{held: held, rejected: rejected}

		case v := <-m.verified:
			m.handleVerified(v)

		case d := <-m.discovered:
			for _, id := range d.IDs {
				m.downloader.Submit(ctx, d.Peer, id)
			}
			if m.metrics != nil {
				m.metrics.CrawlRounds.Inc()
			}

		case <-tickerC(idleTicker):
			mempoolLog.Debugf("idle: %d held, %d rejected", m.storage.Len(), len(m.storage.RejectedTransactionIds()))
		}

		if m.metrics != nil {
			m.metrics.HeldSize.Set(float64(m.storage.Len()))
			m.metrics.RejectedSize.Set(float64(len(m.storage.RejectedTransactionIds())))
		}
	}
}

func (m *Mempool) handleQueue(ctx context.Context, req rpcbus.Request) {
	params := req.Params.(queueParams)

	if !m.tipGate.Admit() {
		req.RespChan <- rpcbus.Response{Err: newError(ErrTipGateClosed, UnminedTxId{}, "")}
		return
	}

	results := make([]QueueResult, 0, len(params.Txs))

	for _, tx := range params.Txs {
		id, err := ComputeID(tx, m.upgrade)
		if err != nil {
			results = append(results, QueueResult{ID: id, Err: err})
			continue
		}

		if reason, rejected := m.storage.ContainsRejected(id); rejected {
			results = append(results, QueueResult{ID: id, Err: newError(errorKindForRejection(reason.Kind), id, "")})
			continue
		}

		if m.storage.Contains(id) {
			results = append(results, QueueResult{ID: id, Err: newError(ErrAlreadyHeld, id, "")})
			continue
		}

		m.downloader.SubmitLocal(ctx, id, tx)
		results = append(results, QueueResult{ID: id})
	}

	req.RespChan <- Response(results)
}

func (m *Mempool) handleVerified(v Verified) {
	if v.Err != nil {
		m.storage.Reject(v.ID, Rejection{Kind: RejectionInvalid})
		mempoolLog.WithError(v.Err).Debugf("recorded %x as invalid", v.ID)
		if m.metrics != nil {
			m.metrics.Rejected.WithLabelValues(RejectionInvalid.String()).Inc()
		}
		return
	}

	payload, err := v.Tx.SerializeForHashing()
	size := 0
	if err == nil {
		size = len(payload)
	}

	if err := m.storage.Insert(v.ID, v.Tx, size); err != nil {
		mempoolLog.WithError(err).Debugf("discarding verified transaction %x", v.ID)
		return
	}

	if m.metrics != nil {
		m.metrics.Accepted.Inc()
	}
}

func (m *Mempool) onVerified(v Verified) {
	select {
	case m.verified <- v:
	case <-m.quit:
	}
}

func (m *Mempool) onDiscovered(d Discovered) {
	select {
	case m.discovered <- d:
	case <-m.quit:
	}
}

func (m *Mempool) lookup(id UnminedTxId) (held, rejected bool) {
	resp := make(chan lookupResponse, 1)
	req := lookupRequest{id: id, resp: resp}

	select {
	case m.lookupCh <- req:
	case <-m.quit:
		return false, false
	}

	select {
	case r := <-resp:
		return r.held, r.rejected
	case <-m.quit:
		return false, false
	}
}

func (m *Mempool) deregister() {
	m.bus.Deregister(TopicTransactionIds)
	m.bus.Deregister(TopicTransactionsByID)
	m.bus.Deregister(TopicRejectedTransactionIds)
	m.bus.Deregister(TopicQueue)
}

// Response builds a successful rpcbus.Response wrapping resp, a small
// convenience since every read topic in this package only ever fails
// inside handleQueue.
func Response(resp interface{}) rpcbus.Response {
	return rpcbus.Response{Resp: resp}
}

func tickerC(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
