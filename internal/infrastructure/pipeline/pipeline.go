// Package pipeline hands transactions from a producer to the single
// goroutine that applies them to the ledger.
package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/iho/txengine/internal/adapter/csvio"
	"github.com/iho/txengine/internal/domain"
	"github.com/iho/txengine/internal/infrastructure/logger"
	"github.com/iho/txengine/internal/infrastructure/metrics"
)

// DefaultCapacity is the queue size used when Config.Capacity is zero.
const DefaultCapacity = 100

var (
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("pipeline closed")
	// ErrStopped is returned by ListAccounts once Run has returned.
	ErrStopped = errors.New("pipeline stopped")
)

// Engine applies transactions. Only the pipeline's consumer calls it.
type Engine interface {
	Apply(tx domain.Transaction) error
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// Source yields transactions until io.EOF. A *csvio.DecodeError marks a
// record that can be skipped; any other error ends the feed.
type Source interface {
	Next() (domain.Transaction, error)
}

// Config for Pipeline.
type Config struct {
	Engine   Engine
	Logger   *zerolog.Logger
	Metrics  *metrics.Metrics
	Capacity int
}

// FeedStats counts what Feed did with the records it read.
type FeedStats struct {
	Read      int
	Submitted int
	Skipped   int
}

type snapshotRequest struct {
	ctx   context.Context
	reply chan snapshotReply
}

type snapshotReply struct {
	accounts []domain.Account
	err      error
}

// Pipeline is a bounded FIFO between any number of producers and one
// consumer. Transactions are applied in the order they were accepted.
type Pipeline struct {
	engine  Engine
	logger  zerolog.Logger
	metrics *metrics.Metrics

	queue     chan domain.Transaction
	snapshots chan snapshotRequest

	// mu is held for reading while sending on queue and for writing while
	// closing it.
	mu        sync.RWMutex
	closing   chan struct{}
	closeOnce sync.Once

	running atomic.Bool
	done    chan struct{}
}

// New creates a new Pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}

	base := zerolog.Nop()
	if cfg.Logger != nil {
		base = *cfg.Logger
	}

	return &Pipeline{
		engine:    cfg.Engine,
		logger:    logger.Component(base, "pipeline"),
		metrics:   cfg.Metrics,
		queue:     make(chan domain.Transaction, cfg.Capacity),
		snapshots: make(chan snapshotRequest),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Submit enqueues tx, blocking while the queue is full. It returns ErrClosed
// once Close has been called and ctx.Err() if ctx ends first.
func (p *Pipeline) Submit(ctx context.Context, tx domain.Transaction) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.closing:
		return ErrClosed
	default:
	}

	select {
	case p.queue <- tx:
		p.observeDepth()
		return nil
	case <-p.closing:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Feed reads src to the end and submits every decodable record in order.
// Undecodable records are logged and skipped.
func (p *Pipeline) Feed(ctx context.Context, src Source) (FeedStats, error) {
	var stats FeedStats

	for {
		tx, err := src.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}

		var decodeErr *csvio.DecodeError
		if err != nil && !errors.As(err, &decodeErr) {
			return stats, err
		}

		stats.Read++
		if p.metrics != nil {
			p.metrics.RecordsRead.Inc()
		}

		if decodeErr != nil {
			stats.Skipped++
			if p.metrics != nil {
				p.metrics.RecordsSkipped.Inc()
			}
			p.logger.Warn().
				Int("line", decodeErr.Line).
				Err(decodeErr.Err).
				Msg("skipping invalid record")
			continue
		}

		if err := p.Submit(ctx, tx); err != nil {
			return stats, err
		}
		stats.Submitted++
	}
}

// Close stops accepting new transactions. Everything already queued is
// still applied by Run. Close may be called more than once.
func (p *Pipeline) Close() {
	p.closeOnce.Do(func() {
		close(p.closing)

		p.mu.Lock()
		close(p.queue)
		p.mu.Unlock()
	})
}

// Run applies queued transactions until the queue is closed and drained,
// or ctx ends. Engine errors are logged and do not stop the loop. Run must
// be called at most once.
func (p *Pipeline) Run(ctx context.Context) error {
	p.running.Store(true)
	defer func() {
		p.running.Store(false)
		close(p.done)
	}()

	p.logger.Debug().Int("capacity", cap(p.queue)).Msg("pipeline started")

	for {
		select {
		case tx, ok := <-p.queue:
			if !ok {
				p.logger.Debug().Msg("pipeline drained")
				return nil
			}
			p.observeDepth()
			p.apply(tx)
		case req := <-p.snapshots:
			accounts, err := p.engine.ListAccounts(req.ctx)
			req.reply <- snapshotReply{accounts: accounts, err: err}
		case <-ctx.Done():
			p.logger.Warn().Int("pending", len(p.queue)).Msg("pipeline cancelled")
			return ctx.Err()
		}
	}
}

func (p *Pipeline) apply(tx domain.Transaction) {
	if err := p.engine.Apply(tx); err != nil {
		p.logger.Warn().
			Str("type", string(tx.Type)).
			Uint16("client", uint16(tx.ClientID)).
			Uint32("tx", uint32(tx.TxID)).
			Str("code", domain.ErrorCode(err)).
			Err(err).
			Msg("transaction rejected")
		return
	}

	p.logger.Debug().
		Str("type", string(tx.Type)).
		Uint16("client", uint16(tx.ClientID)).
		Uint32("tx", uint32(tx.TxID)).
		Msg("transaction applied")
}

// ListAccounts returns a snapshot taken by the consumer between two
// transactions. It waits for Run to start and returns ErrStopped after Run
// has returned; from then on the engine may be read directly.
func (p *Pipeline) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	req := snapshotRequest{ctx: ctx, reply: make(chan snapshotReply, 1)}

	select {
	case p.snapshots <- req:
	case <-p.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case reply := <-req.reply:
		return reply.accounts, reply.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Running reports whether Run is consuming.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Done is closed when Run returns.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

func (p *Pipeline) observeDepth() {
	if p.metrics != nil {
		p.metrics.QueueDepth.Set(float64(len(p.queue)))
	}
}
