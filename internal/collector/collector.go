package collector

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"quotecollector/internal/quote"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State of the polling loop.
type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// SnapshotWriter persists a full cycle batch to destination.
type SnapshotWriter interface {
	Write(batch []quote.Record, destination string) error
}

// Mirror receives every written batch as well, e.g. a database table.
type Mirror interface {
	ReplaceSnapshot(ctx context.Context, cycleID string, batch []quote.Record) error
}

// Config holds the validated loop settings.
type Config struct {
	Symbols []string      // polled sequentially in this order
	Output  string        // snapshot destination
	Delay   time.Duration // 0 runs a single cycle
}

// Collector fetches the latest quote of every symbol, writes the snapshot and
// repeats after Delay.
type Collector struct {
	cfg     Config
	fetcher quote.Fetcher
	writer  SnapshotWriter
	mirror  Mirror
	clock   Clock
	newID   func() string
	logger  *zap.Logger
	state   atomic.Int32 // State
}

// Option configures a Collector.
type Option func(*Collector)

// WithMirror also hands every batch to m after the snapshot file is written.
func WithMirror(m Mirror) Option {
	return func(c *Collector) {
		c.mirror = m
	}
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Collector) {
		c.clock = clock
	}
}

// WithCycleIDs replaces the uuid based cycle id generator.
func WithCycleIDs(next func() string) Option {
	return func(c *Collector) {
		c.newID = next
	}
}

func New(cfg Config, fetcher quote.Fetcher, writer SnapshotWriter, logger *zap.Logger, options ...Option) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		cfg:     cfg,
		fetcher: fetcher,
		writer:  writer,
		clock:   realClock{},
		newID:   uuid.NewString,
		logger:  logger,
	}
	c.state.Store(int32(Stopped))
	for _, option := range options {
		option(c)
	}
	return c
}

// State reports whether Run is in progress. It is safe to call from any goroutine.
func (c *Collector) State() State {
	return State(c.state.Load())
}

// Run executes cycles until one of: Delay is 0 and a cycle completed, ctx is
// cancelled while waiting for the next cycle, or persisting a snapshot fails.
// Only the last case returns an error. A cycle in progress is never
// interrupted by ctx.
func (c *Collector) Run(ctx context.Context) error {
	c.state.Store(int32(Running))
	defer c.state.Store(int32(Stopped))

	c.logger.Info("collector started",
		zap.Strings("symbols", c.cfg.Symbols),
		zap.String("output", c.cfg.Output),
		zap.Duration("delay", c.cfg.Delay),
	)

	for {
		if _, err := c.RunCycle(ctx); err != nil {
			return err
		}

		if c.cfg.Delay == 0 {
			c.logger.Info("single cycle complete, stopping")
			return nil
		}

		select {
		case <-ctx.Done():
			c.logger.Info("collector stopped", zap.Error(ctx.Err()))
			return nil
		case <-c.clock.After(c.cfg.Delay):
		}
	}
}

// RunCycle fetches every symbol once, in order, and persists the successes.
// Fetch failures are logged and skipped. The returned batch is what was written.
func (c *Collector) RunCycle(ctx context.Context) ([]quote.Record, error) {
	start := c.clock.Now()
	cycleID := c.newID()
	log := c.logger.With(zap.String("cycle_id", cycleID))

	// fetches and persistence finish even when ctx is cancelled mid-cycle
	cycleCtx := context.WithoutCancel(ctx)

	batch := make([]quote.Record, 0, len(c.cfg.Symbols))
	for _, symbol := range c.cfg.Symbols {
		rec, err := c.fetcher.Fetch(cycleCtx, symbol)
		if err != nil {
			log.Warn("fetching data for stock failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		log.Info("received data for stock", zap.String("symbol", symbol), zap.Int64("timestamp", rec.Timestamp))
		batch = append(batch, rec)
	}

	if err := c.writer.Write(batch, c.cfg.Output); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	if c.mirror != nil {
		if err := c.mirror.ReplaceSnapshot(cycleCtx, cycleID, batch); err != nil {
			return nil, fmt.Errorf("mirror snapshot: %w", err)
		}
	}

	log.Info("poll cycle complete",
		zap.Int("symbols", len(c.cfg.Symbols)),
		zap.Int("fetched", len(batch)),
		zap.Int("errors", len(c.cfg.Symbols)-len(batch)),
		zap.Duration("duration", c.clock.Now().Sub(start)),
	)
	return batch, nil
}
