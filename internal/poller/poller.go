package poller

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pathakanu/reminderbot/internal/metrics"
	"github.com/pathakanu/reminderbot/internal/relay"
	"github.com/robfig/cron/v3"
)

// Source yields batches of pending inbound messages.
type Source interface {
	GetUpdates(ctx context.Context) ([]relay.Update, error)
}

// Handler runs one decoded command for its sender, and answers messages
// that could not be decoded.
type Handler interface {
	HandleCommand(ctx context.Context, text, userID string) error
	RejectUnreadable(ctx context.Context, userID string) error
}

// Poller fetches inbound messages on a fixed interval and hands each one to
// the dispatcher. A tick that outlasts the interval causes the next one to be
// skipped, so ticks never overlap.
type Poller struct {
	source   Source
	handler  Handler
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *log.Logger

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Poller. Intervals below one second are rounded up by cron.
func New(source Source, handler Handler, interval time.Duration, m *metrics.Metrics, logger *log.Logger) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		source:   source,
		handler:  handler,
		interval: interval,
		metrics:  m,
		logger:   logger,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(logger)),
			cron.SkipIfStillRunning(cron.PrintfLogger(logger)),
		)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start schedules the polling job and starts the cron loop.
func (p *Poller) Start() {
	p.cron.Schedule(cron.Every(p.interval), cron.FuncJob(func() {
		p.Tick(p.ctx)
	}))
	p.cron.Start()
	p.logger.Printf("poller: started, interval %s", p.interval)
}

// Stop cancels the in-flight tick and waits for it to return.
func (p *Poller) Stop() {
	p.cancel()
	<-p.cron.Stop().Done()
	p.logger.Printf("poller: stopped")
}

// Tick runs one fetch-and-dispatch cycle. A fetch failure aborts only this
// tick; a failing message never stops the rest of the batch.
func (p *Poller) Tick(ctx context.Context) {
	start := time.Now()

	updates, err := p.source.GetUpdates(ctx)
	if err != nil {
		p.logger.Printf("poller: get updates: %v", err)
		p.metrics.ObserveTick("fetch_error", time.Since(start))
		return
	}

	for _, update := range updates {
		if ctx.Err() != nil {
			p.logger.Printf("poller: tick cancelled with messages pending")
			break
		}
		result := "ok"
		if err := p.process(ctx, update); err != nil {
			p.logger.Printf("poller: %v", err)
			result = "error"
		}
		p.metrics.ObserveMessage(result)
	}
	p.metrics.ObserveTick("ok", time.Since(start))
}

func (p *Poller) process(ctx context.Context, update relay.Update) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("message from %s: panic: %v", update.ChatID, r)
		}
	}()

	text, err := update.DecodedText()
	if err != nil {
		p.logger.Printf("poller: %v", err)
		if err := p.handler.RejectUnreadable(ctx, update.ChatID); err != nil {
			return fmt.Errorf("message from %s: %w", update.ChatID, err)
		}
		return nil
	}
	p.logger.Printf("poller: received %q from %s", text, update.ChatID)
	if err := p.handler.HandleCommand(ctx, text, update.ChatID); err != nil {
		return fmt.Errorf("message from %s: %w", update.ChatID, err)
	}
	return nil
}
