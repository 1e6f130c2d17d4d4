// Package feed wires the venue user channel into the canonical report
// pipeline. Every payload is decoded, normalized, journaled, counted,
// logged, and fanned out to subscribers. A malformed message costs only
// itself; the stream keeps flowing.
package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/betbot/govenue/internal/journal"
	"github.com/betbot/govenue/internal/metrics"
	"github.com/betbot/govenue/pkg/report"
	"github.com/betbot/govenue/polymarket"
)

var log = logrus.WithField("component", "feed")

const defaultBufferSize = 256

// Config wires a Service to its venue identity and sinks.
type Config struct {
	AccountID string
	// MakerAddress picks our order out of maker-perspective trades.
	MakerAddress common.Address
	// Instruments maps venue asset ids to the instruments they trade.
	// Events for unlisted assets are dropped with a warning.
	Instruments map[string]report.Instrument

	Credentials polymarket.Credentials
	Feed        polymarket.FeedConfig

	// Journal may be nil to run without persistence.
	Journal *journal.Journal
	// BufferSize is the per-subscriber channel depth. Zero means 256.
	BufferSize int
}

// Service owns the authenticated user-channel feed and turns its payloads
// into canonical reports.
type Service struct {
	cfg  Config
	feed *polymarket.Feed

	mu        sync.RWMutex
	orderSubs []chan report.OrderStatusReport
	fillSubs  []chan report.FillReport
	closed    bool

	// now is the report init clock.
	now func() time.Time
}

// New builds a Service. Events do not flow until Start.
func New(cfg Config) (*Service, error) {
	if cfg.AccountID == "" {
		return nil, fmt.Errorf("feed service: empty account id")
	}
	if len(cfg.Instruments) == 0 {
		return nil, fmt.Errorf("feed service: no instruments configured")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	s := &Service{cfg: cfg, now: func() time.Time { return time.Now().UTC() }}

	feedCfg := cfg.Feed
	inner := feedCfg.OnReconnect
	feedCfg.OnReconnect = func() {
		metrics.WSReconnects.Add(1)
		if inner != nil {
			inner()
		}
	}
	s.feed = polymarket.NewFeed(cfg.Credentials, feedCfg, s.handleMessage)
	return s, nil
}

// Start dials the venue user channel and begins streaming.
func (s *Service) Start(ctx context.Context) error {
	log.WithFields(logrus.Fields{
		"account_id":  s.cfg.AccountID,
		"instruments": len(s.cfg.Instruments),
		"markets":     len(s.cfg.Feed.Markets),
	}).Info("starting user feed")
	return s.feed.Start(ctx)
}

// Stop tears down the feed and closes all subscriber channels.
func (s *Service) Stop() {
	s.feed.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.orderSubs {
		close(ch)
	}
	for _, ch := range s.fillSubs {
		close(ch)
	}
}

// SubscribeOrders registers a consumer of canonical order status reports.
// A slow consumer loses reports rather than stalling the feed; the journal
// keeps the complete record.
func (s *Service) SubscribeOrders() <-chan report.OrderStatusReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan report.OrderStatusReport, s.cfg.BufferSize)
	if s.closed {
		close(ch)
		return ch
	}
	s.orderSubs = append(s.orderSubs, ch)
	return ch
}

// SubscribeFills registers a consumer of canonical fill reports.
func (s *Service) SubscribeFills() <-chan report.FillReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan report.FillReport, s.cfg.BufferSize)
	if s.closed {
		close(ch)
		return ch
	}
	s.fillSubs = append(s.fillSubs, ch)
	return ch
}

// handleMessage processes one raw user-channel payload.
func (s *Service) handleMessage(ctx context.Context, raw []byte) {
	metrics.EventsReceived.Add(1)

	ev, err := polymarket.DecodeUserEvent(raw)
	if err != nil {
		metrics.ParseErrors.Add(1)
		log.WithError(err).Warnf("dropping undecodable event: %s", truncate(raw, 256))
		return
	}
	switch {
	case ev.Order != nil:
		s.handleOrder(ctx, ev.Order)
	case ev.Trade != nil:
		s.handleTrade(ctx, ev.Trade)
	}
}

func (s *Service) handleOrder(ctx context.Context, ev *polymarket.UserOrderEvent) {
	inst, ok := s.cfg.Instruments[ev.AssetID]
	if !ok {
		metrics.ParseErrors.Add(1)
		log.Warnf("dropping order event %s for unconfigured asset %s", ev.ID, ev.AssetID)
		return
	}
	pc := polymarket.ParseContext{
		AccountID:  s.cfg.AccountID,
		Instrument: inst,
		TsInit:     s.now(),
	}
	rep, err := ev.OrderStatusReport(pc)
	if err != nil {
		metrics.ParseErrors.Add(1)
		log.WithError(err).Warnf("dropping order event %s", ev.ID)
		return
	}

	if s.cfg.Journal != nil {
		if err := s.cfg.Journal.InsertOrderStatus(ctx, rep); err != nil {
			metrics.JournalErrors.Add(1)
			log.WithError(err).Errorf("journal order status report %s", rep.ReportID)
		}
	}
	metrics.OrderStatusReports.Add(1)
	log.WithFields(logrus.Fields{
		"venue_order_id": rep.VenueOrderID,
		"instrument":     rep.InstrumentID,
		"status":         rep.Status,
		"filled_qty":     rep.FilledQty,
	}).Info("order status report")
	s.publishOrder(rep)
}

func (s *Service) handleTrade(ctx context.Context, ev *polymarket.UserTradeEvent) {
	// A trade fills exactly once, on the initial MATCHED. Later statuses
	// re-deliver the same match as settlement progresses on chain.
	switch ev.Status {
	case polymarket.TradeStatusMatched:
	case polymarket.TradeStatusMined, polymarket.TradeStatusConfirmed:
		log.WithFields(logrus.Fields{
			"trade_id": ev.ID,
			"status":   ev.Status,
		}).Debug("trade settlement update")
		return
	case polymarket.TradeStatusRetrying, polymarket.TradeStatusFailed:
		log.WithFields(logrus.Fields{
			"trade_id": ev.ID,
			"status":   ev.Status,
		}).Warn("venue reports trade settlement trouble")
		return
	default:
		metrics.ParseErrors.Add(1)
		log.Warnf("dropping trade %s with unknown status %q", ev.ID, ev.Status)
		return
	}

	inst, ok := s.cfg.Instruments[ev.AssetID]
	if !ok {
		metrics.ParseErrors.Add(1)
		log.Warnf("dropping trade %s for unconfigured asset %s", ev.ID, ev.AssetID)
		return
	}
	pc := polymarket.ParseContext{
		AccountID:  s.cfg.AccountID,
		Instrument: inst,
		TsInit:     s.now(),
	}
	rep, err := ev.FillReport(pc, s.cfg.MakerAddress)
	if err != nil {
		metrics.ParseErrors.Add(1)
		log.WithError(err).Warnf("dropping trade event %s", ev.ID)
		return
	}

	if s.cfg.Journal != nil {
		if err := s.cfg.Journal.InsertFill(ctx, rep); err != nil {
			metrics.JournalErrors.Add(1)
			log.WithError(err).Errorf("journal fill report %s", rep.ReportID)
		}
	}
	metrics.FillReports.Add(1)
	log.WithFields(logrus.Fields{
		"venue_order_id": rep.VenueOrderID,
		"trade_id":       rep.TradeID,
		"instrument":     rep.InstrumentID,
		"last_qty":       rep.LastQty,
		"last_px":        rep.LastPx,
		"liquidity":      rep.LiquiditySide,
	}).Info("fill report")
	s.publishFill(rep)
}

func (s *Service) publishOrder(rep report.OrderStatusReport) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.orderSubs {
		select {
		case ch <- rep:
		default:
			log.Warnf("order subscriber full, dropping report %s", rep.ReportID)
		}
	}
}

func (s *Service) publishFill(rep report.FillReport) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.fillSubs {
		select {
		case ch <- rep:
		default:
			log.Warnf("fill subscriber full, dropping report %s", rep.ReportID)
		}
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
