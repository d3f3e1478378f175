// Package session applies feed events to the dashboard state, one event at a time.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yaron8/netwatch/dashboard/feed"
	"github.com/yaron8/netwatch/dashboard/history"
	"github.com/yaron8/netwatch/dashboard/view"
	"github.com/yaron8/netwatch/logi"
	"github.com/yaron8/netwatch/telemetrics"
)

// Frame is everything a renderer needs to draw the dashboard once.
type Frame struct {
	Connected   bool                `json:"connected"`
	HasData     bool                `json:"has_data"`
	LastUpdated string              `json:"last_updated"`
	KPIs        view.KPIs           `json:"kpis"`
	Rows        []view.ValidatorRow `json:"validators"`
	Series      history.Series      `json:"series"`
}

type Renderer interface {
	Render(Frame)
}

// Store persists what the session has seen. Failures are logged, never fatal.
type Store interface {
	SaveLatest(ctx context.Context, snap telemetrics.Snapshot) error
	AppendSample(ctx context.Context, sample telemetrics.Sample, limit int) error
}

type Session struct {
	window   *history.Window
	renderer Renderer
	store    Store
	now      func() time.Time
	logger   *slog.Logger

	mu    sync.RWMutex
	frame Frame
}

type Options struct {
	HistoryPoints int
	Renderer      Renderer
	Store         Store // optional
	Now           func() time.Time
}

func New(opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		window:   history.New(opts.HistoryPoints),
		renderer: opts.Renderer,
		store:    opts.Store,
		now:      opts.Now,
		logger:   logi.GetLogger(),
	}
}

// Run handles events until the channel is closed or ctx is done.
func (s *Session) Run(ctx context.Context, events <-chan feed.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.Handle(ctx, ev)
		}
	}
}

func (s *Session) Handle(ctx context.Context, ev feed.Event) {
	switch ev.Kind {
	case feed.Connect:
		s.Connected()
	case feed.Disconnect:
		if ev.Err != nil {
			s.logger.Warn("feed disconnected", "error", ev.Err)
		}
		s.Disconnected()
	case feed.Update:
		s.HandleUpdate(ctx, ev.Snapshot)
	}
}

func (s *Session) Connected() {
	s.logger.Info("connected to generator")
	s.setConnected(true)
}

// Disconnected only flips the status; the window and last frame stay as they were.
func (s *Session) Disconnected() {
	s.logger.Info("disconnected from generator")
	s.setConnected(false)
}

func (s *Session) setConnected(connected bool) {
	s.mu.Lock()
	s.frame.Connected = connected
	frame := s.frame
	s.mu.Unlock()
	s.render(frame)
}

// HandleUpdate refreshes the widgets, records one history sample and renders.
func (s *Session) HandleUpdate(ctx context.Context, snap telemetrics.Snapshot) {
	label := view.Timestamp(s.now())
	tps := snap.NetworkHealth.RealtimeTPS
	gini := snap.DecentralizationSecurity.GiniCoefficient

	kpis := view.BuildKPIs(snap)
	s.window.Record(label, tps, gini)
	rows := view.BuildRows(snap.ValidatorOperations)

	s.mu.Lock()
	s.frame.HasData = true
	s.frame.LastUpdated = label
	s.frame.KPIs = kpis
	s.frame.Rows = rows
	s.frame.Series = s.window.Series()
	frame := s.frame
	s.mu.Unlock()

	s.render(frame)
	s.persist(ctx, snap, telemetrics.Sample{Label: label, TPS: tps, Gini: gini})
}

// Frame returns the most recently rendered frame.
func (s *Session) Frame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

func (s *Session) render(frame Frame) {
	if s.renderer != nil {
		s.renderer.Render(frame)
	}
}

func (s *Session) persist(ctx context.Context, snap telemetrics.Snapshot, sample telemetrics.Sample) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveLatest(ctx, snap); err != nil {
		s.logger.Error("Error saving latest snapshot", "error", err)
	}
	if err := s.store.AppendSample(ctx, sample, s.window.Cap()); err != nil {
		s.logger.Error("Error appending history sample", "error", err)
	}
}
