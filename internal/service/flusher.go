package service

import (
	"context"
	"sync"
	"time"

	"github.com/reasonrank/reasongraph/internal/domain"
	"go.uber.org/zap"
)

const defaultFlushInterval = 30 * time.Second

// ScoreFlusher periodically snapshots the score table to the score store.
// Scores are derived state, so write-behind is safe: a crash loses nothing
// that a recompute on load cannot rebuild.
type ScoreFlusher struct {
	engine *Engine
	store  domain.ScoreStore
	logger *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewScoreFlusher(engine *Engine, store domain.ScoreStore, logger *zap.Logger) *ScoreFlusher {
	return &ScoreFlusher{
		engine:   engine,
		store:    store,
		logger:   logger,
		interval: defaultFlushInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *ScoreFlusher) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the flusher on a periodic schedule in a background goroutine.
func (s *ScoreFlusher) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("score flusher started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("score flusher stopped")
				return
			}
		}
	}()
}

func (s *ScoreFlusher) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// FlushOnce writes the current snapshot immediately, outside the schedule.
func (s *ScoreFlusher) FlushOnce(ctx context.Context) error {
	snapshot := s.engine.ScoreSnapshot()
	if len(snapshot) == 0 {
		return nil
	}
	return s.store.SaveSnapshot(ctx, snapshot)
}

func (s *ScoreFlusher) run(ctx context.Context) {
	snapshot := s.engine.ScoreSnapshot()
	if len(snapshot) == 0 {
		return
	}
	if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Error("score snapshot flush failed", zap.Error(err))
		return
	}
	s.logger.Debug("score snapshot flushed", zap.Int("scores", len(snapshot)))
}
