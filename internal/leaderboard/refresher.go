package leaderboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/agusx1211/promptarena/internal/debug"
)

// Puller fetches a board. *Remote implements it.
type Puller interface {
	Pull(ctx context.Context) (Board, error)
}

// Refresher periodically pulls a remote board and keeps the latest copy.
type Refresher struct {
	src       Puller
	scheduler gocron.Scheduler
	onUpdate  func(Board)

	mu      sync.RWMutex
	board   Board
	lastErr error
	pulled  time.Time
}

// NewRefresher schedules a pull every interval. onUpdate, if set, runs
// after each successful pull.
func NewRefresher(src Puller, interval time.Duration, onUpdate func(Board)) (*Refresher, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	r := &Refresher{src: src, scheduler: s, onUpdate: onUpdate}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { r.Refresh(context.Background()) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("scheduling leaderboard refresh: %w", err)
	}
	return r, nil
}

// Start begins the schedule.
func (r *Refresher) Start() { r.scheduler.Start() }

// Stop shuts the scheduler down and waits for a running pull.
func (r *Refresher) Stop() error { return r.scheduler.Shutdown() }

// Refresh pulls once.
func (r *Refresher) Refresh(ctx context.Context) error {
	b, err := r.src.Pull(ctx)
	r.mu.Lock()
	if err != nil {
		r.lastErr = err
		r.mu.Unlock()
		debug.LogKV("leaderboard", "refresh failed", "error", err)
		return err
	}
	r.board = b
	r.lastErr = nil
	r.pulled = time.Now()
	r.mu.Unlock()
	if r.onUpdate != nil {
		r.onUpdate(b)
	}
	return nil
}

// Board returns the latest pulled board and when it was fetched.
func (r *Refresher) Board() (Board, time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Board{Entries: append([]Entry(nil), r.board.Entries...)}, r.pulled, r.lastErr
}
