package taming

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/taming/internal/model"
)

// PlayerSource lists the players online at the start of a tick.
type PlayerSource interface {
	OnlinePlayers() []model.OnlinePlayer
}

// PlayerSourceFunc adapts a function to PlayerSource.
type PlayerSourceFunc func() []model.OnlinePlayer

// OnlinePlayers implements PlayerSource.
func (f PlayerSourceFunc) OnlinePlayers() []model.OnlinePlayer {
	return f()
}

// TickStats summarizes the housekeeping of one tick.
type TickStats struct {
	Tick      int64
	Players   int
	Cancelled int // attempts of players that went offline
	Accrued   int // mounted attempts whose trust grew
	Expired   int // calmed windows that closed
}

// TickLoop advances the manager tick counter at a fixed interval and runs
// per-tick housekeeping.
type TickLoop struct {
	mgr      *Manager
	players  PlayerSource
	interval time.Duration

	tick     atomic.Int64
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewTickLoop creates a loop driving mgr every interval.
// A nil players source means nobody is online.
func NewTickLoop(mgr *Manager, players PlayerSource, interval time.Duration) *TickLoop {
	if players == nil {
		players = PlayerSourceFunc(func() []model.OnlinePlayer { return nil })
	}
	if interval <= 0 {
		interval = time.Second / time.Duration(mgr.TickRate())
	}
	l := &TickLoop{
		mgr:      mgr,
		players:  players,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	l.tick.Store(mgr.Tick())
	return l
}

// Start runs the loop (blocks until ctx is canceled or Stop is called).
func (l *TickLoop) Start(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	slog.Info("taming tick loop started", "interval", l.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("taming tick loop stopping", "tick", l.tick.Load())
			return ctx.Err()

		case <-l.stopCh:
			slog.Info("taming tick loop stopped", "tick", l.tick.Load())
			return nil

		case <-ticker.C:
			stats := l.Step()
			if stats.Cancelled > 0 || stats.Expired > 0 {
				slog.Debug("taming tick",
					"tick", stats.Tick,
					"cancelled", stats.Cancelled,
					"expired", stats.Expired)
			}
		}
	}
}

// Stop stops the loop. Safe to call more than once.
func (l *TickLoop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
}

// Tick returns the last tick the loop ran.
func (l *TickLoop) Tick() int64 {
	return l.tick.Load()
}

// Step runs a single tick: it installs the player snapshot, cancels
// attempts of offline players, credits mounted trust and closes expired
// calmed windows.
func (l *TickLoop) Step() TickStats {
	tick := l.tick.Add(1)
	players := l.players.OnlinePlayers()
	l.mgr.BeginTick(tick, players)
	snapshot := l.mgr.Players()

	var offline []uint32
	mounted := make(map[uint32]int)
	l.mgr.mu.Lock()
	for handle, p := range l.mgr.progress {
		switch {
		case !snapshot.IsOnline(p.PlayerID()):
			offline = append(offline, handle)
		case p.IsMounted():
			mounted[handle] = p.Trust()
		}
	}
	l.mgr.mu.Unlock()

	stats := TickStats{Tick: tick, Players: snapshot.Count()}
	for _, h := range offline {
		if l.mgr.CancelTaming(h, CancelPlayerOffline) {
			stats.Cancelled++
		}
	}
	for h, trust := range mounted {
		if p, ok := l.mgr.AccrueMountTrust(h); ok && p.Trust() != trust {
			stats.Accrued++
		}
	}
	stats.Expired = l.mgr.ExpireCalms()
	return stats
}
