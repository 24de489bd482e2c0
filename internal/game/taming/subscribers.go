package taming

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/taming/internal/event"
)

// Subscriber priorities. Lower runs first.
const (
	PriorityPersistence = -10
	PriorityMetrics     = 10
	PriorityLogging     = 100
)

// DefaultSaveTimeout bounds one store call made from a bus handler.
const DefaultSaveTimeout = 5 * time.Second

// Subscriptions groups bus subscriptions so they can be removed together.
type Subscriptions struct {
	bus  *event.Bus
	subs []*event.Subscription
}

// Close unsubscribes everything.
func (s *Subscriptions) Close() {
	for _, sub := range s.subs {
		s.bus.Unsubscribe(sub)
	}
	s.subs = nil
}

// Len returns the number of active subscriptions.
func (s *Subscriptions) Len() int {
	return len(s.subs)
}

func (s *Subscriptions) add(sub *event.Subscription) {
	if sub != nil {
		s.subs = append(s.subs, sub)
	}
}

// SubscribePersistence saves animals on completion, updates them on mode
// change and rename, and deletes them when lost. Mode and name changes
// never insert, so a change published after a concurrent release cannot
// bring the deleted record back. Store errors are reported to the bus,
// which logs them.
func SubscribePersistence(bus *event.Bus, store Store, timeout time.Duration) *Subscriptions {
	if timeout <= 0 {
		timeout = DefaultSaveTimeout
	}
	s := &Subscriptions{bus: bus}

	s.add(event.On(bus, PriorityPersistence, func(e event.TamingCompleted) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := store.Save(ctx, e.Animal); err != nil {
			return fmt.Errorf("saving tamed animal %s: %w", e.Animal.ID, err)
		}
		return nil
	}))
	s.add(event.On(bus, PriorityPersistence, func(e event.BehaviorModeChanged) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := store.Update(ctx, e.Animal); err != nil {
			return fmt.Errorf("saving mode of %s: %w", e.Animal.ID, err)
		}
		return nil
	}))
	s.add(event.On(bus, PriorityPersistence, func(e event.TamedAnimalRenamed) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := store.Update(ctx, e.Animal); err != nil {
			return fmt.Errorf("saving name of %s: %w", e.Animal.ID, err)
		}
		return nil
	}))
	s.add(event.On(bus, PriorityPersistence, func(e event.CreatureLost) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := store.Delete(ctx, e.Animal.ID); err != nil {
			return fmt.Errorf("deleting tamed animal %s: %w", e.Animal.ID, err)
		}
		return nil
	}))

	return s
}

// SubscribeLogging writes every taming event to slog.
func SubscribeLogging(bus *event.Bus) *Subscriptions {
	s := &Subscriptions{bus: bus}

	s.add(event.On(bus, PriorityLogging, func(e event.TamingStarted) error {
		slog.Info("taming started",
			"handle", e.Handle,
			"id", e.ID,
			"species", e.SpeciesID,
			"player", e.PlayerID,
			"tick", e.Tick)
		return nil
	}))
	s.add(event.On(bus, PriorityLogging, func(e event.CreatureCalmed) error {
		slog.Info("creature calmed",
			"handle", e.Handle,
			"species", e.SpeciesID,
			"player", e.PlayerID,
			"expiresAt", e.ExpiresAtTick)
		return nil
	}))
	s.add(event.On(bus, PriorityLogging, func(e event.CalmExpired) error {
		slog.Info("calm expired",
			"handle", e.Handle,
			"species", e.SpeciesID,
			"player", e.PlayerID,
			"trust", e.Trust)
		return nil
	}))
	s.add(event.On(bus, PriorityLogging, func(e event.TamingCancelled) error {
		slog.Info("taming cancelled",
			"handle", e.Handle,
			"species", e.SpeciesID,
			"player", e.PlayerID,
			"reason", e.Reason)
		return nil
	}))
	s.add(event.On(bus, PriorityLogging, func(e event.TrustChanged) error {
		slog.Debug("trust changed",
			"handle", e.Handle,
			"phase", e.Phase.String(),
			"trust", e.NewTrust,
			"required", e.RequiredTrust)
		return nil
	}))
	s.add(event.On(bus, PriorityLogging, func(e event.TamingCompleted) error {
		slog.Info("taming completed",
			"id", e.Animal.ID,
			"species", e.Animal.SpeciesID,
			"owner", e.Animal.OwnerName,
			"ownerID", e.Animal.OwnerID)
		return nil
	}))
	s.add(event.On(bus, PriorityLogging, func(e event.BehaviorModeChanged) error {
		slog.Info("behavior mode changed",
			"id", e.Animal.ID,
			"from", e.OldMode,
			"to", e.Animal.Mode)
		return nil
	}))
	s.add(event.On(bus, PriorityLogging, func(e event.CreatureLost) error {
		slog.Info("tamed animal lost",
			"id", e.Animal.ID,
			"species", e.Animal.SpeciesID,
			"owner", e.Animal.OwnerID,
			"reason", e.Reason)
		return nil
	}))
	s.add(event.On(bus, PriorityLogging, func(e event.CreaturePetted) error {
		slog.Debug("tamed animal petted", "id", e.Animal.ID, "player", e.PlayerID)
		return nil
	}))
	s.add(event.On(bus, PriorityLogging, func(e event.TamedAnimalRenamed) error {
		slog.Info("tamed animal renamed",
			"id", e.Animal.ID,
			"from", e.OldName,
			"to", e.Animal.CustomName)
		return nil
	}))

	return s
}
