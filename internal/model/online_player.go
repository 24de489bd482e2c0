package model

import "github.com/google/uuid"

// OnlinePlayer is a player present in the current tick.
// ObjectID is the transient runtime handle and changes between sessions.
type OnlinePlayer struct {
	ID       uuid.UUID
	ObjectID uint32
	Name     string
}
