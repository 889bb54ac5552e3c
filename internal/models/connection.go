package models

import "time"

// ConnectionStatus defines the state of a connection between two users.
type ConnectionStatus string

const (
	// StatusPending means a connection request has been sent but not yet accepted.
	StatusPending ConnectionStatus = "pending"

	// StatusAccepted means the request was accepted and the users are connected.
	// A rejected request is deleted outright, so there is no rejected status:
	// the pair simply has no edge again and may be re-requested.
	StatusAccepted ConnectionStatus = "accepted"
)

// Connection is the edge between two users. It is directional at creation
// (requester -> target) but symmetric once accepted. PairMin/PairMax hold the
// two user IDs in sorted order; the unique index on them guarantees at most
// one edge per unordered pair no matter which side requested.
type Connection struct {
	ID          uint             `gorm:"primaryKey"`
	RequesterID uint             `gorm:"not null;index"`
	TargetID    uint             `gorm:"not null;index"`
	PairMin     uint             `gorm:"not null;uniqueIndex:idx_connection_pair"`
	PairMax     uint             `gorm:"not null;uniqueIndex:idx_connection_pair"`
	Status      ConnectionStatus `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time
	DecidedAt   *time.Time

	Requester User `gorm:"foreignKey:RequesterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Target    User `gorm:"foreignKey:TargetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// PairKey returns the normalized (low, high) user IDs for an unordered pair.
func PairKey(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}
