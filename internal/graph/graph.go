// Package graph owns the connection-request lifecycle and the accepted-edge
// set. States per unordered pair: none -> pending -> accepted, with reject
// and removal collapsing back to none.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"proconnect/backend/internal/apperr"
	"proconnect/backend/internal/keylock"
	"proconnect/backend/internal/models"

	"gorm.io/gorm"
)

// Service mediates every mutation of the connection graph. All mutations for
// a given unordered pair run under that pair's lock, so the existence check
// and the write are a single critical section.
type Service struct {
	db *gorm.DB

	// AutoAcceptMutual merges a request whose opposite-direction request is
	// still pending into an accept instead of failing with a conflict.
	AutoAcceptMutual bool

	pairs *keylock.KeyLock
}

// NewService creates a connection graph service over db.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, pairs: keylock.New()}
}

func pairLockKey(a, b uint) string {
	lo, hi := models.PairKey(a, b)
	return fmt.Sprintf("%d:%d", lo, hi)
}

// Request creates a pending edge from requester to target. It fails with a
// conflict if any edge already exists for the pair, in either direction and
// any state — unless AutoAcceptMutual is set and the existing edge is the
// opposite pending request, which is then accepted on the requester's behalf.
func (s *Service) Request(ctx context.Context, requesterID, targetID uint) (*models.Connection, error) {
	if requesterID == targetID {
		return nil, apperr.InvalidArgument("cannot send a connection request to yourself")
	}

	var target models.User
	if err := s.db.WithContext(ctx).First(&target, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %d does not exist", targetID)
		}
		return nil, err
	}

	unlock := s.pairs.Lock(pairLockKey(requesterID, targetID))
	defer unlock()

	existing, err := s.edgeForPair(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if s.AutoAcceptMutual &&
			existing.Status == models.StatusPending &&
			existing.RequesterID == targetID {
			// The other side already asked; the requester's intent is
			// satisfied by accepting that edge.
			return s.accept(ctx, existing)
		}
		return nil, apperr.Conflict("a connection between users %d and %d already exists", requesterID, targetID)
	}

	lo, hi := models.PairKey(requesterID, targetID)
	edge := models.Connection{
		RequesterID: requesterID,
		TargetID:    targetID,
		PairMin:     lo,
		PairMax:     hi,
		Status:      models.StatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
		return nil, err
	}
	return &edge, nil
}

// Accept transitions the pending requester->actor edge to accepted. Only the
// designated target may accept; anyone else simply finds no such edge.
func (s *Service) Accept(ctx context.Context, actorID, requesterID uint) (*models.Connection, error) {
	unlock := s.pairs.Lock(pairLockKey(actorID, requesterID))
	defer unlock()

	edge, err := s.pendingEdge(ctx, requesterID, actorID)
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, edge)
}

func (s *Service) accept(ctx context.Context, edge *models.Connection) (*models.Connection, error) {
	now := time.Now()
	updates := map[string]any{"status": models.StatusAccepted, "decided_at": now}
	if err := s.db.WithContext(ctx).Model(edge).Updates(updates).Error; err != nil {
		return nil, err
	}
	edge.Status = models.StatusAccepted
	edge.DecidedAt = &now
	return edge, nil
}

// Reject deletes the pending requester->actor edge. The pair returns to the
// no-edge state, so the requester may ask again later; no tombstone is kept.
func (s *Service) Reject(ctx context.Context, actorID, requesterID uint) error {
	unlock := s.pairs.Lock(pairLockKey(actorID, requesterID))
	defer unlock()

	edge, err := s.pendingEdge(ctx, requesterID, actorID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(edge).Error
}

// Remove deletes the edge between actor and other. A pending edge may only be
// removed by its requester (cancel); an accepted edge by either side
// (unfriend).
func (s *Service) Remove(ctx context.Context, actorID, otherID uint) error {
	unlock := s.pairs.Lock(pairLockKey(actorID, otherID))
	defer unlock()

	edge, err := s.edgeForPair(ctx, actorID, otherID)
	if err != nil {
		return err
	}
	if edge == nil {
		return apperr.NotFound("no connection between users %d and %d", actorID, otherID)
	}
	if edge.Status == models.StatusPending && edge.RequesterID != actorID {
		return apperr.NotAuthorized("only the requester may cancel a pending request")
	}
	return s.db.WithContext(ctx).Delete(edge).Error
}

// Connections returns the users on the other end of every accepted edge
// touching the given user.
func (s *Service) Connections(ctx context.Context, userID uint) ([]models.User, error) {
	var edges []models.Connection
	err := s.db.WithContext(ctx).
		Where("status = ? AND (requester_id = ? OR target_id = ?)", models.StatusAccepted, userID, userID).
		Preload("Requester").
		Preload("Target").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(edges))
	for _, e := range edges {
		if e.RequesterID == userID {
			users = append(users, e.Target)
		} else {
			users = append(users, e.Requester)
		}
	}
	return users, nil
}

// PendingIncoming returns the requesters of every pending edge targeting the
// given user. Outgoing pending requests are not exposed here.
func (s *Service) PendingIncoming(ctx context.Context, userID uint) ([]models.User, error) {
	var edges []models.Connection
	err := s.db.WithContext(ctx).
		Where("status = ? AND target_id = ?", models.StatusPending, userID).
		Preload("Requester").
		Order("created_at ASC").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(edges))
	for _, e := range edges {
		users = append(users, e.Requester)
	}
	return users, nil
}

// AreConnected reports whether an accepted edge exists between a and b.
func (s *Service) AreConnected(ctx context.Context, a, b uint) (bool, error) {
	lo, hi := models.PairKey(a, b)
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("pair_min = ? AND pair_max = ? AND status = ?", lo, hi, models.StatusAccepted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ConnectionIDs returns the IDs of the user's accepted counterparts.
func (s *Service) ConnectionIDs(ctx context.Context, userID uint) ([]uint, error) {
	var edges []models.Connection
	err := s.db.WithContext(ctx).
		Where("status = ? AND (requester_id = ? OR target_id = ?)", models.StatusAccepted, userID, userID).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		if e.RequesterID == userID {
			ids = append(ids, e.TargetID)
		} else {
			ids = append(ids, e.RequesterID)
		}
	}
	return ids, nil
}

func (s *Service) edgeForPair(ctx context.Context, a, b uint) (*models.Connection, error) {
	lo, hi := models.PairKey(a, b)
	var edge models.Connection
	err := s.db.WithContext(ctx).
		Where("pair_min = ? AND pair_max = ?", lo, hi).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

func (s *Service) pendingEdge(ctx context.Context, requesterID, targetID uint) (*models.Connection, error) {
	var edge models.Connection
	err := s.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ? AND status = ?", requesterID, targetID, models.StatusPending).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("no pending request from user %d", requesterID)
	}
	if err != nil {
		return nil, err
	}
	return &edge, nil
}
