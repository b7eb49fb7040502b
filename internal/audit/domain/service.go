package domain

import (
	"context"
	"errors"
	"time"
)

// ListFilter narrows audit log reads.
type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
	Limit      int
}

// Service records and queries audit trail entries. Recording must never fail
// the mutation it describes; callers ignore the returned error after logging.
type Service interface {
	Record(ctx context.Context, actorType ActorType, actorID *string, action, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, filter ListFilter) ([]AuditLog, error)
}

var (
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidTarget = errors.New("invalid_target")
)
