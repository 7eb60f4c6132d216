package models

import (
	"encoding/json"
	"time"
)

// AuditAction values recorded against purchase requests.
const (
	AuditActionCreate     = "CREATE"
	AuditActionEdit       = "EDIT"
	AuditActionTransition = "STATUS_CHANGE"
)

// AuditEntry is one audit trail record for a purchase request.
type AuditEntry struct {
	ID         string          `json:"id"`
	RequestID  int64           `json:"requestId"`
	Action     string          `json:"action"`
	Trigger    Action          `json:"trigger,omitempty"`
	FromStatus RequestStatus   `json:"fromStatus,omitempty"`
	ToStatus   RequestStatus   `json:"toStatus"`
	Actor      string          `json:"actor"`
	OldValues  json.RawMessage `json:"oldValues,omitempty"`
	NewValues  json.RawMessage `json:"newValues,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// StatusCheckpoint is one step on a request's status timeline.
type StatusCheckpoint struct {
	Status    RequestStatus `json:"status"`
	Label     string        `json:"label"`
	Actor     string        `json:"actor"`
	Note      string        `json:"note,omitempty"`
	ReachedAt time.Time     `json:"reachedAt"`
}

// StatusTimeline is the track-status view for a request.
type StatusTimeline struct {
	Reference   string             `json:"reference"`
	Title       string             `json:"title"`
	Current     RequestStatus      `json:"current"`
	Checkpoints []StatusCheckpoint `json:"checkpoints"`
}
