package models

import "time"

// NotificationKind distinguishes success toasts from error toasts.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is pushed to connected panels after an action finishes.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	SentAt  time.Time        `json:"sentAt"`
}
