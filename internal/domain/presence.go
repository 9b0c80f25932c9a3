package domain

import "time"

// Presence statuses as written by the heartbeat. Readers re-derive staleness
// from LastSeen instead of trusting the stored value.
const (
	PresenceOnline  = "online"
	PresenceAway    = "away"
	PresenceOffline = "offline"
)

// Presence timing constants, shared between the heartbeat writer and readers.
const (
	// HeartbeatInterval is how often an active admin session re-writes its record.
	HeartbeatInterval = 60 * time.Second
	// ActivityThrottle caps interaction-driven writes to one per window.
	ActivityThrottle = 30 * time.Second
	// ActivityTimeout is the threshold past which a record counts as away
	// (writer side) or offline (reader side).
	ActivityTimeout = 5 * time.Minute
)

// PresenceRecord is one admin's last-known activity state. One record per
// admin UID; merged on write, never hard-deleted.
type PresenceRecord struct {
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	Status       string    `json:"status" dynamodbav:"status"`
	LastSeen     time.Time `json:"last_seen" dynamodbav:"last_seen"`
	LastActivity time.Time `json:"last_activity" dynamodbav:"last_activity"`
	Browser      string    `json:"browser" dynamodbav:"browser"`
	Email        string    `json:"email,omitempty" dynamodbav:"email"`
}

// PresenceView is a record plus the reader-derived classification.
type PresenceView struct {
	PresenceRecord
	IsOnline  bool `json:"is_online"`
	IsAway    bool `json:"is_away"`
	IsOffline bool `json:"is_offline"`
}

type HeartbeatRequest struct {
	Status       string    `json:"status" validate:"required,oneof=online away offline"`
	LastActivity time.Time `json:"last_activity"`
	Browser      string    `json:"browser"`
}
