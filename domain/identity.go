// Package domain contains core concepts of the pair-chat system.
// This file defines Identity records owned by the IdentityDirectory.
// The registry only references identity ids, never this state.
package domain

import "time"

// Identity is a registered chat participant.
type Identity struct {
	ID       string    `json:"id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"lastSeen"`
}
