// Package health holds the daemon's externally visible health snapshot.
// The reconciliation engine is the only writer; any number of readers
// (the file sink, the status API, CLI commands) may take the current
// snapshot concurrently. Snapshots are plain values replaced wholesale
// on every tick, so a reader never observes a half-written update.
package health

import (
	"sync"
	"time"
)

// GluetunStatus reports gluetun reachability and the forwarded port
type GluetunStatus struct {
	Connected bool `json:"connected"`
	// Port is the forwarded port gluetun currently advertises; 0 when
	// forwarding is not active.
	Port int `json:"port"`
}

// SlskdStatus reports slskd reachability and sync state
type SlskdStatus struct {
	Connected bool `json:"connected"`
	// PortSynced is true when the slskd listen port matches the
	// forwarded port, or when no port is currently forwarded.
	PortSynced bool `json:"port_synced"`
}

// Services groups per-service status
type Services struct {
	Gluetun GluetunStatus `json:"gluetun"`
	Slskd   SlskdStatus   `json:"slskd"`
}

// Snapshot is the health record published after every tick
type Snapshot struct {
	Healthy        bool       `json:"healthy"`
	Services       Services   `json:"services"`
	Uptime         string     `json:"uptime"`
	LastCheck      time.Time  `json:"last_check"`
	LastPortChange *time.Time `json:"last_port_change"`
	LastError      string     `json:"last_error,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}

// State is the shared snapshot holder
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewState creates an empty health state
func NewState() *State {
	return &State{}
}

// Update replaces the current snapshot. Last write wins; fields are
// never merged.
func (s *State) Update(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Current returns a copy of the latest snapshot
func (s *State) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
