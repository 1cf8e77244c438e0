package ui

import "github.com/bamsammich/bodyfile/internal/event"

// Event is the progress event consumed by presenters.
type Event = event.Event

// Re-export event types for convenience.
const (
	ScanStarted    = event.ScanStarted
	ScanComplete   = event.ScanComplete
	DirScanned     = event.DirScanned
	EntryCollected = event.EntryCollected
	EntrySkipped   = event.EntrySkipped
	EntryFailed    = event.EntryFailed
	HashStarted    = event.HashStarted
	HashFailed     = event.HashFailed
	NoTimestamps   = event.NoTimestamps
)
