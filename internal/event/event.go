package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	ScanComplete
	DirScanned
	EntryCollected
	EntrySkipped
	EntryFailed
	HashStarted
	HashFailed
	NoTimestamps
)

var typeNames = [...]string{
	ScanStarted:    "ScanStarted",
	ScanComplete:   "ScanComplete",
	DirScanned:     "DirScanned",
	EntryCollected: "EntryCollected",
	EntrySkipped:   "EntrySkipped",
	EntryFailed:    "EntryFailed",
	HashStarted:    "HashStarted",
	HashFailed:     "HashFailed",
	NoTimestamps:   "NoTimestamps",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the collector.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // path as written to the name column
	Size      int64  // entry size (EntryCollected, HashStarted); entries read (DirScanned)
	Total     int64  // lines written (ScanComplete)
	TotalSize int64  // bytes hashed (ScanComplete)
	Error     error
	WorkerID  int
}
