// Package timeline turns body file lines into a mactime-style timeline:
// one event per distinct timestamp of each line, labelled with the MACB
// activity string.
package timeline

import (
	"sort"

	"github.com/bamsammich/bodyfile/internal/bodyfile"
)

// Event is one timeline row. MACB has four characters, one per timestamp
// kind, each either its letter or '.' when that timestamp differs.
type Event struct {
	Line bodyfile.Line
	MACB string
	Time int64
}

// Options bounds the timeline. Both ends are inclusive; zero means unbounded.
type Options struct {
	Start int64
	End   int64
}

func (o Options) contains(t int64) bool {
	if t <= 0 {
		return false
	}
	if o.Start != 0 && t < o.Start {
		return false
	}
	if o.End != 0 && t > o.End {
		return false
	}
	return true
}

// Build expands lines into events sorted by time, then name, then MACB.
// Timestamps that are zero or negative are treated as absent.
func Build(lines []bodyfile.Line, opts Options) []Event {
	var events []Event
	for _, l := range lines {
		events = appendEvents(events, l, opts)
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.Line.Name() != b.Line.Name() {
			return a.Line.Name() < b.Line.Name()
		}
		return a.MACB < b.MACB
	})
	return events
}

func appendEvents(events []Event, l bodyfile.Line, opts Options) []Event {
	times := [4]int64{l.Mtime(), l.Atime(), l.Ctime(), l.Crtime()}
	const letters = "macb"

	var done [4]bool
	for i, t := range times {
		if done[i] || !opts.contains(t) {
			continue
		}
		macb := []byte("....")
		for j := i; j < len(times); j++ {
			if times[j] == t {
				macb[j] = letters[j]
				done[j] = true
			}
		}
		events = append(events, Event{Time: t, MACB: string(macb), Line: l})
	}
	return events
}
