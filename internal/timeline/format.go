package timeline

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// DateLayout is how event times are rendered, matching mactime.
const DateLayout = "Mon Jan 02 2006 15:04:05"

// FormatOptions controls Write.
type FormatOptions struct {
	Location *time.Location // nil = UTC
	CSV      bool
}

var csvHeader = []string{"Date", "Size", "Type", "Mode", "UID", "GID", "Meta", "File Name"}

// Write renders events as text columns or, with CSV set, as comma-separated
// values with a header row. In text mode the date is printed only when it
// changes from the previous row.
func Write(w io.Writer, events []Event, opts FormatOptions) error {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	if opts.CSV {
		return writeCSV(w, events, loc)
	}
	return writeText(w, events, loc)
}

func writeText(w io.Writer, events []Event, loc *time.Location) error {
	bw := bufio.NewWriter(w)
	blank := fmt.Sprintf("%*s", len(DateLayout), "")

	var prev int64
	for i, ev := range events {
		date := blank
		if i == 0 || ev.Time != prev {
			date = formatTime(ev.Time, loc)
		}
		prev = ev.Time

		l := ev.Line
		if _, err := fmt.Fprintf(bw, "%s %8d %s %s %-5d %-5d %-7s %s\n",
			date, l.Size(), ev.MACB, l.Mode(), l.UID(), l.GID(), l.Inode(), l.Name()); err != nil {
			return fmt.Errorf("write timeline: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write timeline: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, events []Event, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write timeline: %w", err)
	}
	for _, ev := range events {
		l := ev.Line
		record := []string{
			formatTime(ev.Time, loc),
			strconv.FormatInt(l.Size(), 10),
			ev.MACB,
			l.Mode(),
			strconv.FormatInt(l.UID(), 10),
			strconv.FormatInt(l.GID(), 10),
			l.Inode(),
			l.Name(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write timeline: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write timeline: %w", err)
	}
	return nil
}

func formatTime(t int64, loc *time.Location) string {
	return time.Unix(t, 0).In(loc).Format(DateLayout)
}
