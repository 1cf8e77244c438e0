package ui

import (
	"fmt"
	"strings"

	"github.com/bamsammich/bodyfile/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot, styled
// with the theme when styled is set.
// Format: done ✓  lines 48,917  hashed 2.1 GiB  avg 641 MB/s  time 3m 17s  errors 0
func CompletionSummary(snap stats.Snapshot, styled bool) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesHashed) / snap.Elapsed.Seconds()
	}

	icon := "✓"
	iconStyle := styleOK
	if snap.EntriesFailed > 0 {
		icon = "✗"
		iconStyle = styleError
	}

	type field struct{ label, value string }
	fields := []field{
		{"lines", FormatCount(snap.LinesWritten)},
		{"hashed", FormatBytes(snap.BytesHashed)},
		{"avg", FormatRate(avgSpeed)},
		{"time", FormatDuration(snap.Elapsed)},
	}
	if snap.HashCacheHits > 0 {
		fields = append(fields, field{"cached", FormatCount(snap.HashCacheHits)})
	}
	if snap.EntriesSkipped > 0 {
		fields = append(fields, field{"skipped", FormatCount(snap.EntriesSkipped)})
	}
	fields = append(fields, field{"errors", FormatCount(snap.EntriesFailed)})

	var b strings.Builder
	if styled {
		b.WriteString("done " + iconStyle.Render(icon))
	} else {
		b.WriteString("done " + icon)
	}
	for _, f := range fields {
		if styled {
			fmt.Fprintf(&b, "  %s %s", styleLabel.Render(f.label), styleValue.Render(f.value))
		} else {
			fmt.Fprintf(&b, "  %s %s", f.label, f.value)
		}
	}
	return b.String()
}
