package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/bodyfile/internal/bodyfile"
	"github.com/bamsammich/bodyfile/internal/config"
	"github.com/bamsammich/bodyfile/internal/timeline"
)

// boundLayouts are accepted by --start and --end, tried in order.
var boundLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type mactimeOpts struct {
	outPath  string
	timezone string
	start    string
	end      string
	csv      bool
}

func newMactimeCmd() *cobra.Command {
	var opts mactimeOpts

	cmd := &cobra.Command{
		Use:   "mactime [flags] [bodyfile...]",
		Short: "Render body files as a MACB timeline",
		Long: `Reads body files (stdin when none are given or for "-"), expands every
line into one event per distinct timestamp and prints them in time order.
zstd-compressed body files are detected automatically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "path", config.Path(), "error", err)
			}
			if !cmd.Flags().Changed("timezone") && cfg.Timeline.Timezone != nil {
				opts.timezone = *cfg.Timeline.Timezone
			}
			if !cmd.Flags().Changed("csv") && cfg.Timeline.CSV != nil {
				opts.csv = *cfg.Timeline.CSV
			}
			return runMactime(cmd.InOrStdin(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outPath, "output", "o", "-", "write the timeline to FILE (- for stdout)")
	cmd.Flags().StringVarP(&opts.timezone, "timezone", "z", "UTC", "render dates in this IANA time zone (or Local)")
	cmd.Flags().BoolVarP(&opts.csv, "csv", "d", false, "comma-separated output with a header row")
	cmd.Flags().StringVar(&opts.start, "start", "", "omit events before this time (YYYY-MM-DD, RFC 3339 or UNIX seconds)")
	cmd.Flags().StringVar(&opts.end, "end", "", "omit events after this time")

	return cmd
}

func runMactime(stdin io.Reader, args []string, opts mactimeOpts) error {
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid --timezone: %w", err)
	}

	var window timeline.Options
	if window.Start, err = parseBound(opts.start, loc); err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	if window.End, err = parseBound(opts.end, loc); err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}
	if window.Start != 0 && window.End != 0 && window.End < window.Start {
		return errors.New("--end is before --start")
	}

	if len(args) == 0 {
		args = []string{"-"}
	}
	var lines []bodyfile.Line
	for _, name := range args {
		read, err := readBodyFile(stdin, name)
		if err != nil {
			return err
		}
		lines = append(lines, read...)
	}

	events := timeline.Build(lines, window)
	slog.Debug("timeline built", "lines", len(lines), "events", len(events))

	format := timeline.FormatOptions{CSV: opts.csv, Location: loc}
	if opts.outPath == "" || opts.outPath == "-" {
		return timeline.Write(os.Stdout, events, format)
	}

	f, err := os.Create(opts.outPath)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if err := timeline.Write(f, events, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func readBodyFile(stdin io.Reader, name string) ([]bodyfile.Line, error) {
	if name == "-" {
		lines, err := timeline.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return lines, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open body file: %w", err)
	}
	defer f.Close()

	lines, err := timeline.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return lines, nil
}

// parseBound turns a --start/--end value into UNIX seconds; "" means 0.
func parseBound(s string, loc *time.Location) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	for _, layout := range boundLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", s)
}
