package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/bodyfile/internal/config"
	"github.com/bamsammich/bodyfile/internal/engine"
	"github.com/bamsammich/bodyfile/internal/event"
	"github.com/bamsammich/bodyfile/internal/filter"
	"github.com/bamsammich/bodyfile/internal/output"
	"github.com/bamsammich/bodyfile/internal/stats"
	"github.com/bamsammich/bodyfile/internal/transport"
	"github.com/bamsammich/bodyfile/internal/ui"
	"github.com/bamsammich/bodyfile/internal/ui/tui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// collectOpts holds the collection flags.
type collectOpts struct {
	outPath        string
	hashName       string
	readLimitStr   string
	mountPoint     string
	filterFile     string
	minSizeStr     string
	maxSizeStr     string
	sshKeyFile     string
	knownHosts     string
	logFile        string
	hashCachePath  string
	workers        int
	sshPort        int
	compress       bool
	header         bool
	hashCache      bool
	oneFileSystem  bool
	strictHostKeys bool
	verbose        bool
	quiet          bool
	tui            bool
	showVersion    bool
}

func run() int {
	var opts collectOpts
	rootCmd := newRootCmd(&opts, filter.NewChain())

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	return 0
}

func newRootCmd(opts *collectOpts, chain *filter.Chain) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bodyfile [flags] <source>...",
		Short: "Collect file system metadata into a TSK 3.x body file",
		Long: `Walks each source tree (local path, host:path or sftp://host/path) and
writes one body file line per entry:

  MD5|name|inode|mode_as_string|UID|GID|size|atime|mtime|ctime|crtime

The output can be fed to mactime or to "bodyfile mactime".`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(os.Stdout, "bodyfile %s\n", version)
				return nil
			}
			return runCollect(cmd, args, opts, chain)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	flags.StringVarP(&opts.outPath, "output", "o", "-", "write the body file to FILE (- for stdout)")
	flags.StringVar(&opts.hashName, "hash", "md5", "digest for the md5 column (md5, sha1, sha256, blake3, none)")
	flags.IntVarP(&opts.workers, "workers", "n", 0, "number of hashing workers (default: NumCPU)")
	flags.StringVarP(&opts.mountPoint, "mount-point", "m", "", "prefix names with PATH instead of the source path")
	flags.StringVar(&opts.readLimitStr, "read-limit", "", "cap hashing reads (e.g. 50M, 1G per second)")
	flags.BoolVarP(&opts.compress, "compress", "z", false, "zstd-compress the output")
	flags.BoolVar(&opts.header, "header", false, "start the output with # comment lines naming the run and columns")
	flags.BoolVar(&opts.hashCache, "hash-cache", false, "reuse digests of unchanged files from earlier runs")
	flags.StringVar(&opts.hashCachePath, "hash-cache-path", "", "hash cache database (default: $XDG_CACHE_HOME/bodyfile/hashes.db)")
	flags.BoolVarP(&opts.oneFileSystem, "one-file-system", "x", false, "don't descend into other file systems")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress all output except errors")
	flags.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	flags.BoolVar(&opts.tui, "tui", false, "full-screen progress on stderr (needs --output FILE)")

	// Filter flags: custom pflag.Value to preserve CLI ordering.
	flags.Var(&filterFlag{chain: chain, include: false}, "exclude", "exclude entries matching PATTERN (repeatable)")
	flags.Var(&filterFlag{chain: chain, include: true}, "include", "include entries matching PATTERN (repeatable)")
	flags.StringVar(&opts.filterFile, "filter", "", "read filter rules from FILE")
	flags.StringVar(&opts.minSizeStr, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	flags.StringVar(&opts.maxSizeStr, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")

	flags.StringVar(&opts.sshKeyFile, "ssh-key", "", "SSH private key file (default: auto-detect)")
	flags.IntVar(&opts.sshPort, "ssh-port", 0, "SSH port (default: 22 or the port in an sftp:// URL)")
	flags.StringVar(&opts.knownHosts, "known-hosts", "", "known_hosts file (default: ~/.ssh/known_hosts)")
	flags.BoolVar(&opts.strictHostKeys, "strict-host-keys", false, "refuse to connect when known_hosts cannot be loaded")

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "exclude" || f.Name == "include" {
			f.NoOptDefVal = ""
		}
	})

	rootCmd.AddCommand(newMactimeCmd())
	rootCmd.AddCommand(docsCmd)
	return rootCmd
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: CLI entry point wires every flag
func runCollect(cmd *cobra.Command, args []string, opts *collectOpts, chain *filter.Chain) error {
	// Load optional config file.
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "path", config.Path(), "error", err)
	}
	if err := applyConfigDefaults(cmd, cfg.Defaults, opts, chain); err != nil {
		return err
	}
	ui.ApplyTheme(cfg.Theme)

	// Configure logging.
	logLevel := slog.LevelWarn
	if opts.verbose {
		logLevel = slog.LevelDebug
	} else if !opts.quiet {
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	var logHandler slog.Handler = textHandler
	if opts.logFile != "" {
		lf, lfErr := os.Create(opts.logFile)
		if lfErr != nil {
			return fmt.Errorf("open log file: %w", lfErr)
		}
		defer lf.Close()
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	runID := uuid.NewString()
	slog.SetDefault(slog.New(logHandler).With("run", runID))

	if opts.tui {
		if err := validateTUI(opts.outPath); err != nil {
			return err
		}
	}

	algo, err := engine.ParseAlgorithm(opts.hashName)
	if err != nil {
		return fmt.Errorf("invalid --hash: %w", err)
	}

	var readLimit int64
	if opts.readLimitStr != "" {
		readLimit, err = filter.ParseSize(opts.readLimitStr)
		if err != nil {
			return fmt.Errorf("invalid --read-limit: %w", err)
		}
	}

	if opts.workers <= 0 {
		opts.workers = runtime.NumCPU()
	}

	// Load filter file if specified.
	if opts.filterFile != "" {
		if err := chain.LoadFile(opts.filterFile); err != nil {
			return fmt.Errorf("load filter file: %w", err)
		}
	}
	if opts.minSizeStr != "" {
		n, err := filter.ParseSize(opts.minSizeStr)
		if err != nil {
			return fmt.Errorf("invalid --min-size: %w", err)
		}
		chain.SetMinSize(n)
	}
	if opts.maxSizeStr != "" {
		n, err := filter.ParseSize(opts.maxSizeStr)
		if err != nil {
			return fmt.Errorf("invalid --max-size: %w", err)
		}
		chain.SetMaxSize(n)
	}

	var hashCache *engine.HashCache
	if opts.hashCache && algo.Enabled() {
		cachePath := opts.hashCachePath
		if cachePath == "" {
			cachePath = engine.DefaultHashCachePath()
		}
		hashCache, err = engine.OpenHashCache(cachePath)
		if err != nil {
			return err
		}
		defer hashCache.Close()
		slog.Debug("hash cache", "path", hashCache.Path())
	}

	out, err := output.Open(opts.outPath, output.Options{
		Compress: opts.compress,
		Header:   opts.header,
		RunID:    runID,
	})
	if err != nil {
		return err
	}

	// Set up context with signal handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 256)

	// When --log is set, tee events through a logging goroutine
	// that writes structured records before forwarding to the presenter.
	presenterEvents := (<-chan event.Event)(events)
	if opts.logFile != "" {
		presenterEvents = teeEventsToLog(events)
	}

	isTTY := ui.IsTTY(os.Stderr.Fd())
	useTUI := opts.tui && isTTY
	if opts.tui && !isTTY {
		slog.Warn("--tui requires a terminal on stderr, falling back to inline output")
	}

	var presenter ui.Presenter
	if useTUI {
		presenter = tui.NewPresenter(tui.Config{
			Stats:   collector,
			Out:     os.Stderr,
			Workers: opts.workers,
			Source:  sourceDisplay(args),
			Root:    namePrefix(transport.ParseLocation(args[0]), opts.mountPoint, len(args) > 1),
			Output:  opts.outPath,
			Theme:   cfg.Theme,
		})
	} else {
		presenter = ui.NewPresenter(ui.Config{
			ErrWriter: os.Stderr,
			Stats:     collector,
			IsTTY:     isTTY,
			Quiet:     opts.quiet,
			Verbose:   opts.verbose,
		})
	}

	sshOpts := transport.SSHOpts{
		KeyFile:        opts.sshKeyFile,
		Password:       os.Getenv("BODYFILE_SSH_PASSWORD"),
		KnownHostsFile: opts.knownHosts,
		Port:           opts.sshPort,
		StrictHostKeys: opts.strictHostKeys,
	}

	collectAll := func(ctx context.Context) []error {
		var errs []error
		for _, arg := range args {
			if ctx.Err() != nil {
				break
			}
			loc := transport.ParseLocation(arg)
			result := collectSource(ctx, loc, engine.Config{
				Sink:          out,
				Filter:        nonEmpty(chain),
				HashCache:     hashCache,
				Events:        events,
				Stats:         collector,
				NamePrefix:    namePrefix(loc, opts.mountPoint, len(args) > 1),
				Hash:          algo,
				ReadLimit:     readLimit,
				Workers:       opts.workers,
				OneFileSystem: opts.oneFileSystem,
			}, sshOpts)
			if result.Err != nil {
				slog.Error("collection failed", "source", loc.String(), "error", result.Err)
				errs = append(errs, result.Err)
			}
		}
		return errs
	}

	var errs []error
	if useTUI {
		// The TUI owns the foreground so it can read the keyboard; the
		// collection runs behind it and is cancelled when the user quits.
		engineCtx, engineCancel := context.WithCancel(ctx)
		defer engineCancel()

		var engineWg sync.WaitGroup
		engineWg.Add(1)
		go func() {
			defer engineWg.Done()
			errs = collectAll(engineCtx)
			close(events)
		}()

		presenterErr := presenter.Run(presenterEvents)

		engineCancel()
		go drainEvents(presenterEvents)
		engineWg.Wait()
		stop()
		if presenterErr != nil {
			slog.Error("tui", "error", presenterErr)
		}
	} else {
		var presenterErr error
		var presenterWg sync.WaitGroup
		presenterWg.Add(1)
		go func() {
			defer presenterWg.Done()
			presenterErr = presenter.Run(presenterEvents)
		}()

		errs = collectAll(ctx)

		stop()
		close(events)
		presenterWg.Wait()
		if presenterErr != nil {
			fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
		}
	}

	if err := out.Close(); err != nil {
		slog.Error("close output", "error", err)
		errs = append(errs, err)
	}

	if !opts.quiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
	}

	if len(errs) > 0 {
		if out.Lines() > 0 {
			return &exitError{code: 1} // partial failure
		}
		return &exitError{code: 2} // total failure
	}
	return nil
}

// validateTUI rejects --tui when the body file is written to stdout, which
// the full-screen view would corrupt.
func validateTUI(outPath string) error {
	if outPath == "" || outPath == "-" {
		return errors.New("--tui needs --output FILE: the body file cannot share the terminal")
	}
	return nil
}

// sourceDisplay names the sources in the TUI header.
func sourceDisplay(args []string) string {
	if len(args) > 1 {
		return fmt.Sprintf("%s (+%d more)", args[0], len(args)-1)
	}
	return args[0]
}

// drainEvents discards events nobody displays anymore.
func drainEvents(events <-chan event.Event) {
	for range events {
	}
}

// collectSource runs one collection against the endpoint for loc.
func collectSource(
	ctx context.Context,
	loc transport.Location,
	cfg engine.Config,
	sshOpts transport.SSHOpts,
) engine.Result {
	ep, err := transport.Open(loc, sshOpts)
	if err != nil {
		return engine.Result{Err: err}
	}
	defer ep.Close()

	cfg.Endpoint = ep
	if missing := missingColumns(ep.Caps()); len(missing) > 0 {
		slog.Info("source cannot report some columns, they keep the unknown value",
			"source", loc.String(), "columns", missing)
	}
	slog.Debug("starting collection",
		"source", loc.String(),
		"prefix", cfg.NamePrefix,
		"hash", cfg.Hash,
		"workers", cfg.Workers,
	)
	result := engine.Run(ctx, cfg)
	slog.Debug("collection finished", "source", loc.String(), "stats", result.Stats.String())
	return result
}

// missingColumns lists the body file columns an endpoint cannot fill.
func missingColumns(caps transport.Capabilities) []string {
	var missing []string
	if !caps.Inodes {
		missing = append(missing, "inode")
	}
	if !caps.ChangeTime {
		missing = append(missing, "ctime")
	}
	if !caps.BirthTime {
		missing = append(missing, "crtime")
	}
	return missing
}

// namePrefix returns what the name column starts with for loc. A mount
// point replaces the source path; with several sources each keeps its base
// name under the mount point so their names cannot collide.
func namePrefix(loc transport.Location, mountPoint string, multi bool) string {
	if mountPoint != "" {
		if multi {
			return path.Join(mountPoint, filepath.Base(loc.Path))
		}
		return mountPoint
	}
	if loc.IsRemote() {
		return strings.TrimSuffix(loc.String(), "/")
	}
	return filepath.ToSlash(loc.Path)
}

func nonEmpty(chain *filter.Chain) *filter.Chain {
	if chain.Empty() {
		return nil
	}
	return chain
}

// teeEventsToLog logs every event at info level and forwards it.
func teeEventsToLog(events <-chan event.Event) <-chan event.Event {
	teed := make(chan event.Event, 256)
	go func() {
		for ev := range events {
			attrs := []slog.Attr{
				slog.String("type", ev.Type.String()),
				slog.String("path", ev.Path),
				slog.Int64("size", ev.Size),
				slog.Int("worker", ev.WorkerID),
			}
			if ev.Error != nil {
				attrs = append(attrs, slog.String("error", ev.Error.Error()))
			}
			slog.LogAttrs(context.Background(), slog.LevelDebug, "bodyfile.event", attrs...)
			teed <- ev
		}
		close(teed)
	}()
	return teed
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI. Config excludes are added ahead of CLI rules only when no
// --exclude/--include was given.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	opts *collectOpts,
	chain *filter.Chain,
) error {
	changed := cmd.Flags().Changed
	if !changed("hash") && defaults.Hash != nil {
		opts.hashName = *defaults.Hash
	}
	if !changed("workers") && defaults.Workers != nil {
		opts.workers = *defaults.Workers
	}
	if !changed("read-limit") && defaults.ReadLimit != nil {
		opts.readLimitStr = *defaults.ReadLimit
	}
	if !changed("compress") && defaults.Compress != nil {
		opts.compress = *defaults.Compress
	}
	if !changed("header") && defaults.Header != nil {
		opts.header = *defaults.Header
	}
	if !changed("mount-point") && defaults.MountPoint != nil {
		opts.mountPoint = *defaults.MountPoint
	}
	if !changed("hash-cache") && defaults.HashCache != nil {
		opts.hashCache = *defaults.HashCache
	}
	if !changed("one-file-system") && defaults.OneFileSystem != nil {
		opts.oneFileSystem = *defaults.OneFileSystem
	}
	if !changed("exclude") && !changed("include") {
		for _, pat := range defaults.Exclude {
			if err := chain.AddExclude(pat); err != nil {
				return fmt.Errorf("config exclude %q: %w", pat, err)
			}
		}
	}
	return nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
