package ui

import (
	"io"

	"github.com/bamsammich/bodyfile/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter. Presenters never write to stdout, which
// may be carrying the body file itself.
type Config struct {
	ErrWriter io.Writer
	Stats     stats.ReadTicker
	IsTTY     bool // style the summary
	Quiet     bool
	Verbose   bool // one line per collected entry
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{}
	}
	return &plainPresenter{
		errW:    cfg.ErrWriter,
		stats:   cfg.Stats,
		verbose: cfg.Verbose,
		styled:  cfg.IsTTY,
	}
}
