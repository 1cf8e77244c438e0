package transport

import (
	"io"
	"os"
	"time"
)

// FileEntry describes a single filesystem entry with the metadata a body
// file line needs.
type FileEntry struct {
	ModTime      time.Time
	AccTime      time.Time
	ChangeTime   time.Time // zero when the endpoint cannot report it
	BirthTime    time.Time // valid only when HasBirthTime
	LinkTarget   string
	RelPath      string
	Size         int64
	Ino          uint64
	Dev          uint64
	GID          uint32
	UID          uint32
	Nlink        uint32
	Mode         os.FileMode
	HasIno       bool
	HasBirthTime bool
	IsSymlink    bool
	IsDir        bool
}

// Capabilities describes what a source endpoint can report.
type Capabilities struct {
	Inodes     bool // Ino/Dev are meaningful
	ChangeTime bool // ctime is reported
	BirthTime  bool // crtime may be reported (per entry, see HasBirthTime)
	Hardlinks  bool // Nlink is meaningful
}

// ReadEndpoint is a tree of files that can be collected.
type ReadEndpoint interface {
	// Stat returns metadata for a single relative path without following
	// symlinks. "." is the root itself.
	Stat(relPath string) (FileEntry, error)

	// ReadDir lists immediate children of a relative directory path.
	ReadDir(relPath string) ([]FileEntry, error)

	// OpenRead opens a file for reading by relative path.
	OpenRead(relPath string) (io.ReadCloser, error)

	// Root returns the root path of this endpoint as given by the user.
	Root() string

	// Caps returns the capabilities of this endpoint.
	Caps() Capabilities

	// Close releases resources held by this endpoint.
	Close() error
}
