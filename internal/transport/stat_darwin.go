//go:build darwin

package transport

import (
	"syscall"
	"time"
)

const birthTimeSupported = true

// fillStatFields extracts platform-specific fields from syscall.Stat_t into a FileEntry.
// Darwin reports the birth time directly in stat.
func fillStatFields(stat *syscall.Stat_t, entry *FileEntry) {
	entry.Dev = uint64(stat.Dev) //nolint:gosec // G115: dev_t is int32 on darwin, always non-negative
	entry.AccTime = time.Unix(stat.Atimespec.Sec, stat.Atimespec.Nsec)
	entry.ChangeTime = time.Unix(stat.Ctimespec.Sec, stat.Ctimespec.Nsec)
	entry.BirthTime = time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
	entry.HasBirthTime = true
}

func fillBirthTime(string, *FileEntry) {}
