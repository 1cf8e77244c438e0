//go:build linux

package transport

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const birthTimeSupported = true

// fillStatFields extracts platform-specific fields from syscall.Stat_t into a FileEntry.
func fillStatFields(stat *syscall.Stat_t, entry *FileEntry) {
	entry.Dev = stat.Dev
	entry.AccTime = time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
	entry.ChangeTime = time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
}

// fillBirthTime asks statx for the creation time. Filesystems that do not
// record it leave STATX_BTIME out of the returned mask.
func fillBirthTime(absPath string, entry *FileEntry) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, absPath, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err != nil || stx.Mask&unix.STATX_BTIME == 0 {
		return
	}
	entry.BirthTime = time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
	entry.HasBirthTime = true
}
