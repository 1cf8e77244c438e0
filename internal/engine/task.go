package engine

import "github.com/bamsammich/bodyfile/internal/transport"

// DevIno uniquely identifies an inode for hard link detection.
type DevIno struct {
	Dev uint64
	Ino uint64
}

// Task is one entry found by the scanner, waiting to become a body file line.
type Task struct {
	Entry transport.FileEntry
}

// devIno returns the inode key for the entry and whether the entry can be
// met again under another name. Single-link files never repeat.
func (t Task) devIno() (DevIno, bool) {
	if !t.Entry.HasIno || t.Entry.Nlink < 2 {
		return DevIno{}, false
	}
	return DevIno{Dev: t.Entry.Dev, Ino: t.Entry.Ino}, true
}
