package transport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

var _ ReadEndpoint = (*LocalReadEndpoint)(nil)

// LocalReadEndpoint reads from the local filesystem.
type LocalReadEndpoint struct {
	root string
}

// NewLocalReadEndpoint creates a new local read endpoint rooted at root.
func NewLocalReadEndpoint(root string) *LocalReadEndpoint {
	return &LocalReadEndpoint{root: root}
}

func (e *LocalReadEndpoint) Stat(relPath string) (FileEntry, error) {
	return statAbsolute(e.AbsPath(relPath), relPath)
}

func (e *LocalReadEndpoint) ReadDir(relPath string) ([]FileEntry, error) {
	absPath := e.AbsPath(relPath)
	dirents, err := os.ReadDir(absPath)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", absPath, err)
	}

	result := make([]FileEntry, 0, len(dirents))
	var firstErr error
	for _, d := range dirents {
		childRel := filepath.Join(relPath, d.Name())
		entry, err := statAbsolute(filepath.Join(absPath, d.Name()), childRel)
		if err != nil {
			// Entries can vanish between readdir and lstat on a live system.
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result = append(result, entry)
	}
	return result, firstErr
}

func (e *LocalReadEndpoint) OpenRead(relPath string) (io.ReadCloser, error) {
	return os.Open(e.AbsPath(relPath))
}

func (e *LocalReadEndpoint) Root() string { return e.root }
func (*LocalReadEndpoint) Close() error   { return nil }

func (*LocalReadEndpoint) Caps() Capabilities {
	return Capabilities{
		Inodes:     true,
		ChangeTime: true,
		BirthTime:  birthTimeSupported,
		Hardlinks:  true,
	}
}

// AbsPath returns the on-disk path for a relative path.
func (e *LocalReadEndpoint) AbsPath(relPath string) string {
	if relPath == "" || relPath == "." {
		return e.root
	}
	return filepath.Join(e.root, relPath)
}

func statAbsolute(absPath, relPath string) (FileEntry, error) {
	info, err := os.Lstat(absPath)
	if err != nil {
		return FileEntry{}, fmt.Errorf("lstat %s: %w", absPath, err)
	}
	return fileInfoToEntry(info, relPath, absPath), nil
}

// fileInfoToEntry converts os.FileInfo plus platform metadata to FileEntry.
func fileInfoToEntry(info os.FileInfo, relPath, absPath string) FileEntry {
	entry := FileEntry{
		RelPath: relPath,
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}

	if info.Mode()&os.ModeSymlink != 0 {
		entry.IsSymlink = true
		if target, err := os.Readlink(absPath); err == nil {
			entry.LinkTarget = target
		}
	}

	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		entry.UID = stat.Uid
		entry.GID = stat.Gid
		entry.Nlink = uint32(stat.Nlink) //nolint:gosec // G115: nlink fits in uint32 on Linux
		entry.Ino = stat.Ino
		entry.HasIno = true
		fillStatFields(stat, &entry)
	}
	fillBirthTime(absPath, &entry)

	return entry
}
