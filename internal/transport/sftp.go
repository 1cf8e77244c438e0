package transport

import (
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

var _ ReadEndpoint = (*SFTPReadEndpoint)(nil)

// SFTPReadEndpoint reads from a remote filesystem over SFTP. SFTP v3 carries
// no inode, ctime or birth time, so those columns stay unknown.
type SFTPReadEndpoint struct {
	client *sftp.Client
	ssh    *ssh.Client
	root   string
}

// NewSFTPReadEndpoint creates a read endpoint backed by an SFTP connection.
// The caller must call Close when done.
func NewSFTPReadEndpoint(sshClient *ssh.Client, root string) (*SFTPReadEndpoint, error) {
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return nil, fmt.Errorf("sftp client: %w", err)
	}
	return &SFTPReadEndpoint{
		client: sftpClient,
		ssh:    sshClient,
		root:   root,
	}, nil
}

func (e *SFTPReadEndpoint) Stat(relPath string) (FileEntry, error) {
	absPath := e.absPath(relPath)
	info, err := e.client.Lstat(absPath)
	if err != nil {
		return FileEntry{}, fmt.Errorf("sftp lstat %s: %w", absPath, err)
	}
	entry := sftpFileInfoToEntry(info, relPath)
	if entry.IsSymlink {
		if target, err := e.client.ReadLink(absPath); err == nil {
			entry.LinkTarget = target
		}
	}
	return entry, nil
}

func (e *SFTPReadEndpoint) ReadDir(relPath string) ([]FileEntry, error) {
	absPath := e.absPath(relPath)
	infos, err := e.client.ReadDir(absPath)
	if err != nil {
		return nil, fmt.Errorf("sftp readdir %s: %w", absPath, err)
	}
	entries := make([]FileEntry, 0, len(infos))
	for _, info := range infos {
		entry := sftpFileInfoToEntry(info, path.Join(relPath, info.Name()))
		if entry.IsSymlink {
			if target, err := e.client.ReadLink(path.Join(absPath, info.Name())); err == nil {
				entry.LinkTarget = target
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (e *SFTPReadEndpoint) OpenRead(relPath string) (io.ReadCloser, error) {
	return e.client.Open(e.absPath(relPath))
}

func (e *SFTPReadEndpoint) Root() string { return e.root }

func (*SFTPReadEndpoint) Caps() Capabilities {
	return Capabilities{}
}

func (e *SFTPReadEndpoint) Close() error {
	err := e.client.Close()
	if sshErr := e.ssh.Close(); sshErr != nil && err == nil {
		err = sshErr
	}
	return err
}

func (e *SFTPReadEndpoint) absPath(relPath string) string {
	if relPath == "" || relPath == "." {
		return e.root
	}
	return path.Join(e.root, relPath)
}

func sftpFileInfoToEntry(info os.FileInfo, relPath string) FileEntry {
	entry := FileEntry{
		RelPath:   relPath,
		Size:      info.Size(),
		Mode:      info.Mode(),
		ModTime:   info.ModTime(),
		IsDir:     info.IsDir(),
		IsSymlink: info.Mode()&os.ModeSymlink != 0,
	}
	if st, ok := info.Sys().(*sftp.FileStat); ok {
		entry.UID = st.UID
		entry.GID = st.GID
		entry.AccTime = time.Unix(int64(st.Atime), 0)
	}
	return entry
}
