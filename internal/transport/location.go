package transport

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// Location represents a parsed source argument.
type Location struct {
	Host string
	User string
	Path string
	Port int // 0 = default SSH port
}

// IsRemote returns true if the location refers to a remote host.
func (l Location) IsRemote() bool {
	return l.Host != ""
}

// String returns a human-readable representation.
func (l Location) String() string {
	if !l.IsRemote() {
		return l.Path
	}
	host := l.Host
	if l.Port != 0 {
		return fmt.Sprintf("sftp://%s%s:%d%s", userPrefix(l.User), host, l.Port, l.Path)
	}
	return fmt.Sprintf("%s%s:%s", userPrefix(l.User), host, l.Path)
}

func userPrefix(u string) string {
	if u == "" {
		return ""
	}
	return u + "@"
}

// ParseLocation parses a CLI argument into a Location.
//
// Supported formats:
//   - /absolute/path                  → local
//   - relative/path                   → local
//   - host:path                       → SFTP remote (current user)
//   - user@host:path                  → SFTP remote
//   - sftp://[user@]host[:port]/path  → SFTP remote with explicit port
//
// A bare word with no colon is always local. A path containing ":" is only
// treated as remote if the part before the colon contains no path
// separators, so "/foo:bar" and "./host:path" stay local.
func ParseLocation(arg string) Location {
	if strings.HasPrefix(arg, "sftp://") {
		return parseSFTPURL(arg)
	}

	if filepath.IsAbs(arg) || strings.HasPrefix(arg, "./") || strings.HasPrefix(arg, "../") {
		return Location{Path: arg}
	}

	colonIdx := strings.IndexByte(arg, ':')
	if colonIdx <= 0 {
		return Location{Path: arg}
	}

	hostPart := arg[:colonIdx]
	pathPart := arg[colonIdx+1:]

	if strings.ContainsRune(hostPart, filepath.Separator) || strings.ContainsRune(hostPart, '/') {
		return Location{Path: arg}
	}

	var user, host string
	if atIdx := strings.LastIndexByte(hostPart, '@'); atIdx >= 0 {
		user = hostPart[:atIdx]
		host = hostPart[atIdx+1:]
	} else {
		host = hostPart
	}
	if host == "" {
		return Location{Path: arg}
	}

	return Location{Host: host, User: user, Path: pathPart}
}

func parseSFTPURL(raw string) Location {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return Location{Path: raw}
	}

	port := 0
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return Location{Path: raw}
		}
	}

	p := u.Path
	if p == "" {
		p = "/"
	}

	var user string
	if u.User != nil {
		user = u.User.Username()
	}

	return Location{Host: u.Hostname(), User: user, Path: p, Port: port}
}
