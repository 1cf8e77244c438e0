package transport

import "fmt"

// Open returns a ReadEndpoint for loc: a local tree, or an SFTP session
// when loc names a remote host. The caller must Close the endpoint.
//
//nolint:ireturn // factory returns interface by design
func Open(loc Location, opts SSHOpts) (ReadEndpoint, error) {
	if !loc.IsRemote() {
		return NewLocalReadEndpoint(loc.Path), nil
	}

	if loc.Port != 0 && opts.Port == 0 {
		opts.Port = loc.Port
	}
	client, err := DialSSH(loc.Host, loc.User, opts)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", loc, err)
	}

	root := loc.Path
	if root == "" {
		root = "."
	}
	ep, err := NewSFTPReadEndpoint(client, root)
	if err != nil {
		client.Close()
		return nil, err
	}
	return ep, nil
}
