package bodyfile

import "io/fs"

// typeChar maps a file mode to the single-letter type TSK uses in both the
// name and metadata halves of mode_as_string.
func typeChar(m fs.FileMode) byte {
	switch {
	case m.IsRegular():
		return 'r'
	case m.IsDir():
		return 'd'
	case m&fs.ModeSymlink != 0:
		return 'l'
	case m&fs.ModeNamedPipe != 0:
		return 'p'
	case m&fs.ModeSocket != 0:
		return 'h'
	case m&fs.ModeCharDevice != 0:
		return 'c'
	case m&fs.ModeDevice != 0:
		return 'b'
	default:
		return '-'
	}
}

// ModeString renders m the way fls and mac-robber fill mode_as_string:
// name type, a slash, then the metadata type followed by the nine
// permission characters, e.g. "r/rrw-r--r--" or "d/drwxr-xr-x".
// Setuid and setgid show as s/S in the execute slot, sticky as t/T.
func ModeString(m fs.FileMode) string {
	t := typeChar(m)
	b := [12]byte{t, '/', t}

	const rwx = "rwxrwxrwx"
	perm := m.Perm()
	for i := range 9 {
		if perm&(1<<uint(8-i)) != 0 {
			b[3+i] = rwx[i]
		} else {
			b[3+i] = '-'
		}
	}

	special := func(idx int, set bool, lower, upper byte) {
		if !set {
			return
		}
		if b[idx] == 'x' {
			b[idx] = lower
		} else {
			b[idx] = upper
		}
	}
	special(5, m&fs.ModeSetuid != 0, 's', 'S')
	special(8, m&fs.ModeSetgid != 0, 's', 'S')
	special(11, m&fs.ModeSticky != 0, 't', 'T')

	return string(b[:])
}
