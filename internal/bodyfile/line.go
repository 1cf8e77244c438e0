// Package bodyfile models a single record of the TSK 3.x body file format.
//
// The body file is the pipe-delimited intermediate format consumed by
// mactime and other timeline tools. Each line describes one filesystem
// object (or other event source):
//
//	MD5|name|inode|mode_as_string|UID|GID|size|atime|mtime|ctime|crtime
//
// Times are UNIX seconds. Lines starting with '#' are comments for readers;
// this package never emits them.
package bodyfile

import (
	"io"
	"strconv"
)

// Sentinels used for fields whose value is unknown.
const (
	UnknownMD5   = "0"
	UnknownInode = "0"
	UnknownTime  = int64(-1)
)

// Separator is the field delimiter of the body file format.
const Separator = '|'

// Line is one body file record. The zero value is not meaningful; build
// lines with New or FromValues and derive variants with the With* methods,
// which return modified copies and never touch the receiver.
//
// Line performs no validation. Values are stored and emitted verbatim,
// including any embedded separators.
type Line struct {
	md5    string
	name   string
	inode  string
	mode   string
	uid    int64
	gid    int64
	size   int64
	atime  int64
	mtime  int64
	ctime  int64
	crtime int64
}

// New returns a line with every field set to its "unknown" sentinel:
// md5 and inode "0", empty name and mode, zero uid/gid/size and -1 for
// all four timestamps.
func New() Line {
	return Line{
		md5:    UnknownMD5,
		inode:  UnknownInode,
		atime:  UnknownTime,
		mtime:  UnknownTime,
		ctime:  UnknownTime,
		crtime: UnknownTime,
	}
}

// FromValues returns a line with every field given explicitly, in body file
// column order.
//
//nolint:revive // argument-limit: mirrors the eleven body file columns
func FromValues(
	md5, name, inode, mode string,
	uid, gid, size int64,
	atime, mtime, ctime, crtime int64,
) Line {
	return Line{
		md5:    md5,
		name:   name,
		inode:  inode,
		mode:   mode,
		uid:    uid,
		gid:    gid,
		size:   size,
		atime:  atime,
		mtime:  mtime,
		ctime:  ctime,
		crtime: crtime,
	}
}

func (l Line) WithMD5(md5 string) Line     { l.md5 = md5; return l }
func (l Line) WithName(name string) Line   { l.name = name; return l }
func (l Line) WithInode(inode string) Line { l.inode = inode; return l }
func (l Line) WithMode(mode string) Line   { l.mode = mode; return l }
func (l Line) WithUID(uid int64) Line      { l.uid = uid; return l }
func (l Line) WithGID(gid int64) Line      { l.gid = gid; return l }
func (l Line) WithSize(size int64) Line    { l.size = size; return l }
func (l Line) WithAtime(t int64) Line      { l.atime = t; return l }
func (l Line) WithMtime(t int64) Line      { l.mtime = t; return l }
func (l Line) WithCtime(t int64) Line      { l.ctime = t; return l }
func (l Line) WithCrtime(t int64) Line     { l.crtime = t; return l }

func (l Line) MD5() string   { return l.md5 }
func (l Line) Name() string  { return l.name }
func (l Line) Inode() string { return l.inode }

// Mode returns the mode_as_string column, e.g. "r/rrwxr-xr-x".
func (l Line) Mode() string { return l.mode }

func (l Line) UID() int64    { return l.uid }
func (l Line) GID() int64    { return l.gid }
func (l Line) Size() int64   { return l.size }
func (l Line) Atime() int64  { return l.atime }
func (l Line) Mtime() int64  { return l.mtime }
func (l Line) Ctime() int64  { return l.ctime }
func (l Line) Crtime() int64 { return l.crtime }

// HasTimestamp reports whether at least one of the four times is positive.
// mactime requires this of every line; Line itself never enforces it.
func (l Line) HasTimestamp() bool {
	return l.atime > 0 || l.mtime > 0 || l.ctime > 0 || l.crtime > 0
}

// AppendTo appends the canonical serialization of l, including the
// trailing newline, to b and returns the extended slice.
func (l Line) AppendTo(b []byte) []byte {
	b = append(b, l.md5...)
	b = append(b, Separator)
	b = append(b, l.name...)
	b = append(b, Separator)
	b = append(b, l.inode...)
	b = append(b, Separator)
	b = append(b, l.mode...)
	for _, n := range [...]int64{l.uid, l.gid, l.size, l.atime, l.mtime, l.ctime, l.crtime} {
		b = append(b, Separator)
		b = strconv.AppendInt(b, n, 10)
	}
	return append(b, '\n')
}

// String returns the canonical body file line for l, newline-terminated:
//
//	md5|name|inode|mode|uid|gid|size|atime|mtime|ctime|crtime\n
func (l Line) String() string {
	return string(l.AppendTo(make([]byte, 0, l.estimatedLen())))
}

// WriteTo writes the canonical line to w. It implements io.WriterTo.
func (l Line) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(l.AppendTo(make([]byte, 0, l.estimatedLen())))
	return int64(n), err
}

func (l Line) estimatedLen() int {
	// 7 numbers at up to 20 digits, 10 separators and the newline.
	return len(l.md5) + len(l.name) + len(l.inode) + len(l.mode) + 7*20 + 11
}
