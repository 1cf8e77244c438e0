package timeline_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/bodyfile/internal/bodyfile"
	"github.com/bamsammich/bodyfile/internal/output"
	"github.com/bamsammich/bodyfile/internal/timeline"
)

const passwd = "d41d8cd98f00b204e9800998ecf8427e|/etc/passwd|1234|r/rrw-r--r--|0|0|2048|1700000000|1700000001|1700000002|-1\n"

func TestParse(t *testing.T) {
	t.Parallel()

	l, err := timeline.Parse(passwd)
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", l.MD5())
	assert.Equal(t, "/etc/passwd", l.Name())
	assert.Equal(t, "1234", l.Inode())
	assert.Equal(t, "r/rrw-r--r--", l.Mode())
	assert.Equal(t, int64(2048), l.Size())
	assert.Equal(t, int64(1700000000), l.Atime())
	assert.Equal(t, int64(1700000001), l.Mtime())
	assert.Equal(t, int64(1700000002), l.Ctime())
	assert.Equal(t, int64(-1), l.Crtime())

	assert.Equal(t, passwd, l.String(), "parse then serialize is lossless")
}

func TestParse_Variants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		wantName string
		wantSize int64
	}{
		{"no newline", "0|/a|0||0|0|7|-1|-1|-1|-1", "/a", 7},
		{"crlf", "0|/a|0||0|0|7|-1|-1|-1|-1\r\n", "/a", 7},
		{"pipe in name", "0|/a|b|c|0||0|0|7|-1|-1|-1|-1\n", "/a|b|c", 7},
		{"empty numbers", "0|/a|0||||||||\n", "/a", 0},
		{"default line", "0||0||0|0|0|-1|-1|-1|-1\n", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, err := timeline.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, l.Name())
			assert.Equal(t, tt.wantSize, l.Size())
		})
	}
}

func TestParse_EmbeddedPipeRoundTrip(t *testing.T) {
	t.Parallel()
	orig := bodyfile.New().WithName("odd|name").WithMtime(5)

	l, err := timeline.Parse(orig.String())
	require.NoError(t, err)
	assert.Equal(t, orig, l)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"too few fields", "0|/a|0", "3 fields"},
		{"empty", "", "1 fields"},
		{"bad uid", "0|/a|0||x|0|0|-1|-1|-1|-1", "uid"},
		{"bad crtime", "0|/a|0||0|0|0|-1|-1|-1|soon", "crtime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := timeline.Parse(tt.in)
			require.ErrorIs(t, err, timeline.ErrMalformed)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReader_SkipsCommentsAndBlanks(t *testing.T) {
	t.Parallel()
	in := "# header\n\n" + passwd + "   \n# trailing\n0||0||0|0|0|-1|-1|-1|-1\n"

	lines, err := timeline.ReadAll(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "/etc/passwd", lines[0].Name())
	assert.Equal(t, bodyfile.New(), lines[1])
}

func TestReader_ReportsLineNumber(t *testing.T) {
	t.Parallel()
	in := "# header\n" + passwd + "broken\n"

	r, err := timeline.NewReader(strings.NewReader(in))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	require.ErrorIs(t, err, timeline.ErrMalformed)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReader_EOF(t *testing.T) {
	t.Parallel()

	r, err := timeline.NewReader(strings.NewReader(""))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestReader_Zstd(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	w, err := output.New(&buf, output.Options{Compress: true, Header: true, RunID: "r"})
	require.NoError(t, err)
	require.NoError(t, w.Write(bodyfile.New().WithName("/x").WithSize(3)))
	require.NoError(t, w.Write(bodyfile.New().WithName("/y")))
	require.NoError(t, w.Close())

	lines, err := timeline.ReadAll(&buf)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "/x", lines[0].Name())
	assert.Equal(t, int64(3), lines[0].Size())
	assert.Equal(t, "/y", lines[1].Name())
}
