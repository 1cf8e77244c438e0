package output_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/bodyfile/internal/bodyfile"
	"github.com/bamsammich/bodyfile/internal/output"
)

func passwdLine() bodyfile.Line {
	return bodyfile.New().
		WithMD5("d41d8cd98f00b204e9800998ecf8427e").
		WithName("/etc/passwd").
		WithInode("1234").
		WithMode("r/rrw-r--r--").
		WithSize(2048).
		WithAtime(1700000000).
		WithMtime(1700000001).
		WithCtime(1700000002)
}

func TestWriter_WritesLines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	w, err := output.New(&buf, output.Options{})
	require.NoError(t, err)
	require.NoError(t, w.Write(passwdLine()))
	require.NoError(t, w.Write(bodyfile.New()))
	assert.Equal(t, int64(2), w.Lines())
	require.NoError(t, w.Close())

	assert.Equal(t,
		"d41d8cd98f00b204e9800998ecf8427e|/etc/passwd|1234|r/rrw-r--r--|0|0|2048|1700000000|1700000001|1700000002|-1\n"+
			"0||0||0|0|0|-1|-1|-1|-1\n",
		buf.String())
}

func TestWriter_Header(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	w, err := output.New(&buf, output.Options{Header: true, RunID: "run-1"})
	require.NoError(t, err)
	require.NoError(t, w.Write(bodyfile.New()))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "# bodyfile run run-1", lines[0])
	assert.Equal(t, "# "+output.ColumnHeader, lines[1])
	assert.Equal(t, int64(1), w.Lines(), "comments are not counted")
}

func TestWriter_Compressed(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	w, err := output.New(&buf, output.Options{Compress: true})
	require.NoError(t, err)
	require.NoError(t, w.Write(passwdLine()))
	require.NoError(t, w.Close())

	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, buf.Bytes()[:4])

	dec, err := zstd.NewReader(&buf)
	require.NoError(t, err)
	defer dec.Close()
	var out bytes.Buffer
	_, err = out.ReadFrom(dec)
	require.NoError(t, err)
	assert.Equal(t, passwdLine().String(), out.String())
}

func TestWriter_WriteAfterClose(t *testing.T) {
	t.Parallel()

	w, err := output.New(&bytes.Buffer{}, output.Options{})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "close is idempotent")

	require.ErrorIs(t, w.Write(bodyfile.New()), output.ErrClosed)
	require.ErrorIs(t, w.Comment("late"), output.ErrClosed)
}

func TestWriter_Concurrent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	w, err := output.New(&buf, output.Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				assert.NoError(t, w.Write(bodyfile.New().WithName(fmt.Sprintf("/w%d/f%d", i, j))))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 400)
	for _, l := range lines {
		assert.Equal(t, 10, strings.Count(l, "|"), "interleaved line %q", l)
	}
}

func TestOpen_File(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "body.txt")

	w, err := output.Open(path, output.Options{})
	require.NoError(t, err)
	require.NoError(t, w.Write(passwdLine()))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, passwdLine().String(), string(data))
}

func TestOpen_BadPath(t *testing.T) {
	t.Parallel()
	_, err := output.Open(filepath.Join(t.TempDir(), "missing", "body.txt"), output.Options{})
	require.Error(t, err)
}
